package main

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/paulmach/orb/maptile"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Mosaic is a tile range composited into one RGBA buffer.
type Mosaic struct {
	Kind  Kind
	Range TileRange
	Image *image.RGBA
}

// Width in pixels.
func (m *Mosaic) Width() int { return m.Image.Bounds().Dx() }

// Height in pixels.
func (m *Mosaic) Height() int { return m.Image.Bounds().Dy() }

// Assembler fans out one fetch per tile and joins them all-or-nothing.
type Assembler struct {
	Fetcher Fetcher
	// Workers caps in-flight fetches; 0 means one goroutine per tile.
	Workers int
	// TimeDelay is slept between dispatches.
	TimeDelay time.Duration
	Progress  bool
}

// Assemble fetches every tile of rng concurrently and pastes each one at its
// offset in the mosaic. The first failure cancels the remaining fetches and is
// returned alone; no mosaic is returned with it.
func (a *Assembler) Assemble(ctx context.Context, kind Kind, rng TileRange) (*Mosaic, error) {
	tiles := rng.Tiles()
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: empty tile range %s", ErrInvalidRequest, rng)
	}
	img := image.NewRGBA(image.Rect(0, 0, rng.Width()*TileSize, rng.Height()*TileSize))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := a.Workers
	if workers <= 0 || workers > len(tiles) {
		workers = len(tiles)
	}
	sem := make(chan struct{}, workers)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	bar := pb.New(len(tiles)).Prefix(fmt.Sprintf("%s z%d : ", kind, rng.Z))
	if a.Progress {
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	log.Infof("assembling %s mosaic %s, %d tiles", kind, rng, len(tiles))
	for _, t := range tiles {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
		if a.TimeDelay > 0 {
			time.Sleep(a.TimeDelay)
		}
		wg.Add(1)
		go func(t maptile.Tile) {
			defer func() {
				wg.Done()
				<-sem
			}()
			tile, err := a.Fetcher.Fetch(ctx, kind, t)
			if err != nil {
				fail(err)
				return
			}
			// drawing into RGBA premultiplies alpha, which would corrupt packed heights
			if kind == Elevation && !opaque(tile) {
				fail(&DecodeError{Reason: fmt.Sprintf("elevation tile(z:%d, x:%d, y:%d) is not opaque", t.Z, t.X, t.Y)})
				return
			}
			dx := (int(t.X) - int(rng.Min.X)) * TileSize
			dy := (int(t.Y) - int(rng.Min.Y)) * TileSize
			// regions are disjoint, no lock needed
			draw.Draw(img, image.Rect(dx, dy, dx+TileSize, dy+TileSize), tile, tile.Bounds().Min, draw.Src)
			bar.Increment()
		}(t)
	}
	// 等待所有瓦片结束
	wg.Wait()

	if a.Progress {
		bar.Finish()
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble %s mosaic: %w", kind, err)
	}
	return &Mosaic{Kind: kind, Range: rng, Image: img}, nil
}

func opaque(m image.Image) bool {
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := m.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
