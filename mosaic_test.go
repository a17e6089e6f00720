package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/paulmach/orb/maptile"
)

// fakeFetcher paints every tile a flat colour derived from its coordinates.
type fakeFetcher struct {
	fail  map[string]bool // tileKey -> fail
	block bool            // healthy tiles wait for cancellation
	alpha uint8           // non-zero paints translucent tiles
	calls int32
}

func tileKey(t maptile.Tile) string {
	return fmt.Sprintf("%d-%d-%d", t.X, t.Y, t.Z)
}

func tileColor(kind Kind, t maptile.Tile) color.RGBA {
	return color.RGBA{R: uint8(t.X), G: uint8(t.Y), B: uint8(kind), A: 255}
}

func (f *fakeFetcher) Fetch(ctx context.Context, kind Kind, t maptile.Tile) (image.Image, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.fail[tileKey(t)] {
		return nil, &TileFetchError{Kind: kind, X: t.X, Y: t.Y, Z: uint32(t.Z), StatusCode: 500}
	}
	if f.block {
		<-ctx.Done()
		return nil, &TileFetchError{Kind: kind, X: t.X, Y: t.Y, Z: uint32(t.Z), Cause: ctx.Err()}
	}
	if f.alpha != 0 {
		return image.NewUniform(color.NRGBA{R: 1, G: 134, B: 160, A: f.alpha}), nil
	}
	// unbounded, the assembler copies TileSize² of it
	return image.NewUniform(tileColor(kind, t)), nil
}

func TestAssemblePlacesTiles(t *testing.T) {
	rng := TileRange{Min: maptile.New(10, 20, 6), Max: maptile.New(12, 21, 6), Z: 6}
	asm := &Assembler{Fetcher: &fakeFetcher{}}

	m, err := asm.Assemble(context.Background(), Imagery, rng)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if m.Width() != 3*TileSize || m.Height() != 2*TileSize {
		t.Fatalf("mosaic is %dx%d, want %dx%d", m.Width(), m.Height(), 3*TileSize, 2*TileSize)
	}
	for _, tile := range rng.Tiles() {
		ox := (int(tile.X) - 10) * TileSize
		oy := (int(tile.Y) - 20) * TileSize
		want := tileColor(Imagery, tile)
		for _, p := range []image.Point{{ox, oy}, {ox + TileSize - 1, oy + TileSize - 1}, {ox + 100, oy + 7}} {
			if got := m.Image.RGBAAt(p.X, p.Y); got != want {
				t.Errorf("pixel %v = %v, want %v (tile %s)", p, got, want, tileKey(tile))
			}
		}
	}
}

func TestAssembleFailFast(t *testing.T) {
	rng := TileRange{Min: maptile.New(0, 0, 3), Max: maptile.New(3, 3, 3), Z: 3}
	f := &fakeFetcher{fail: map[string]bool{"2-1-3": true}, block: true}
	asm := &Assembler{Fetcher: f}

	m, err := asm.Assemble(context.Background(), Elevation, rng)
	if m != nil {
		t.Fatal("partial mosaic returned")
	}
	var fe *TileFetchError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want *TileFetchError", err)
	}
	if fe.X != 2 || fe.Y != 1 || fe.StatusCode != 500 {
		t.Errorf("error names tile %d/%d status %d, want the failing 2/1", fe.X, fe.Y, fe.StatusCode)
	}
}

func TestAssembleLimitedWorkers(t *testing.T) {
	rng := TileRange{Min: maptile.New(0, 0, 4), Max: maptile.New(4, 3, 4), Z: 4}
	f := &fakeFetcher{}
	asm := &Assembler{Fetcher: f, Workers: 2}

	if _, err := asm.Assemble(context.Background(), Elevation, rng); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if got := atomic.LoadInt32(&f.calls); int(got) != rng.Count() {
		t.Errorf("%d fetches, want one per tile (%d)", got, rng.Count())
	}
}

func TestAssembleCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asm := &Assembler{Fetcher: &fakeFetcher{block: true}}

	rng := TileRange{Min: maptile.New(0, 0, 2), Max: maptile.New(1, 1, 2), Z: 2}
	if _, err := asm.Assemble(ctx, Imagery, rng); err == nil {
		t.Fatal("expected an error from a canceled context")
	}
}

func TestAssembleRejectsTranslucentElevation(t *testing.T) {
	rng := TileRange{Min: maptile.New(5, 5, 4), Max: maptile.New(6, 5, 4), Z: 4}
	asm := &Assembler{Fetcher: &fakeFetcher{alpha: 128}}

	m, err := asm.Assemble(context.Background(), Elevation, rng)
	var de *DecodeError
	if m != nil || !errors.As(err, &de) {
		t.Fatalf("got %v, %v; want *DecodeError and no mosaic", m, err)
	}

	// imagery may carry alpha
	if _, err := asm.Assemble(context.Background(), Imagery, rng); err != nil {
		t.Errorf("imagery: %v", err)
	}

	// the same pixel fully opaque decodes exactly to sea level
	asm.Fetcher = &fakeFetcher{alpha: 255}
	m, err = asm.Assemble(context.Background(), Elevation, rng)
	if err != nil {
		t.Fatalf("opaque: %v", err)
	}
	grid, err := DecodeElevation(m, TileSize, TerrainRGB)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, h := range grid.Heights {
		if h != 0 {
			t.Errorf("height = %v, want 0", h)
		}
	}
}
