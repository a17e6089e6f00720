package main

import (
	"fmt"
	"strings"
)

// Encoding packs an elevation into 24 bits of RGB:
// elevation = Base + (R*65536 + G*256 + B) * Interval.
type Encoding struct {
	Name     string
	Base     float64
	Interval float64
}

var (
	// TerrainRGB is the Mapbox/MapTiler encoding, 0.1m steps from -10000m.
	TerrainRGB = Encoding{Name: "terrain-rgb", Base: -10000, Interval: 0.1}
	// Terrarium is the AWS/Tilezen encoding, R*256 + G + B/256 - 32768.
	Terrarium = Encoding{Name: "terrarium", Base: -32768, Interval: 1.0 / 256}
)

// EncodingByName looks up a known encoding; the empty name is Terrain-RGB.
func EncodingByName(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "", TerrainRGB.Name:
		return TerrainRGB, nil
	case Terrarium.Name:
		return Terrarium, nil
	}
	return Encoding{}, fmt.Errorf("unknown elevation encoding %q", name)
}

// Height decodes one pixel.
func (e Encoding) Height(r, g, b uint8) float32 {
	packed := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	return float32(e.Base + float64(packed)*e.Interval)
}

// HeightGrid 高程网格, row-major from the north-west corner.
type HeightGrid struct {
	Width    int
	Height   int
	GridStep int
	Heights  []float32
}

// At returns the height of cell (x, y).
func (g *HeightGrid) At(x, y int) float32 {
	return g.Heights[y*g.Width+x]
}

// MinMax returns the lowest and highest heights.
func (g *HeightGrid) MinMax() (lo, hi float32) {
	if len(g.Heights) == 0 {
		return 0, 0
	}
	lo, hi = g.Heights[0], g.Heights[0]
	for _, h := range g.Heights[1:] {
		if h < lo {
			lo = h
		}
		if h > hi {
			hi = h
		}
	}
	return lo, hi
}

// DecodeElevation downsamples the mosaic by step, nearest neighbour, and
// decodes each sampled pixel with enc.
func DecodeElevation(m *Mosaic, step int, enc Encoding) (*HeightGrid, error) {
	if step < 1 {
		return nil, &DecodeError{Reason: fmt.Sprintf("step must be >= 1, got %d", step)}
	}
	if m == nil || m.Image == nil {
		return nil, &DecodeError{Reason: "no mosaic"}
	}
	img := m.Image
	mw, mh := img.Rect.Dx(), img.Rect.Dy()
	if mw <= 0 || mh <= 0 {
		return nil, &DecodeError{Reason: "empty mosaic"}
	}
	if img.Stride < mw*4 || len(img.Pix) < (mh-1)*img.Stride+mw*4 {
		return nil, &DecodeError{Reason: fmt.Sprintf("pixel buffer of %d bytes does not hold %dx%d", len(img.Pix), mw, mh)}
	}

	w, h := mw/step, mh/step
	if w == 0 || h == 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("step %d leaves no samples in %dx%d", step, mw, mh)}
	}
	heights := make([]float32, w*h)
	for y, i := 0, 0; y < h; y++ {
		row := y * step * img.Stride
		for x := 0; x < w; x, i = x+1, i+1 {
			p := row + x*step*4
			heights[i] = enc.Height(img.Pix[p], img.Pix[p+1], img.Pix[p+2])
		}
	}
	return &HeightGrid{Width: w, Height: h, GridStep: step, Heights: heights}, nil
}
