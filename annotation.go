package main

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/teris-io/shortid"
)

// Symbol is the marker drawn for an annotation.
type Symbol string

// Marker symbols
const (
	XBox          Symbol = "x-box"
	Triangle      Symbol = "triangle"
	DiagonalHatch Symbol = "diagonal-hatch"
)

// LayerColor 图层颜色
type LayerColor struct {
	Key  string
	Name string
	Hex  string
}

// LayerColors are the annotation layers, keyed by colour.
var LayerColors = []LayerColor{
	{Key: "black", Name: "Black", Hex: "#000000"},
	{Key: "red", Name: "Red", Hex: "#ff0000"},
	{Key: "blue", Name: "Blue", Hex: "#0000ff"},
	{Key: "magenta", Name: "Magenta", Hex: "#ff00ff"},
	{Key: "green", Name: "Green", Hex: "#00aa00"},
}

func layerColor(key string) (LayerColor, bool) {
	for _, c := range LayerColors {
		if c.Key == key {
			return c, true
		}
	}
	return LayerColor{}, false
}

// Annotation is a point marker on one layer.
type Annotation struct {
	ID     string  `json:"id"`
	Layer  string  `json:"layerName"`
	Symbol Symbol  `json:"symbolType"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}

// PlacedAnnotation is an annotation located on a mesh.
type PlacedAnnotation struct {
	Annotation
	// Position is in the mesh frame, metres.
	Position [3]float32 `json:"position"`
	// Pixel is the texture pixel under the marker.
	Pixel image.Point `json:"pixel"`
	// Inside is false when the point falls off the mesh.
	Inside bool `json:"inside"`
}

// LoadAnnotations reads point features from a GeoJSON FeatureCollection.
// Properties "layer" and "symbol" default to black and x-box.
func LoadAnnotations(path string) ([]Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read annotations: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal annotations: %w", err)
	}

	var anns []Annotation
	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			log.Warnf("annotation %d is %T, only points are placed", i, f.Geometry)
			continue
		}
		a := Annotation{
			Layer:  stringProp(f.Properties, "layer", "black"),
			Symbol: Symbol(stringProp(f.Properties, "symbol", string(XBox))),
			Lon:    p[0],
			Lat:    p[1],
		}
		if id, ok := f.ID.(string); ok && id != "" {
			a.ID = id
		} else if a.ID, err = shortid.Generate(); err != nil {
			return nil, fmt.Errorf("annotation %d: generate id: %w", i, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("annotation %d: %w", i, err)
		}
		anns = append(anns, a)
	}
	return anns, nil
}

func stringProp(props geojson.Properties, key, def string) string {
	if s, ok := props[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Validate checks the layer and symbol are known.
func (a Annotation) Validate() error {
	if _, ok := layerColor(a.Layer); !ok {
		return fmt.Errorf("unknown layer %q", a.Layer)
	}
	switch a.Symbol {
	case XBox, Triangle, DiagonalHatch:
	default:
		return fmt.Errorf("unknown symbol %q", a.Symbol)
	}
	return nil
}

// PlaceAnnotations locates each annotation on the mesh built from grid over
// the elevation range rng. The mesh spans rng's tiles, so points are placed by
// their mercator position inside the range; the height is interpolated from
// the grid.
func PlaceAnnotations(mesh *MeshPayload, grid *HeightGrid, rng TileRange, anns []Annotation) []PlacedAnnotation {
	placed := make([]PlacedAnnotation, 0, len(anns))
	for _, a := range anns {
		tx, ty := TilePoint(a.Lon, a.Lat, rng.Z)
		u := (tx - float64(rng.Min.X)) / float64(rng.Width())
		v := (ty - float64(rng.Min.Y)) / float64(rng.Height())

		pa := PlacedAnnotation{
			Annotation: a,
			Inside:     u >= 0 && u <= 1 && v >= 0 && v <= 1,
		}
		u, v = clamp01(u), clamp01(v)
		pa.Position = [3]float32{
			float32((u - 0.5) * mesh.SizeX),
			grid.Bilinear(u, v),
			float32((v - 0.5) * mesh.SizeZ),
		}
		if mesh.Texture != nil {
			b := mesh.Texture.Bounds()
			pa.Pixel = image.Pt(
				b.Min.X+int(math.Min(u*float64(b.Dx()), float64(b.Dx()-1))),
				b.Min.Y+int(math.Min(v*float64(b.Dy()), float64(b.Dy()-1))),
			)
		}
		placed = append(placed, pa)
	}
	return placed
}

// Bilinear samples the grid at (u, v) in [0,1]², the mesh's parametrisation.
func (g *HeightGrid) Bilinear(u, v float64) float32 {
	px := clamp01(u) * float64(g.Width-1)
	py := clamp01(v) * float64(g.Height-1)
	x0 := int(math.Floor(px))
	y0 := int(math.Floor(py))
	if x0 >= g.Width-1 {
		x0 = g.Width - 2
	}
	if y0 >= g.Height-1 {
		y0 = g.Height - 2
	}
	if x0 < 0 || y0 < 0 {
		return g.Heights[0]
	}
	fx := px - float64(x0)
	fy := py - float64(y0)

	p00 := float64(g.At(x0, y0))
	p10 := float64(g.At(x0+1, y0))
	p01 := float64(g.At(x0, y0+1))
	p11 := float64(g.At(x0+1, y0+1))
	a := (1-fx)*p00 + fx*p10
	b := (1-fx)*p01 + fx*p11
	return float32((1-fy)*a + fy*b)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
