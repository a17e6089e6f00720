package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/umahmood/haversine"
)

// Export file names inside a task directory.
const (
	MeshFile     = "terrain.obj"
	MaterialFile = "terrain.mtl"
	TextureFile  = "texture.png"
	MetaFile     = "terrain.json"
)

// Meta is the JSON sidecar written next to the mesh.
type Meta struct {
	ID             string             `json:"id"`
	AOI            AOI                `json:"aoi"`
	ElevationRange string             `json:"elevationRange"`
	ImageryRange   string             `json:"imageryRange"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	GridStep       int                `json:"gridStep"`
	Scale          ScaleFactors       `json:"scale"`
	SizeX          float64            `json:"sizeX"`
	SizeZ          float64            `json:"sizeZ"`
	MinElevation   float32            `json:"minElevation"`
	MaxElevation   float32            `json:"maxElevation"`
	DiagonalKm     float64            `json:"diagonalKm"`
	Annotations    []PlacedAnnotation `json:"annotations,omitempty"`
}

// Export writes the mesh as Wavefront OBJ with its material, texture and a
// metadata sidecar under root/id. It returns the directory written.
func Export(root, id string, res *Result) (string, error) {
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	mesh := res.Mesh

	if mesh.Texture != nil {
		tex := image.Image(mesh.Texture)
		if len(res.Annotations) > 0 {
			tex = drawAnnotations(mesh.Texture, res.Annotations)
		}
		if err := gg.SavePNG(filepath.Join(dir, TextureFile), tex); err != nil {
			return "", fmt.Errorf("save texture: %w", err)
		}
	}
	if err := writeMaterial(filepath.Join(dir, MaterialFile)); err != nil {
		return "", err
	}
	if err := writeOBJ(filepath.Join(dir, MeshFile), mesh); err != nil {
		return "", err
	}

	lo, hi := res.Grid.MinMax()
	_, km := haversine.Distance(
		haversine.Coord{Lat: res.AOI.MinLat, Lon: res.AOI.MinLon},
		haversine.Coord{Lat: res.AOI.MaxLat, Lon: res.AOI.MaxLon})
	meta := Meta{
		ID:             id,
		AOI:            res.AOI,
		ElevationRange: res.ElevationRange.String(),
		ImageryRange:   res.ImageryRange.String(),
		Width:          mesh.Width,
		Height:         mesh.Height,
		GridStep:       mesh.GridStep,
		Scale:          mesh.Scale,
		SizeX:          mesh.SizeX,
		SizeZ:          mesh.SizeZ,
		MinElevation:   lo,
		MaxElevation:   hi,
		DiagonalKm:     km,
		Annotations:    res.Annotations,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFile), data, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

func writeMaterial(path string) error {
	mtl := fmt.Sprintf("newmtl terrain\nKa 1 1 1\nKd 1 1 1\nillum 1\nmap_Kd %s\n", TextureFile)
	return os.WriteFile(path, []byte(mtl), 0o644)
}

func writeOBJ(path string, mesh *MeshPayload) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "mtllib %s\no terrain\n", MaterialFile)
	for i := 0; i < len(mesh.Positions); i += 3 {
		fmt.Fprintf(w, "v %g %g %g\n", mesh.Positions[i], mesh.Positions[i+1], mesh.Positions[i+2])
	}
	// obj texture space has v pointing up
	for i := 0; i < len(mesh.UVs); i += 2 {
		fmt.Fprintf(w, "vt %g %g\n", mesh.UVs[i], 1-mesh.UVs[i+1])
	}
	for i := 0; i < len(mesh.Normals); i += 3 {
		fmt.Fprintf(w, "vn %g %g %g\n", mesh.Normals[i], mesh.Normals[i+1], mesh.Normals[i+2])
	}
	fmt.Fprintln(w, "usemtl terrain")
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i]+1, mesh.Indices[i+1]+1, mesh.Indices[i+2]+1
		fmt.Fprintf(w, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// drawAnnotations draws each marker onto a copy of the texture.
func drawAnnotations(tex *image.RGBA, anns []PlacedAnnotation) *image.RGBA {
	b := tex.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, tex, b.Min, draw.Src)

	dc := gg.NewContextForRGBA(out)
	dc.SetLineWidth(3)
	const r = 10.0
	for _, a := range anns {
		if !a.Inside {
			continue
		}
		c, _ := layerColor(a.Layer)
		dc.SetHexColor(c.Hex)
		x := float64(a.Pixel.X - b.Min.X)
		y := float64(a.Pixel.Y - b.Min.Y)
		switch a.Symbol {
		case XBox:
			dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
			dc.DrawLine(x-r, y-r, x+r, y+r)
			dc.DrawLine(x-r, y+r, x+r, y-r)
		case Triangle:
			dc.MoveTo(x, y-r)
			dc.LineTo(x+r, y+r)
			dc.LineTo(x-r, y+r)
			dc.ClosePath()
		case DiagonalHatch:
			dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
			dc.DrawLine(x-r, y, x, y-r)
			dc.DrawLine(x-r, y+r, x+r, y-r)
			dc.DrawLine(x, y+r, x+r, y)
		}
		dc.Stroke()
	}
	return out
}
