package main

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

var unitScale = ScaleFactors{MetersPerDegreeLat: 1, MetersPerDegreeLon: 1}

// unitAOI is one degree square, so unitScale maps it to 1m x 1m.
var unitAOI = AOI{MinLon: 10, MinLat: 10, MaxLon: 11, MaxLat: 11}

func gridOf(w, h int, height func(x, y int) float32) *HeightGrid {
	g := &HeightGrid{Width: w, Height: h, GridStep: 1, Heights: make([]float32, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Heights[y*w+x] = height(x, y)
		}
	}
	return g
}

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestBuildMeshCounts(t *testing.T) {
	for _, size := range [][2]int{{2, 2}, {3, 5}, {128, 128}, {7, 2}} {
		w, h := size[0], size[1]
		mesh, err := BuildMesh(gridOf(w, h, func(x, y int) float32 { return float32(x + y) }), nil, unitAOI, unitScale)
		if err != nil {
			t.Fatalf("%dx%d: %v", w, h, err)
		}
		if mesh.VertexCount() != w*h {
			t.Errorf("%dx%d: %d vertices, want %d", w, h, mesh.VertexCount(), w*h)
		}
		if mesh.TriangleCount() != (w-1)*(h-1)*2 {
			t.Errorf("%dx%d: %d triangles, want %d", w, h, mesh.TriangleCount(), (w-1)*(h-1)*2)
		}
		if len(mesh.Normals) != w*h*3 || len(mesh.UVs) != w*h*2 {
			t.Errorf("%dx%d: %d normals, %d uvs", w, h, len(mesh.Normals)/3, len(mesh.UVs)/2)
		}
		for _, i := range mesh.Indices {
			if int(i) >= w*h {
				t.Fatalf("%dx%d: index %d out of range", w, h, i)
			}
		}
	}
}

func TestBuildMeshPositionsAndUVs(t *testing.T) {
	const w, h = 5, 3
	grid := gridOf(w, h, func(x, y int) float32 { return float32(100*y + x) })
	scale := ScaleFactors{MetersPerDegreeLat: 2000, MetersPerDegreeLon: 1000}
	aoi := AOI{MinLon: 35, MinLat: 31, MaxLon: 35.5, MaxLat: 31.25}

	mesh, err := BuildMesh(grid, nil, aoi, scale)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if mesh.SizeX != 500 || mesh.SizeZ != 500 {
		t.Fatalf("size = %f x %f, want 500 x 500", mesh.SizeX, mesh.SizeZ)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := mesh.Vertex(x, y)
			wantX := (float32(x)/(w-1) - 0.5) * 500
			wantZ := (float32(y)/(h-1) - 0.5) * 500
			if !near(p[0], wantX, 1e-3) || !near(p[2], wantZ, 1e-3) {
				t.Errorf("vertex %d,%d horizontal = %v,%v want %v,%v", x, y, p[0], p[2], wantX, wantZ)
			}
			if p[1] != grid.At(x, y) {
				t.Errorf("vertex %d,%d height = %v, want %v verbatim", x, y, p[1], grid.At(x, y))
			}
			i := (y*w + x) * 2
			if mesh.UVs[i] != float32(x)/(w-1) || mesh.UVs[i+1] != float32(y)/(h-1) {
				t.Errorf("uv %d,%d = %v,%v", x, y, mesh.UVs[i], mesh.UVs[i+1])
			}
		}
	}
	if mesh.Bounds.Min[0] != -250 || mesh.Bounds.Max[2] != 250 || mesh.Bounds.Max[1] != 204 {
		t.Errorf("bounds = %+v", mesh.Bounds)
	}
}

func TestBuildMeshFlatNormals(t *testing.T) {
	mesh, err := BuildMesh(gridOf(4, 4, func(int, int) float32 { return 42 }), nil, unitAOI, unitScale)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < len(mesh.Normals); i += 3 {
		if !near(mesh.Normals[i], 0, 1e-6) || !near(mesh.Normals[i+1], 1, 1e-6) || !near(mesh.Normals[i+2], 0, 1e-6) {
			t.Fatalf("normal %d = %v, want up", i/3, mesh.Normals[i:i+3])
		}
	}
}

func TestBuildMeshSlopeNormals(t *testing.T) {
	// rises 100m over the 1000m east-west extent
	const w, h = 6, 4
	grid := gridOf(w, h, func(x, y int) float32 { return float32(x) * 100 / (w - 1) })
	scale := ScaleFactors{MetersPerDegreeLat: 1000, MetersPerDegreeLon: 1000}
	aoi := AOI{MinLon: 0, MinLat: 0, MaxLon: 1, MaxLat: 1}

	mesh, err := BuildMesh(grid, nil, aoi, scale)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := mgl32.Vec3{-0.1, 1, 0}.Normalize()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			n := mesh.Normal(x, y)
			if !near(n[0], want[0], 1e-4) || !near(n[1], want[1], 1e-4) || !near(n[2], want[2], 1e-4) {
				t.Errorf("normal %d,%d = %v, want %v", x, y, n, want)
			}
		}
	}
}

func TestBuildMeshKeepsTexture(t *testing.T) {
	tex := image.NewRGBA(image.Rect(0, 0, 512, 512))
	mesh, err := BuildMesh(gridOf(2, 2, func(int, int) float32 { return 0 }), tex, unitAOI, unitScale)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if mesh.Texture != tex {
		t.Error("texture was copied, want it handed over")
	}
}

func TestBuildMeshErrors(t *testing.T) {
	if _, err := BuildMesh(gridOf(1, 5, func(int, int) float32 { return 0 }), nil, unitAOI, unitScale); !errors.Is(err, ErrDegenerateGrid) {
		t.Errorf("1x5 grid: got %v, want ErrDegenerateGrid", err)
	}
	if _, err := BuildMesh(nil, nil, unitAOI, unitScale); !errors.Is(err, ErrDegenerateGrid) {
		t.Errorf("nil grid: got %v, want ErrDegenerateGrid", err)
	}
	short := &HeightGrid{Width: 3, Height: 3, Heights: make([]float32, 4)}
	var de *DecodeError
	if _, err := BuildMesh(short, nil, unitAOI, unitScale); !errors.As(err, &de) {
		t.Errorf("short grid: got %v, want *DecodeError", err)
	}
	flat := AOI{MinLon: 1, MinLat: 1, MaxLon: 1, MaxLat: 2}
	if _, err := BuildMesh(gridOf(2, 2, func(int, int) float32 { return 0 }), nil, flat, unitScale); !errors.Is(err, ErrInvalidAOI) {
		t.Errorf("zero-width aoi: got %v, want ErrInvalidAOI", err)
	}
}
