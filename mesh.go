package main

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MeshPayload is the terrain mesh handed to a renderer. Positions are in metres:
// X east, Y up (elevation), Z south, centred on the AOI.
type MeshPayload struct {
	Width    int
	Height   int
	GridStep int

	Positions []float32 // xyz per vertex, same order as the height grid
	Normals   []float32 // xyz per vertex, unit length
	UVs       []float32 // uv per vertex over the whole texture
	Indices   []uint32  // two triangles per grid quad

	Texture *image.RGBA
	Scale   ScaleFactors
	SizeX   float64 // metres east-west
	SizeZ   float64 // metres north-south
	Bounds  Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// VertexCount returns the number of vertices.
func (m *MeshPayload) VertexCount() int { return len(m.Positions) / 3 }

// TriangleCount returns the number of triangles.
func (m *MeshPayload) TriangleCount() int { return len(m.Indices) / 3 }

// Vertex returns the position of grid vertex (x, y).
func (m *MeshPayload) Vertex(x, y int) [3]float32 {
	i := (y*m.Width + x) * 3
	return [3]float32{m.Positions[i], m.Positions[i+1], m.Positions[i+2]}
}

// Normal returns the normal of grid vertex (x, y).
func (m *MeshPayload) Normal(x, y int) [3]float32 {
	i := (y*m.Width + x) * 3
	return [3]float32{m.Normals[i], m.Normals[i+1], m.Normals[i+2]}
}

// BuildMesh turns a height grid into a regular triangulated grid on the unit
// square, computes smooth normals, then scales the horizontal axes to the
// AOI's size in metres. Heights are already metres and are not scaled.
func BuildMesh(grid *HeightGrid, texture *image.RGBA, aoi AOI, scale ScaleFactors) (*MeshPayload, error) {
	if grid == nil || grid.Width < 2 || grid.Height < 2 {
		return nil, ErrDegenerateGrid
	}
	w, h := grid.Width, grid.Height
	if len(grid.Heights) != w*h {
		return nil, &DecodeError{Reason: fmt.Sprintf("%d heights for a %dx%d grid", len(grid.Heights), w, h)}
	}
	sizeX, sizeZ := scale.Extent(aoi)
	if !(sizeX > 0) || !(sizeZ > 0) {
		return nil, fmt.Errorf("%w: extent %.3fm x %.3fm", ErrInvalidAOI, sizeX, sizeZ)
	}

	n := w * h
	positions := make([]float32, n*3)
	uvs := make([]float32, n*2)
	for y := 0; y < h; y++ {
		v := float32(y) / float32(h-1)
		for x := 0; x < w; x++ {
			u := float32(x) / float32(w-1)
			i := y*w + x
			positions[i*3] = u - 0.5
			positions[i*3+1] = grid.Heights[i]
			positions[i*3+2] = v - 0.5
			uvs[i*2] = u
			uvs[i*2+1] = v
		}
	}

	indices := make([]uint32, 0, (w-1)*(h-1)*6)
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			a := uint32(y*w + x)
			b := uint32((y+1)*w + x)
			c := uint32((y+1)*w + x + 1)
			d := uint32(y*w + x + 1)
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	normals := vertexNormals(positions, indices)

	// 缩放到米
	sx, sz := float32(sizeX), float32(sizeZ)
	// normals follow the inverse transpose of diag(sx, 1, sz)
	normalMat := mgl32.Diag3(mgl32.Vec3{1 / sx, 1, 1 / sz})
	bounds := Bounds{
		Min: [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for i := 0; i < n; i++ {
		p := positions[i*3 : i*3+3]
		p[0] *= sx
		p[2] *= sz
		updateBounds(&bounds, mgl32.Vec3{p[0], p[1], p[2]})

		s := unit(normalMat.Mul3x1(vec3At(normals, uint32(i))))
		copy(normals[i*3:i*3+3], s[:])
	}

	return &MeshPayload{
		Width:     w,
		Height:    h,
		GridStep:  grid.GridStep,
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
		Texture:   texture,
		Scale:     scale,
		SizeX:     sizeX,
		SizeZ:     sizeZ,
		Bounds:    bounds,
	}, nil
}

// vertexNormals sums the area-weighted face normal of every triangle into its
// three vertices and normalises the result.
func vertexNormals(positions []float32, indices []uint32) []float32 {
	sums := make([]mgl32.Vec3, len(positions)/3)
	for t := 0; t+2 < len(indices); t += 3 {
		ia, ib, ic := indices[t], indices[t+1], indices[t+2]
		a, b, c := vec3At(positions, ia), vec3At(positions, ib), vec3At(positions, ic)
		// |cb x ab| is twice the triangle area
		fn := c.Sub(b).Cross(a.Sub(b))
		sums[ia] = sums[ia].Add(fn)
		sums[ib] = sums[ib].Add(fn)
		sums[ic] = sums[ic].Add(fn)
	}
	normals := make([]float32, len(positions))
	for i, sum := range sums {
		nv := unit(sum)
		copy(normals[i*3:i*3+3], nv[:])
	}
	return normals
}

func vec3At(buf []float32, i uint32) mgl32.Vec3 {
	return mgl32.Vec3{buf[i*3], buf[i*3+1], buf[i*3+2]}
}

// unit is Normalize that leaves the zero vector alone.
func unit(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for k := 0; k < 3; k++ {
		if p[k] < b.Min[k] {
			b.Min[k] = p[k]
		}
		if p[k] > b.Max[k] {
			b.Max[k] = p[k]
		}
	}
}
