package main

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// MaxLatitude is the north/south limit of the Web Mercator square.
const MaxLatitude = 85.05112877980659

// AOI 兴趣区域, lon/lat degrees.
type AOI struct {
	MinLon float64 `json:"minLon"`
	MinLat float64 `json:"minLat"`
	MaxLon float64 `json:"maxLon"`
	MaxLat float64 `json:"maxLat"`
}

// AOIFromBound converts an orb bound (x = lon, y = lat).
func AOIFromBound(b orb.Bound) AOI {
	return AOI{MinLon: b.Min[0], MinLat: b.Min[1], MaxLon: b.Max[0], MaxLat: b.Max[1]}
}

// Bound 范围
func (a AOI) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{a.MinLon, a.MinLat}, Max: orb.Point{a.MaxLon, a.MaxLat}}
}

// Center 中心点
func (a AOI) Center() orb.Point {
	return a.Bound().Center()
}

// MidLat is the latitude the metric scale is evaluated at.
func (a AOI) MidLat() float64 {
	return (a.MinLat + a.MaxLat) / 2
}

// Validate rejects boxes that cannot be indexed. It runs before any network activity.
func (a AOI) Validate() error {
	for _, v := range []float64{a.MinLon, a.MinLat, a.MaxLon, a.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coordinate in %v", ErrInvalidAOI, a)
		}
	}
	if a.MinLon >= a.MaxLon || a.MinLat >= a.MaxLat {
		return fmt.Errorf("%w: min must be less than max, got %v", ErrInvalidAOI, a)
	}
	if a.MinLon < -180 || a.MaxLon > 180 {
		return fmt.Errorf("%w: longitude out of [-180, 180]", ErrInvalidAOI)
	}
	if a.MinLat < -MaxLatitude || a.MaxLat > MaxLatitude {
		return fmt.Errorf("%w: latitude out of the web mercator range", ErrInvalidAOI)
	}
	return nil
}

func (a AOI) String() string {
	return fmt.Sprintf("[%.6f,%.6f %.6f,%.6f]", a.MinLon, a.MinLat, a.MaxLon, a.MaxLat)
}

// TileRange is the inclusive rectangle of tiles covering an AOI at one zoom.
type TileRange struct {
	Min maptile.Tile
	Max maptile.Tile
	Z   maptile.Zoom
}

// Width in tiles.
func (r TileRange) Width() int { return int(r.Max.X) - int(r.Min.X) + 1 }

// Height in tiles.
func (r TileRange) Height() int { return int(r.Max.Y) - int(r.Min.Y) + 1 }

// Count 瓦片数
func (r TileRange) Count() int { return r.Width() * r.Height() }

// Tiles lists the range row by row, north to south.
func (r TileRange) Tiles() []maptile.Tile {
	tiles := make([]maptile.Tile, 0, r.Count())
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			tiles = append(tiles, maptile.New(x, y, r.Z))
		}
	}
	return tiles
}

// Bound is the lon/lat extent of the whole range, which is usually larger than the AOI.
func (r TileRange) Bound() AOI {
	nw := TileBounds(r.Min.X, r.Min.Y, r.Z)
	se := TileBounds(r.Max.X, r.Max.Y, r.Z)
	return AOI{MinLon: nw.MinLon, MinLat: se.MinLat, MaxLon: se.MaxLon, MaxLat: nw.MaxLat}
}

func (r TileRange) String() string {
	return fmt.Sprintf("z%d x[%d..%d] y[%d..%d]", r.Z, r.Min.X, r.Max.X, r.Min.Y, r.Max.Y)
}

// TilePoint returns the fractional tile coordinates of (lon, lat) at zoom z.
func TilePoint(lon, lat float64, z maptile.Zoom) (x, y float64) {
	n := math.Exp2(float64(z))
	lat = math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
	s := math.Sin(lat * math.Pi / 180)

	x = (lon + 180) / 360 * n
	y = (1 - math.Log((1+s)/(1-s))/(2*math.Pi)) / 2 * n
	return x, y
}

// TileForLonLat returns the tile containing (lon, lat) at zoom z.
func TileForLonLat(lon, lat float64, z maptile.Zoom) maptile.Tile {
	n := math.Exp2(float64(z))
	x, y := TilePoint(lon, lat, z)
	return maptile.New(clampTile(math.Floor(x), n), clampTile(math.Floor(y), n), z)
}

func clampTile(v, n float64) uint32 {
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return uint32(n - 1)
	}
	return uint32(v)
}

// TileBounds is the inverse of TileForLonLat: the lon/lat box of tile (x, y, z).
func TileBounds(x, y uint32, z maptile.Zoom) AOI {
	n := math.Exp2(float64(z))
	lon := func(x float64) float64 { return x/n*360 - 180 }
	lat := func(y float64) float64 {
		return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	}
	return AOI{
		MinLon: lon(float64(x)),
		MinLat: lat(float64(y) + 1),
		MaxLon: lon(float64(x) + 1),
		MaxLat: lat(float64(y)),
	}
}

// RangeForAOI covers aoi with tiles at zoom z, inclusive of both corner tiles.
// An AOI crossing the antimeridian is not wrapped; callers split it.
func RangeForAOI(aoi AOI, z maptile.Zoom) TileRange {
	nw := TileForLonLat(aoi.MinLon, aoi.MaxLat, z)
	se := TileForLonLat(aoi.MaxLon, aoi.MinLat, z)
	return TileRange{Min: nw, Max: se, Z: z}
}
