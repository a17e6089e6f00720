package main

import "fmt"

// TileSize 默认瓦片大小
const TileSize = 256

// ZoomMin 最小级别
const ZoomMin = 0

// ZoomMax 最大级别
const ZoomMax = 22

// Kind selects which tile source a fetch goes to.
type Kind int

const (
	// Elevation tiles carry packed-RGB heights, lossless.
	Elevation Kind = iota
	// Imagery tiles are photographic, usually lossy.
	Imagery
)

func (k Kind) String() string {
	switch k {
	case Elevation:
		return "elevation"
	case Imagery:
		return "imagery"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Constants representing TileFormat types
const (
	PNG  = "png"
	JPG  = "jpg"
	WEBP = "webp"
)
