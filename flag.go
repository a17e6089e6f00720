package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	hf         bool
	configPath string
	logLevel   string
)

// InitFlag 解析命令行参数
func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log `level` (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, usageText())
	flag.PrintDefaults()
}

func usageText() string {
	return fmt.Sprintf(`jeru3d version: jeru3d/v0.1.0
Builds a textured terrain mesh (OBJ + MTL + PNG + JSON) for an area of
interest from Terrain-RGB elevation tiles and satellite imagery tiles.

Usage: jeru3d [-h] [-c filename] [-l logLevel]

Config (TOML, see conf/conf.toml):
  source.apiKey          tile api key, or set MAPTILER_KEY
  source.baseUrl         tile server, default https://api.maptiler.com
  source.elevation.*     dataset, format, encoding (terrain-rgb | terrarium)
  source.imagery.*       dataset, format
  terrain.aoi            minLon, minLat, maxLon, maxLat
  terrain.geojson        take the aoi from the bound of a GeoJSON file instead
  terrain.elevationZoom  default %d
  terrain.imageryZoom    default %d
  terrain.step           height grid step in pixels, default %d
  layers.geojson         point annotations (properties: layer, symbol)
  task.workers           concurrent fetches per mosaic, 0 = one per tile
  output.directory       export root, one sub directory per task id

Options:
`, DefaultElevationZoom, DefaultImageryZoom, DefaultStep)
}
