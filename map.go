package main

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// DefaultTileURL is the URL shape of the MapTiler tile API.
const DefaultTileURL = "{base}/tiles/{dataset}/{z}/{x}/{y}.{format}?key={key}"

// TileMap 瓦片地图类型
type TileMap struct {
	Name     string
	Dataset  string
	Format   string
	Encoding string
	BaseURL  string
	URL      string
	Token    string
}

// ElevationMap returns the Terrain-RGB source on baseURL.
func ElevationMap(baseURL, dataset, token string) TileMap {
	return TileMap{
		Name:     "elevation",
		Dataset:  dataset,
		Format:   PNG,
		Encoding: "terrain-rgb",
		BaseURL:  baseURL,
		URL:      DefaultTileURL,
		Token:    token,
	}
}

// ImageryMap returns the satellite source on baseURL.
func ImageryMap(baseURL, dataset, token string) TileMap {
	return TileMap{
		Name:    "imagery",
		Dataset: dataset,
		Format:  JPG,
		BaseURL: baseURL,
		URL:     DefaultTileURL,
		Token:   token,
	}
}

// GetTileURL 获取瓦片URL
func (m *TileMap) GetTileURL(t maptile.Tile) string {
	tpl := m.URL
	if tpl == "" {
		tpl = DefaultTileURL
	}
	url := strings.Replace(tpl, "{base}", strings.TrimRight(m.BaseURL, "/"), -1)
	url = strings.Replace(url, "{dataset}", m.Dataset, -1)
	url = strings.Replace(url, "{format}", m.Format, -1)
	url = strings.Replace(url, "{key}", m.Token, -1)
	url = strings.Replace(url, "{x}", strconv.Itoa(int(t.X)), -1)
	url = strings.Replace(url, "{y}", strconv.Itoa(int(t.Y)), -1)
	url = strings.Replace(url, "{z}", strconv.Itoa(int(t.Z)), -1)
	return url
}
