package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// tile containers
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/paulmach/orb/maptile"
)

// Fetcher retrieves and decodes one raster tile.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, t maptile.Tile) (image.Image, error)
}

// HTTPFetcher 瓦片加载器, one GET per tile and no retry.
type HTTPFetcher struct {
	Client *http.Client
	Maps   map[Kind]TileMap
}

// NewHTTPFetcher builds a fetcher for the two sources. A zero timeout means none.
func NewHTTPFetcher(elevation, imagery TileMap, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: timeout},
		Maps: map[Kind]TileMap{
			Elevation: elevation,
			Imagery:   imagery,
		},
	}
}

// Fetch gets tile t of the given kind. Every failure is a *TileFetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, kind Kind, t maptile.Tile) (image.Image, error) {
	start := time.Now()
	fail := func(url string, code int, cause error) error {
		return &TileFetchError{Kind: kind, X: t.X, Y: t.Y, Z: uint32(t.Z), URL: url, StatusCode: code, Cause: cause}
	}

	m, ok := f.Maps[kind]
	if !ok {
		return nil, fail("", 0, fmt.Errorf("no tile source for %s", kind))
	}
	// 获取请求地址
	url := m.GetTileURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(url, 0, err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fail(url, 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fail(url, resp.StatusCode, nil)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(url, resp.StatusCode, err)
	}
	if len(body) == 0 {
		return nil, fail(url, resp.StatusCode, errors.New("empty tile"))
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fail(url, resp.StatusCode, fmt.Errorf("decode tile: %w", err))
	}
	if size := img.Bounds().Size(); size.X != TileSize || size.Y != TileSize {
		return nil, fail(url, resp.StatusCode, fmt.Errorf("tile is %dx%d, want %dx%d", size.X, size.Y, TileSize, TileSize))
	}

	cost := time.Since(start).Milliseconds()
	log.Debugf("%s tile(z:%d, x:%d, y:%d) %s, %dms, %.2f kb", kind, t.Z, t.X, t.Y, format, cost, float32(len(body))/1024.0)
	return img, nil
}
