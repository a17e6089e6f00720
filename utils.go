package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func loadCollection(path string) (orb.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal feature: %w", err)
	}

	var collection orb.Collection
	for _, f := range fc.Features {
		if f.Geometry != nil {
			collection = append(collection, f.Geometry)
		}
	}
	return collection, nil
}

// collectionAOI is the bound of every geometry in c.
func collectionAOI(c orb.Collection) (AOI, error) {
	if len(c) == 0 {
		return AOI{}, errors.New("no geometry in collection")
	}
	bound := c[0].Bound()
	for _, g := range c[1:] {
		bound = bound.Union(g.Bound())
	}
	return AOIFromBound(bound), nil
}

// configuredAOI reads the AOI from terrain.geojson when set, else from terrain.aoi.
func configuredAOI() (AOI, error) {
	if conf.Terrain.Geojson == "" {
		return conf.Terrain.AOI, nil
	}
	c, err := loadCollection(conf.Terrain.Geojson)
	if err != nil {
		return AOI{}, err
	}
	return collectionAOI(c)
}
