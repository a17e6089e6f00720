package main

import (
	"math"
	"testing"
)

func TestMetersPerDegreeEquator(t *testing.T) {
	f := MetersPerDegree(0)
	if math.Abs(f.MetersPerDegreeLon-111319.458) > 1e-6 {
		t.Errorf("lon at equator = %f, want 111319.458", f.MetersPerDegreeLon)
	}
	if math.Abs(f.MetersPerDegreeLat-110574.2727) > 1e-6 {
		t.Errorf("lat at equator = %f, want 110574.2727", f.MetersPerDegreeLat)
	}
}

func TestMetersPerDegreeMonotonic(t *testing.T) {
	prev := MetersPerDegree(0)
	for lat := 0.5; lat <= 60; lat += 0.5 {
		f := MetersPerDegree(lat)
		if f.MetersPerDegreeLon >= prev.MetersPerDegreeLon {
			t.Fatalf("lon scale did not decrease at %.1f°: %f >= %f", lat, f.MetersPerDegreeLon, prev.MetersPerDegreeLon)
		}
		if f.MetersPerDegreeLat <= prev.MetersPerDegreeLat {
			t.Fatalf("lat scale did not increase at %.1f°: %f <= %f", lat, f.MetersPerDegreeLat, prev.MetersPerDegreeLat)
		}
		if s := MetersPerDegree(-lat); s != f {
			t.Fatalf("scale is not symmetric at ±%.1f°", lat)
		}
		prev = f
	}
}

func TestMetersPerDegreeJerusalem(t *testing.T) {
	aoi := AOI{MinLon: 35.228, MinLat: 31.776, MaxLon: 35.239, MaxLat: 31.784}
	f := MetersPerDegree(aoi.MidLat())
	// about 94.7km per degree of longitude at 31.78°N
	if f.MetersPerDegreeLon < 94600 || f.MetersPerDegreeLon > 94800 {
		t.Errorf("lon scale = %f", f.MetersPerDegreeLon)
	}
	x, z := f.Extent(aoi)
	if math.Abs(x-0.011*f.MetersPerDegreeLon) > 1e-6 || math.Abs(z-0.008*f.MetersPerDegreeLat) > 1e-6 {
		t.Errorf("extent = %f x %f", x, z)
	}
}
