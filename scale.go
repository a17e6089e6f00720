package main

import "math"

// ScaleFactors converts degrees to metres at one latitude.
type ScaleFactors struct {
	MetersPerDegreeLat float64 `json:"metersPerDegreeLat"`
	MetersPerDegreeLon float64 `json:"metersPerDegreeLon"`
}

// GeodeticSeries holds the cosine series coefficients of the ellipsoid:
//
//	lat: Lat[0] + Lat[1]cos2φ + Lat[2]cos4φ + Lat[3]cos6φ
//	lon: Lon[0]cosφ + Lon[1]cos3φ + Lon[2]cos5φ
type GeodeticSeries struct {
	Lat [4]float64
	Lon [3]float64
}

// WGS84Series 为WGS84椭球的系数
var WGS84Series = GeodeticSeries{
	Lat: [4]float64{111132.92, -559.82, 1.175, -0.0023},
	Lon: [3]float64{111412.84, -93.5, 0.118},
}

// MetersPerDegree evaluates the series at latDeg. Not meant for the poles.
func (s GeodeticSeries) MetersPerDegree(latDeg float64) ScaleFactors {
	phi := latDeg * math.Pi / 180
	return ScaleFactors{
		MetersPerDegreeLat: s.Lat[0] + s.Lat[1]*math.Cos(2*phi) + s.Lat[2]*math.Cos(4*phi) + s.Lat[3]*math.Cos(6*phi),
		MetersPerDegreeLon: s.Lon[0]*math.Cos(phi) + s.Lon[1]*math.Cos(3*phi) + s.Lon[2]*math.Cos(5*phi),
	}
}

// MetersPerDegree uses the WGS84 series.
func MetersPerDegree(latDeg float64) ScaleFactors {
	return WGS84Series.MetersPerDegree(latDeg)
}

// Extent returns the AOI's east-west and north-south size in metres.
func (f ScaleFactors) Extent(aoi AOI) (sizeX, sizeZ float64) {
	return (aoi.MaxLon - aoi.MinLon) * f.MetersPerDegreeLon, (aoi.MaxLat - aoi.MinLat) * f.MetersPerDegreeLat
}
