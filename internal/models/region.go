package models

import (
	"fmt"
	"math"
)

const metersPerDegreeLatitude = 111_320.0

// SearchRegion is a center plus latitudinal and longitudinal spans in degrees.
// Spans are always positive; the zero value is not a valid region.
type SearchRegion struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// WorldRegion spans the whole globe.
func WorldRegion() SearchRegion {
	return SearchRegion{
		Center:         Coordinate{},
		LatitudeDelta:  180,
		LongitudeDelta: 360,
	}
}

// RegionAround returns a region centered on c covering the given distances in meters.
func RegionAround(c Coordinate, latitudinalMeters, longitudinalMeters float64) SearchRegion {
	latDelta := latitudinalMeters / metersPerDegreeLatitude
	lonDelta := 360.0
	if cos := math.Cos(c.Latitude * math.Pi / 180); cos > 1e-6 {
		lonDelta = longitudinalMeters / (metersPerDegreeLatitude * cos)
	}
	return SearchRegion{
		Center:         c,
		LatitudeDelta:  math.Min(latDelta, 180),
		LongitudeDelta: math.Min(lonDelta, 360),
	}
}

// Validate checks the non-degenerate invariant.
func (r SearchRegion) Validate() error {
	if !r.Center.Valid() {
		return fmt.Errorf("region center out of range: %f,%f", r.Center.Latitude, r.Center.Longitude)
	}
	if !(r.LatitudeDelta > 0) || !(r.LongitudeDelta > 0) {
		return fmt.Errorf("region span must be positive: %f x %f", r.LatitudeDelta, r.LongitudeDelta)
	}
	return nil
}

// WithCenter returns a copy of the region re-centered on c, keeping its span.
func (r SearchRegion) WithCenter(c Coordinate) SearchRegion {
	r.Center = c
	return r
}

// Bounds returns the south-west and north-east corners clamped to WGS84.
func (r SearchRegion) Bounds() (minLat, minLon, maxLat, maxLon float64) {
	minLat = math.Max(r.Center.Latitude-r.LatitudeDelta/2, -90)
	maxLat = math.Min(r.Center.Latitude+r.LatitudeDelta/2, 90)
	minLon = math.Max(r.Center.Longitude-r.LongitudeDelta/2, -180)
	maxLon = math.Min(r.Center.Longitude+r.LongitudeDelta/2, 180)
	return minLat, minLon, maxLat, maxLon
}

// Contains reports whether c falls inside the region bounds.
func (r SearchRegion) Contains(c Coordinate) bool {
	minLat, minLon, maxLat, maxLon := r.Bounds()
	return c.Latitude >= minLat && c.Latitude <= maxLat && c.Longitude >= minLon && c.Longitude <= maxLon
}

// BoundingRegion returns the padded extent of the given coordinates, or fallback when there are none.
// Single points (or collinear sets) get a minimum span so the result stays non-degenerate.
func BoundingRegion(coords []Coordinate, fallback SearchRegion) SearchRegion {
	if len(coords) == 0 {
		return fallback
	}

	minLat, maxLat := coords[0].Latitude, coords[0].Latitude
	minLon, maxLon := coords[0].Longitude, coords[0].Longitude
	for _, c := range coords[1:] {
		minLat = math.Min(minLat, c.Latitude)
		maxLat = math.Max(maxLat, c.Latitude)
		minLon = math.Min(minLon, c.Longitude)
		maxLon = math.Max(maxLon, c.Longitude)
	}

	const padding = 1.2
	const minDelta = 0.01
	return SearchRegion{
		Center: Coordinate{
			Latitude:  (minLat + maxLat) / 2,
			Longitude: (minLon + maxLon) / 2,
		},
		LatitudeDelta:  math.Min(math.Max((maxLat-minLat)*padding, minDelta), 180),
		LongitudeDelta: math.Min(math.Max((maxLon-minLon)*padding, minDelta), 360),
	}
}
