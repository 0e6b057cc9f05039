package localsearch

import "github.com/okieraised/points-of-interests/internal/models"

// LocalSearchDistance is the side of the square searched around the live location, in meters.
const LocalSearchDistance = 20_000.0

// MapFeatureDistance is the side of the map region shown around the live location, in meters.
const MapFeatureDistance = 1_000.0

// DeriveRegion computes the region that scopes the next query.
//
// With both a location and a previous search region, the previous span is kept and
// re-centered on the live coordinate. With only a location, a fixed square around it
// is used. With only a previous region, that region is reused as is. Otherwise the
// whole world is searched.
func DeriveRegion(loc *models.Location, last *models.SearchRegion) models.SearchRegion {
	switch {
	case loc != nil && last != nil:
		return last.WithCenter(loc.Coordinate)
	case loc != nil:
		return models.RegionAround(loc.Coordinate, LocalSearchDistance, LocalSearchDistance)
	case last != nil:
		return *last
	default:
		return models.WorldRegion()
	}
}

// Recenter keeps the span of region and moves its center to c.
func Recenter(region models.SearchRegion, c models.Coordinate) models.SearchRegion {
	return region.WithCenter(c)
}
