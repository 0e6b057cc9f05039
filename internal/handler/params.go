package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/okieraised/points-of-interests/internal/service"
	"github.com/rs/zerolog/log"
)

// defaultSpanMeters is the region span used when only a center is given.
const defaultSpanMeters = 20_000

// parseRegion reads lat, lon, lat_delta and lon_delta. With no center the whole world is
// searched; with a center but no span a 20 km square is used.
func parseRegion(c *gin.Context) (models.SearchRegion, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return models.WorldRegion(), nil
	}
	if latStr == "" || lonStr == "" {
		return models.SearchRegion{}, errors.New("'lat' and 'lon' must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return models.SearchRegion{}, errors.New("invalid latitude format")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return models.SearchRegion{}, errors.New("invalid longitude format")
	}
	center := models.Coordinate{Latitude: lat, Longitude: lon}

	latDeltaStr, lonDeltaStr := c.Query("lat_delta"), c.Query("lon_delta")
	if latDeltaStr == "" && lonDeltaStr == "" {
		region := models.RegionAround(center, defaultSpanMeters, defaultSpanMeters)
		return region, region.Validate()
	}

	latDelta, err := strconv.ParseFloat(latDeltaStr, 64)
	if err != nil {
		return models.SearchRegion{}, errors.New("invalid 'lat_delta' format")
	}
	lonDelta, err := strconv.ParseFloat(lonDeltaStr, 64)
	if err != nil {
		return models.SearchRegion{}, errors.New("invalid 'lon_delta' format")
	}

	region := models.SearchRegion{Center: center, LatitudeDelta: latDelta, LongitudeDelta: lonDelta}
	return region, region.Validate()
}

func parseCategories(c *gin.Context) []models.Category {
	var out []models.Category
	for _, v := range c.QueryArray("category") {
		if v != "" {
			out = append(out, models.Category(v))
		}
	}
	return out
}

func parseResultTypes(c *gin.Context) ([]models.ResultType, error) {
	var out []models.ResultType
	for _, v := range c.QueryArray("result_type") {
		switch rt := models.ResultType(v); rt {
		case models.ResultTypePointOfInterest, models.ResultTypeAddress:
			out = append(out, rt)
		default:
			return nil, fmt.Errorf("unknown result_type %q", v)
		}
	}
	return out, nil
}

func parseLimit(c *gin.Context) (int, error) {
	s := c.Query("limit")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid 'limit' format")
	}
	return n, nil
}

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
