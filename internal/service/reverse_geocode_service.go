package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ReverseGeoCodeService contains the core business logic for reverse geocoding operations
type ReverseGeoCodeService struct {
	repo  ReverseGeoCodeRepository
	cache PlacemarkCache
	keyFn func(lat, lon float64) string
	group singleflight.Group
}

// ReverseGeoCodeRepository interface for dependency injection
type ReverseGeoCodeRepository interface {
	FindNearestPlace(ctx context.Context, lat, lon float64) (*models.Place, error)
}

// PlacemarkCache stores resolved placemarks. It is optional.
type PlacemarkCache interface {
	Get(ctx context.Context, key string) (*models.Placemark, bool, error)
	Set(ctx context.Context, key string, pm *models.Placemark) error
}

// NewReverseGeoCodeService creates a new reverse geo code service. cache may be nil.
func NewReverseGeoCodeService(repo ReverseGeoCodeRepository, cache PlacemarkCache, keyFn func(lat, lon float64) string) *ReverseGeoCodeService {
	if keyFn == nil {
		keyFn = func(lat, lon float64) string { return fmt.Sprintf("placemark:%.4f:%.4f", lat, lon) }
	}
	return &ReverseGeoCodeService{repo: repo, cache: cache, keyFn: keyFn}
}

// ReverseGeocode finds the placemark nearest to the given coordinates. Concurrent
// lookups for the same cache key share one query.
func (s *ReverseGeoCodeService) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Placemark, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("service: invalid latitude: %f: %w", lat, ErrInvalidArgument)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("service: invalid longitude: %f: %w", lon, ErrInvalidArgument)
	}

	key := s.keyFn(lat, lon)
	if s.cache != nil {
		pm, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Placemark cache read failed")
		} else if ok {
			return pm, nil
		}
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Detached from any one caller so a canceled request does not fail the others.
		place, err := s.repo.FindNearestPlace(context.WithoutCancel(ctx), lat, lon)
		if err != nil {
			return nil, err
		}
		if place == nil {
			return nil, ErrNotFound
		}
		pm := place.Placemark()
		if s.cache != nil {
			if err := s.cache.Set(context.WithoutCancel(ctx), key, &pm); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Placemark cache write failed")
			}
		}
		return &pm, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("service: no placemark near %f,%f: %w", lat, lon, ErrNotFound)
		}
		return nil, fmt.Errorf("service: failed to find nearest place: %w", err)
	}
	if shared {
		log.Debug().Str("key", key).Msg("Reverse geocode shared with concurrent request")
	}

	pm := *v.(*models.Placemark)
	return &pm, nil
}
