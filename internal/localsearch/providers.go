package localsearch

import (
	"context"

	"github.com/okieraised/points-of-interests/internal/models"
)

// ReverseGeocoder resolves a location into administrative placemark information.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, loc models.Location) (*models.Placemark, error)
}

// CompletionProvider streams suggestion batches for a fragment. Complete blocks until the
// provider is done or ctx is canceled; every emitted batch replaces the previous one.
type CompletionProvider interface {
	Complete(ctx context.Context, req models.CompletionRequest, emit func([]models.SuggestionItem)) error
}

// SearchProvider runs one authoritative search.
type SearchProvider interface {
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
}

// FeatureResolver resolves an opaque on-map feature reference into a place.
type FeatureResolver interface {
	ResolveFeature(ctx context.Context, ref string) (*models.PlaceItem, error)
}

// AuthorizationStatus is the location permission granted to the application.
type AuthorizationStatus int

const (
	AuthorizationNotDetermined AuthorizationStatus = iota
	AuthorizationAuthorized
	AuthorizationDenied
	AuthorizationRestricted
)

func (s AuthorizationStatus) String() string {
	switch s {
	case AuthorizationAuthorized:
		return "authorized"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationRestricted:
		return "restricted"
	default:
		return "not_determined"
	}
}

// LocationProvider is the device location source.
type LocationProvider interface {
	AuthorizationStatus() AuthorizationStatus
	ServicesEnabled() bool
	// RequestAuthorization prompts for permission and returns once the status is decided.
	RequestAuthorization(ctx context.Context) error
	// RequestLocation returns a single fix.
	RequestLocation(ctx context.Context) (models.Location, error)
}
