package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	defaultCompletionLimit = 15
	defaultSearchLimit     = 25
	maxLimit               = 100
)

// PlaceRepository interface for dependency injection
type PlaceRepository interface {
	SearchPlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error)
	PlaceByID(ctx context.Context, id int64) (*models.Place, error)
}

// CompletionBackend answers prefix queries for live suggestions.
type CompletionBackend interface {
	CompletePlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error)
}

// PlaceService contains the business logic for completion, search and place lookup.
type PlaceService struct {
	repo     PlaceRepository
	backends []CompletionBackend
	phones   *PhoneFormatter
}

// NewPlaceService creates a place service. Completion backends are queried in order,
// fastest first; each one may refine the batch produced by the previous.
func NewPlaceService(repo PlaceRepository, phones *PhoneFormatter, backends ...CompletionBackend) *PlaceService {
	return &PlaceService{repo: repo, backends: backends, phones: phones}
}

// Complete streams suggestion batches for a fragment. Every distinct non-empty batch is
// passed to emit; an empty batch is emitted only when nothing matched at all.
func (s *PlaceService) Complete(ctx context.Context, req models.CompletionRequest, emit func([]models.SuggestionItem)) error {
	fragment := strings.TrimSpace(req.Fragment)
	if fragment == "" {
		return fmt.Errorf("service: fragment cannot be empty: %w", ErrInvalidArgument)
	}
	if err := req.Region.Validate(); err != nil {
		return fmt.Errorf("service: %v: %w", err, ErrInvalidArgument)
	}

	filter := models.FilterFor(fragment, req.Region, categoriesOrDefault(req.Categories), kindsOrDefault(req.ResultTypes), clampLimit(req.Limit, defaultCompletionLimit))

	var (
		last    []models.SuggestionItem
		emitted bool
		failed  error
	)
	for i, backend := range s.backends {
		places, err := backend.CompletePlaces(ctx, filter)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn().Err(err).Int("backend", i).Str("fragment", fragment).Msg("Completion backend failed")
			failed = err
			continue
		}

		items := s.suggestions(places, fragment)
		if len(items) == 0 || reflect.DeepEqual(items, last) {
			continue
		}
		emit(items)
		last = items
		emitted = true
	}

	if !emitted {
		if failed != nil {
			return fmt.Errorf("service: failed to complete fragment: %w", failed)
		}
		emit([]models.SuggestionItem{})
	}
	return nil
}

// Search resolves either a free text query or a suggestion handle into places and the
// region they were drawn from.
func (s *PlaceService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	switch {
	case query == "" && req.Handle == "":
		return nil, fmt.Errorf("service: query or handle is required: %w", ErrInvalidArgument)
	case query != "" && req.Handle != "":
		return nil, fmt.Errorf("service: query and handle are mutually exclusive: %w", ErrInvalidArgument)
	}
	if err := req.Region.Validate(); err != nil {
		return nil, fmt.Errorf("service: %v: %w", err, ErrInvalidArgument)
	}

	categories, kinds := categoriesOrDefault(req.Categories), kindsOrDefault(req.ResultTypes)
	var places []models.Place
	if req.Handle != "" {
		place, err := s.placeByHandle(ctx, req.Handle)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(kinds, place.Kind) || !slices.Contains(categories, place.Category) {
			return nil, fmt.Errorf("service: place %s is outside the search filter: %w", req.Handle, ErrNotFound)
		}
		places = []models.Place{*place}
	} else {
		filter := models.FilterFor(query, req.Region, categories, kinds, clampLimit(req.Limit, defaultSearchLimit))
		found, err := s.repo.SearchPlaces(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("service: failed to search places: %w", err)
		}
		places = found
	}

	items := make([]models.PlaceItem, 0, len(places))
	coords := make([]models.Coordinate, 0, len(places))
	for _, p := range places {
		items = append(items, s.item(p))
		coords = append(coords, p.Coordinate())
	}

	return &models.SearchResponse{
		Places:         items,
		BoundingRegion: models.BoundingRegion(coords, req.Region),
	}, nil
}

// Lookup returns the place behind a handle.
func (s *PlaceService) Lookup(ctx context.Context, handle string) (*models.PlaceItem, error) {
	place, err := s.placeByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	item := s.item(*place)
	return &item, nil
}

// ResolveFeature resolves an on-map feature reference. Map features reference places by
// "place:<handle>" or by the bare handle.
func (s *PlaceService) ResolveFeature(ctx context.Context, ref string) (*models.PlaceItem, error) {
	return s.Lookup(ctx, strings.TrimPrefix(ref, "place:"))
}

func (s *PlaceService) placeByHandle(ctx context.Context, handle string) (*models.Place, error) {
	id, ok := models.ParseHandle(handle)
	if !ok {
		return nil, fmt.Errorf("service: malformed handle %q: %w", handle, ErrInvalidArgument)
	}
	place, err := s.repo.PlaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("service: place %s: %w", handle, ErrNotFound)
		}
		return nil, fmt.Errorf("service: failed to load place: %w", err)
	}
	return place, nil
}

func (s *PlaceService) item(p models.Place) models.PlaceItem {
	item := p.Item()
	if s.phones != nil {
		item.Phone = s.phones.Format(item.Phone)
	}
	return item
}

func (s *PlaceService) suggestions(places []models.Place, fragment string) []models.SuggestionItem {
	items := make([]models.SuggestionItem, 0, len(places))
	for _, p := range places {
		subtitle := p.FormattedAddress()
		items = append(items, models.SuggestionItem{
			Title:              p.Name,
			Subtitle:           subtitle,
			TitleHighlights:    MatchRanges(p.Name, fragment),
			SubtitleHighlights: MatchRanges(subtitle, fragment),
			Handle:             p.Handle(),
		})
	}
	return items
}

func categoriesOrDefault(c []models.Category) []models.Category {
	if len(c) == 0 {
		return models.TravelCategories
	}
	return c
}

func kindsOrDefault(k []models.ResultType) []models.ResultType {
	if len(k) == 0 {
		return []models.ResultType{models.ResultTypePointOfInterest}
	}
	return k
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, maxLimit)
}
