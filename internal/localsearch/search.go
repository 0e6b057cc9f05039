package localsearch

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

// DefaultSearchLimit caps the number of places requested per search.
const DefaultSearchLimit = 25

// SearchCallbacks receive search outcomes on the dispatcher.
type SearchCallbacks struct {
	OnPlaces func(places []models.PlaceItem, region models.SearchRegion)
	OnError  func(err *Error)
}

// SearchEngine runs one authoritative search at a time. Starting a search cancels the
// previous one without waiting, and a result is applied only while its request id is current.
type SearchEngine struct {
	provider   SearchProvider
	dispatcher Dispatcher
	callbacks  SearchCallbacks
	limit      int

	mu      sync.Mutex
	current uuid.UUID
	cancel  context.CancelFunc
}

func NewSearchEngine(provider SearchProvider, dispatcher Dispatcher, callbacks SearchCallbacks) *SearchEngine {
	return &SearchEngine{
		provider:   provider,
		dispatcher: dispatcher,
		callbacks:  callbacks,
		limit:      DefaultSearchLimit,
	}
}

// SearchByText searches for a free text query inside region.
func (e *SearchEngine) SearchByText(query string, region models.SearchRegion) (uuid.UUID, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return uuid.Nil, ErrEmptyQuery
	}
	return e.runSearch(models.SearchRequest{Query: query, Region: region})
}

// SearchBySuggestion resolves a suggestion handle without sending its text again.
func (e *SearchEngine) SearchBySuggestion(handle string, region models.SearchRegion) (uuid.UUID, error) {
	if handle == "" {
		return uuid.Nil, ErrEmptyQuery
	}
	return e.runSearch(models.SearchRequest{Handle: handle, Region: region})
}

func (e *SearchEngine) runSearch(req models.SearchRequest) (uuid.UUID, error) {
	if err := req.Region.Validate(); err != nil {
		return uuid.Nil, err
	}
	req.Categories = models.TravelCategories
	req.ResultTypes = []models.ResultType{models.ResultTypePointOfInterest}
	req.Limit = e.limit

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.current = id
	e.cancel = cancel
	e.mu.Unlock()

	log.Debug().Str("request_id", id.String()).Str("query", req.Query).Str("handle", req.Handle).Msg("Search started")

	go func() {
		defer cancel()
		resp, err := e.provider.Search(ctx, req)
		e.dispatcher.Dispatch(ctx, func() { e.deliver(id, req.Region, resp, err) })
	}()

	return id, nil
}

func (e *SearchEngine) deliver(id uuid.UUID, requested models.SearchRegion, resp *models.SearchResponse, err error) {
	e.mu.Lock()
	if e.current != id {
		e.mu.Unlock()
		log.Debug().Str("request_id", id.String()).Msg("Discarding superseded search result")
		return
	}
	e.current = uuid.Nil
	e.cancel = nil
	e.mu.Unlock()

	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		typed := classify("search", err)
		if typed.Kind == KindSuperseded {
			return
		}
		log.Warn().Err(typed).Str("request_id", id.String()).Msg("Search failed")
		if e.callbacks.OnError != nil {
			e.callbacks.OnError(typed)
		}
		return
	}

	region := resp.BoundingRegion
	if region.Validate() != nil {
		region = requested
	}
	if e.callbacks.OnPlaces != nil {
		e.callbacks.OnPlaces(resp.Places, region)
	}
}

// Cancel abandons the in-flight search, if any.
func (e *SearchEngine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.current = uuid.Nil
}

// InFlight reports whether a search is waiting for its result.
func (e *SearchEngine) InFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current != uuid.Nil
}
