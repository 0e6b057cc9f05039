package localsearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSearchProvider is a mock implementation of SearchProvider.
type MockSearchProvider struct {
	mock.Mock
}

func (m *MockSearchProvider) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchResponse), args.Error(1)
}

func byQuery(q string) interface{} {
	return mock.MatchedBy(func(req models.SearchRequest) bool { return req.Query == q })
}

func byHandle(h string) interface{} {
	return mock.MatchedBy(func(req models.SearchRequest) bool { return req.Handle == h })
}

type searchRecorder struct {
	places  [][]models.PlaceItem
	regions []models.SearchRegion
	errs    []*Error
}

func (r *searchRecorder) callbacks() SearchCallbacks {
	return SearchCallbacks{
		OnPlaces: func(places []models.PlaceItem, region models.SearchRegion) {
			r.places = append(r.places, places)
			r.regions = append(r.regions, region)
		},
		OnError: func(err *Error) { r.errs = append(r.errs, err) },
	}
}

var seattleRegion = models.RegionAround(models.Coordinate{Latitude: 47.6062, Longitude: -122.3321}, 20_000, 20_000)

func TestSearchEngine_SearchByText(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	bounding := models.SearchRegion{Center: models.Coordinate{Latitude: 47.61, Longitude: -122.34}, LatitudeDelta: 0.05, LongitudeDelta: 0.07}
	provider.On("Search", mock.Anything, byQuery("coffee")).Return(&models.SearchResponse{
		Places:         []models.PlaceItem{{Handle: "1", Name: "Storyville Coffee"}},
		BoundingRegion: bounding,
	}, nil)

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())

	id, err := engine.SearchByText("  coffee ", seattleRegion)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	assert.Eventually(t, func() bool {
		done := false
		loop.Call(context.Background(), func() { done = len(rec.places) == 1 })
		return done
	}, time.Second, 5*time.Millisecond)

	loop.Call(context.Background(), func() {
		assert.Equal(t, "Storyville Coffee", rec.places[0][0].Name)
		assert.Equal(t, bounding, rec.regions[0])
	})
	assert.False(t, engine.InFlight())

	req := provider.Calls[0].Arguments.Get(1).(models.SearchRequest)
	assert.Equal(t, seattleRegion, req.Region)
	assert.Equal(t, models.TravelCategories, req.Categories)
	assert.Equal(t, []models.ResultType{models.ResultTypePointOfInterest}, req.ResultTypes)
	assert.Empty(t, req.Handle)
}

func TestSearchEngine_Validation(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	engine := NewSearchEngine(provider, loop, SearchCallbacks{})

	_, err := engine.SearchByText("   ", seattleRegion)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = engine.SearchBySuggestion("", seattleRegion)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = engine.SearchByText("museum", models.SearchRegion{})
	assert.Error(t, err)

	provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchEngine_SupersededResultDiscarded(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	releaseA := make(chan struct{})

	// A ignores cancellation and answers after B has been applied.
	provider.On("Search", mock.Anything, byQuery("museum")).
		Run(func(args mock.Arguments) { <-releaseA }).
		Return(&models.SearchResponse{Places: []models.PlaceItem{{Name: "Stale Museum"}}, BoundingRegion: seattleRegion}, nil).
		Once()
	provider.On("Search", mock.Anything, byQuery("aquarium")).
		Return(&models.SearchResponse{Places: []models.PlaceItem{{Name: "Seattle Aquarium"}}, BoundingRegion: seattleRegion}, nil).
		Once()

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())

	_, err := engine.SearchByText("museum", seattleRegion)
	require.NoError(t, err)
	_, err = engine.SearchByText("aquarium", seattleRegion)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		done := false
		loop.Call(context.Background(), func() { done = len(rec.places) == 1 })
		return done
	}, time.Second, 5*time.Millisecond)

	close(releaseA)
	time.Sleep(50 * time.Millisecond)
	flush(t, loop)

	loop.Call(context.Background(), func() {
		require.Len(t, rec.places, 1)
		assert.Equal(t, "Seattle Aquarium", rec.places[0][0].Name)
		assert.Empty(t, rec.errs)
	})
}

func TestSearchEngine_FailureReported(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	provider.On("Search", mock.Anything, byQuery("hotel")).Return(nil, errors.New("network is unreachable"))

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())
	_, err := engine.SearchByText("hotel", seattleRegion)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		done := false
		loop.Call(context.Background(), func() { done = len(rec.errs) == 1 })
		return done
	}, time.Second, 5*time.Millisecond)

	loop.Call(context.Background(), func() {
		assert.Equal(t, KindTransient, rec.errs[0].Kind)
		assert.Equal(t, "search", rec.errs[0].Op)
		assert.Empty(t, rec.places)
	})
}

func TestSearchEngine_CanceledSearchIsSilent(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	started := make(chan struct{})
	provider.On("Search", mock.Anything, byQuery("zoo")).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled)

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())
	_, err := engine.SearchByText("zoo", seattleRegion)
	require.NoError(t, err)
	<-started
	assert.True(t, engine.InFlight())

	engine.Cancel()
	assert.False(t, engine.InFlight())
	time.Sleep(20 * time.Millisecond)
	flush(t, loop)

	loop.Call(context.Background(), func() {
		assert.Empty(t, rec.errs)
		assert.Empty(t, rec.places)
	})
}

func TestSearchEngine_SuggestionRoundTrip(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	item := models.SuggestionItem{Title: "Space Needle", Subtitle: "400 Broad St, Seattle", Handle: "42"}
	provider.On("Search", mock.Anything, byHandle("42")).Return(&models.SearchResponse{
		Places:         []models.PlaceItem{{Handle: "42", Name: "Space Needle", FormattedAddress: "400 Broad St, Seattle, WA 98109, USA"}},
		BoundingRegion: seattleRegion,
	}, nil)

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())
	_, err := engine.SearchBySuggestion(item.Handle, seattleRegion)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		done := false
		loop.Call(context.Background(), func() { done = len(rec.places) == 1 })
		return done
	}, time.Second, 5*time.Millisecond)

	loop.Call(context.Background(), func() {
		assert.Equal(t, item.Title, rec.places[0][0].Name)
	})
	req := provider.Calls[0].Arguments.Get(1).(models.SearchRequest)
	assert.Empty(t, req.Query)
	assert.Equal(t, "42", req.Handle)
}

func TestSearchEngine_InvalidBoundingRegionFallsBack(t *testing.T) {
	loop := startLoop(t)
	provider := new(MockSearchProvider)
	provider.On("Search", mock.Anything, byQuery("winery")).Return(&models.SearchResponse{}, nil)

	rec := &searchRecorder{}
	engine := NewSearchEngine(provider, loop, rec.callbacks())
	_, err := engine.SearchByText("winery", seattleRegion)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		done := false
		loop.Call(context.Background(), func() { done = len(rec.regions) == 1 })
		return done
	}, time.Second, 5*time.Millisecond)
	loop.Call(context.Background(), func() { assert.Equal(t, seattleRegion, rec.regions[0]) })
}
