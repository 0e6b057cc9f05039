package localsearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter emits the batches scripted for a fragment once that fragment is released.
// It ignores cancellation, like a provider whose callbacks race with cancel.
type scriptedCompleter struct {
	mu       sync.Mutex
	requests []models.CompletionRequest
	batches  map[string][][]models.SuggestionItem
	release  map[string]chan struct{}
	done     map[string]chan struct{}
	err      error
}

func newScriptedCompleter() *scriptedCompleter {
	return &scriptedCompleter{
		batches: make(map[string][][]models.SuggestionItem),
		release: make(map[string]chan struct{}),
		done:    make(map[string]chan struct{}),
	}
}

func (c *scriptedCompleter) script(fragment string, batches ...[]models.SuggestionItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches[fragment] = batches
	c.release[fragment] = make(chan struct{})
	c.done[fragment] = make(chan struct{})
}

func (c *scriptedCompleter) Complete(ctx context.Context, req models.CompletionRequest, emit func([]models.SuggestionItem)) error {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	batches, release, done := c.batches[req.Fragment], c.release[req.Fragment], c.done[req.Fragment]
	err := c.err
	c.mu.Unlock()

	if release == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	defer close(done)

	<-release
	for _, b := range batches {
		emit(b)
	}
	return err
}

func (c *scriptedCompleter) resolve(t *testing.T, fragment string) {
	t.Helper()
	c.mu.Lock()
	release, done := c.release[fragment], c.done[fragment]
	c.mu.Unlock()

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("completion for %q did not finish", fragment)
	}
}

func (c *scriptedCompleter) fragments() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, r := range c.requests {
		out = append(out, r.Fragment)
	}
	return out
}

func suggestion(title string) models.SuggestionItem {
	return models.SuggestionItem{Title: title, Subtitle: "Seattle, WA", Handle: "h-" + title}
}

func TestCompletionEngine_LastFragmentWins(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()
	provider.script("Sea", []models.SuggestionItem{suggestion("Sea-Tac Airport")})
	provider.script("Seattle", []models.SuggestionItem{suggestion("Seattle Aquarium")}, []models.SuggestionItem{suggestion("Seattle Aquarium"), suggestion("Seattle Art Museum")})

	var applied [][]models.SuggestionItem
	engine := NewCompletionEngine(provider, loop, func(items []models.SuggestionItem) { applied = append(applied, items) })
	require.NoError(t, engine.Start(models.WorldRegion()))

	require.NoError(t, engine.SetFragment("Sea"))
	require.NoError(t, engine.SetFragment("Seattle"))

	// "Seattle" resolves first, then the stale "Sea" callback arrives.
	provider.resolve(t, "Seattle")
	provider.resolve(t, "Sea")
	flush(t, loop)

	require.Len(t, applied, 2)
	assert.Equal(t, "Seattle Aquarium", applied[0][0].Title)
	assert.Len(t, applied[1], 2)
	for _, batch := range applied {
		for _, item := range batch {
			assert.NotEqual(t, "Sea-Tac Airport", item.Title)
		}
	}
	assert.Eventually(t, func() bool { return engine.State() == CompletionIdle }, time.Second, 5*time.Millisecond)
	engine.Stop()
}

func TestCompletionEngine_RequestFilters(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()
	provider.script("pike", []models.SuggestionItem{suggestion("Pike Place Market")})

	engine := NewCompletionEngine(provider, loop, nil)
	region := models.RegionAround(models.Coordinate{Latitude: 47.6, Longitude: -122.3}, 20_000, 20_000)
	require.NoError(t, engine.Start(region))
	require.NoError(t, engine.SetFragment("pike"))
	provider.resolve(t, "pike")
	engine.Stop()

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, region, req.Region)
	assert.Equal(t, models.TravelCategories, req.Categories)
	assert.Equal(t, []models.ResultType{models.ResultTypePointOfInterest}, req.ResultTypes)
	assert.Equal(t, DefaultCompletionLimit, req.Limit)
}

func TestCompletionEngine_EmptyFragmentSkipsProvider(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()

	engine := NewCompletionEngine(provider, loop, nil)
	require.NoError(t, engine.Start(models.WorldRegion()))
	require.NoError(t, engine.SetFragment(""))
	flush(t, loop)

	assert.Empty(t, provider.fragments())
	assert.Equal(t, CompletionIdle, engine.State())
	engine.Stop()
}

func TestCompletionEngine_Lifecycle(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()
	engine := NewCompletionEngine(provider, loop, nil)

	assert.Equal(t, CompletionStopped, engine.State())
	assert.ErrorIs(t, engine.SetFragment("tea"), ErrCompleterStopped)

	require.NoError(t, engine.Start(models.WorldRegion()))
	assert.ErrorIs(t, engine.Start(models.WorldRegion()), ErrCompleterActive)

	// Unscripted fragments block until canceled; Stop must wait for them to return.
	require.NoError(t, engine.SetFragment("tea"))
	assert.Equal(t, CompletionActive, engine.State())
	engine.Stop()
	assert.Equal(t, CompletionStopped, engine.State())
	assert.Empty(t, engine.Fragment())

	require.NoError(t, engine.Start(models.WorldRegion()))
	engine.Stop()
}

func TestCompletionEngine_SetRegionReissues(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()
	engine := NewCompletionEngine(provider, loop, nil)
	require.NoError(t, engine.Start(models.WorldRegion()))

	require.NoError(t, engine.SetRegion(models.RegionAround(models.Coordinate{}, 1000, 1000)))
	assert.Empty(t, provider.fragments())

	require.NoError(t, engine.SetFragment("zoo"))
	require.NoError(t, engine.SetRegion(models.RegionAround(models.Coordinate{Latitude: 1}, 1000, 1000)))
	engine.Stop()

	assert.Equal(t, []string{"zoo", "zoo"}, provider.fragments())
	assert.Error(t, engine.SetRegion(models.SearchRegion{}))
}

func TestCompletionEngine_ErrorKeepsPreviousResults(t *testing.T) {
	loop := startLoop(t)
	provider := newScriptedCompleter()
	provider.err = errors.New("provider unavailable")
	provider.script("bar", []models.SuggestionItem{suggestion("Barrel Bar")})

	var applied [][]models.SuggestionItem
	engine := NewCompletionEngine(provider, loop, func(items []models.SuggestionItem) { applied = append(applied, items) })
	require.NoError(t, engine.Start(models.WorldRegion()))
	require.NoError(t, engine.SetFragment("bar"))
	provider.resolve(t, "bar")
	flush(t, loop)

	require.Len(t, applied, 1)
	assert.Equal(t, "Barrel Bar", applied[0][0].Title)
	engine.Stop()
}
