package localsearch

import (
	"context"
	"errors"
	"sync"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

// CompletionState is the lifecycle state of a CompletionEngine.
type CompletionState int

const (
	CompletionStopped CompletionState = iota
	CompletionIdle
	CompletionActive
)

func (s CompletionState) String() string {
	switch s {
	case CompletionIdle:
		return "idle"
	case CompletionActive:
		return "active"
	default:
		return "stopped"
	}
}

// DefaultCompletionLimit caps the number of suggestions requested per fragment.
const DefaultCompletionLimit = 15

// CompletionEngine turns fragment updates into streamed suggestion lists. Only batches
// for the most recently issued fragment reach onResults, on the dispatcher.
type CompletionEngine struct {
	provider   CompletionProvider
	dispatcher Dispatcher
	onResults  func([]models.SuggestionItem)
	limit      int

	mu         sync.Mutex
	state      CompletionState
	fragment   string
	region     models.SearchRegion
	generation uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewCompletionEngine returns a stopped engine. Call Start before setting fragments.
func NewCompletionEngine(provider CompletionProvider, dispatcher Dispatcher, onResults func([]models.SuggestionItem)) *CompletionEngine {
	return &CompletionEngine{
		provider:   provider,
		dispatcher: dispatcher,
		onResults:  onResults,
		limit:      DefaultCompletionLimit,
		region:     models.WorldRegion(),
	}
}

// Start opens a completion session scoped to region.
func (e *CompletionEngine) Start(region models.SearchRegion) error {
	if err := region.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != CompletionStopped {
		return ErrCompleterActive
	}
	e.state = CompletionIdle
	e.region = region
	e.fragment = ""
	return nil
}

// SetFragment cancels the computation for the previous fragment and starts one for text.
// An empty fragment never reaches the provider and leaves the engine idle.
func (e *CompletionEngine) SetFragment(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == CompletionStopped {
		return ErrCompleterStopped
	}
	e.fragment = text
	e.issueLocked()
	return nil
}

// SetRegion rescopes the session. A pending fragment is issued again for the new region.
func (e *CompletionEngine) SetRegion(region models.SearchRegion) error {
	if err := region.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.region = region
	if e.state == CompletionStopped || e.fragment == "" {
		return nil
	}
	e.issueLocked()
	return nil
}

// Stop cancels outstanding work and waits until every provider call has returned.
func (e *CompletionEngine) Stop() {
	e.mu.Lock()
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = CompletionStopped
	e.fragment = ""
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *CompletionEngine) State() CompletionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *CompletionEngine) Fragment() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fragment
}

func (e *CompletionEngine) issueLocked() {
	e.generation++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.fragment == "" {
		e.state = CompletionIdle
		return
	}

	gen := e.generation
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.state = CompletionActive

	req := models.CompletionRequest{
		Fragment:    e.fragment,
		Region:      e.region,
		Categories:  models.TravelCategories,
		ResultTypes: []models.ResultType{models.ResultTypePointOfInterest},
		Limit:       e.limit,
	}

	e.wg.Add(1)
	go e.run(ctx, gen, req)
}

func (e *CompletionEngine) run(ctx context.Context, gen uint64, req models.CompletionRequest) {
	defer e.wg.Done()

	emit := func(items []models.SuggestionItem) {
		batch := append([]models.SuggestionItem(nil), items...)
		e.dispatcher.Dispatch(ctx, func() { e.deliver(gen, batch) })
	}

	err := e.provider.Complete(ctx, req, emit)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(classify("complete", err)).Str("fragment", req.Fragment).Msg("Completion failed")
	}

	e.dispatcher.Dispatch(ctx, func() { e.finish(gen) })
}

func (e *CompletionEngine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen && e.state != CompletionStopped
}

func (e *CompletionEngine) deliver(gen uint64, items []models.SuggestionItem) {
	if !e.current(gen) {
		return
	}
	if e.onResults != nil {
		e.onResults(items)
	}
}

func (e *CompletionEngine) finish(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation == gen && e.state == CompletionActive {
		e.state = CompletionIdle
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
	}
}
