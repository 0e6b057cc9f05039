package localsearch

import (
	"context"
	"errors"
	"sync"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

// Mode is the kind of content the session currently treats as authoritative.
type Mode int

const (
	ModeNoQuery Mode = iota
	ModeSuggestions
	ModeResults
	ModeError
)

func (m Mode) String() string {
	switch m {
	case ModeSuggestions:
		return "suggestions"
	case ModeResults:
		return "results"
	case ModeError:
		return "error"
	default:
		return "no_query"
	}
}

// AlertAction is one button of an alert.
type AlertAction struct {
	Label         string
	OpensSettings bool
}

// Alert is a dismissable message for the user.
type Alert struct {
	Kind    ErrorKind
	Title   string
	Message string
	Actions []AlertAction
}

// Selection asks the navigation layer to show a place, framed by Region.
type Selection struct {
	Place  models.PlaceItem
	Region models.SearchRegion
}

// Events are invoked on the session dispatcher. Nil callbacks are skipped.
type Events struct {
	OnRows      func(Snapshot)
	OnAlert     func(Alert)
	OnSelection func(Selection)
	OnText      func(string)
	OnMode      func(Mode)
}

// Providers groups the external services a session depends on.
type Providers struct {
	Location   LocationProvider
	Completion CompletionProvider
	Search     SearchProvider
	Features   FeatureResolver
}

// State is a point-in-time view of the session, for inspection.
type State struct {
	Text      string
	Editing   bool
	Mode      Mode
	Region    models.SearchRegion
	Location  *models.Location
	Placemark *models.Placemark
}

// Session drives one search surface. Its public methods may be called from any
// goroutine; they are queued onto the loop and run there in order.
type Session struct {
	loop      *Loop
	location  *LocationState
	providers Providers
	localizer *Localizer
	events    Events

	list       *ResultList
	completion *CompletionEngine
	search     *SearchEngine

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	subsMu      sync.Mutex
	unsubscribe []func()

	// Loop-confined state.
	text          string
	editing       bool
	mode          Mode
	region        models.SearchRegion
	lastSearch    *models.SearchRegion
	current       *models.Location
	placemark     *models.Placemark
	places        []models.PlaceItem
	searched      bool
	pending       bool
	featureGen    uint64
	featureCancel context.CancelFunc
	started       bool
}

func NewSession(loop *Loop, location *LocationState, providers Providers, localizer *Localizer, events Events) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		loop:      loop,
		location:  location,
		providers: providers,
		localizer: localizer,
		events:    events,
		list:      NewResultList(localizer),
		ctx:       ctx,
		cancel:    cancel,
		region:    models.WorldRegion(),
	}
	s.completion = NewCompletionEngine(providers.Completion, loop, s.onSuggestions)
	s.search = NewSearchEngine(providers.Search, loop, SearchCallbacks{
		OnPlaces: s.onPlaces,
		OnError:  s.onSearchError,
	})
	s.list.Subscribe(func(snap Snapshot) {
		if s.events.OnRows != nil {
			s.events.OnRows(snap)
		}
	})
	return s
}

func (s *Session) post(fn func()) bool {
	return s.loop.Dispatch(s.ctx, fn)
}

// Start subscribes to location updates and asks for the device location.
func (s *Session) Start() {
	s.post(func() {
		if s.started {
			return
		}
		s.started = true
		s.subsMu.Lock()
		s.unsubscribe = append(s.unsubscribe,
			s.location.Subscribe(func(loc models.Location) { s.post(func() { s.onLocation(loc) }) }),
			s.location.SubscribePlacemark(func(u PlacemarkUpdate) { s.post(func() { s.onPlacemark(u) }) }),
		)
		s.subsMu.Unlock()
		s.emitRows()
		s.requestLocation()
	})
}

// RequestLocation checks permissions and requests a one-shot location fix.
func (s *Session) RequestLocation() {
	s.post(s.requestLocation)
}

// Foreground retries the location request when the application becomes active again.
func (s *Session) Foreground() {
	s.post(s.requestLocation)
}

// BeginEditing opens a completion session for the search field.
func (s *Session) BeginEditing() {
	s.post(func() {
		s.editing = true
		if err := s.completion.Start(s.region); err != nil && !errors.Is(err, ErrCompleterActive) {
			log.Warn().Err(err).Msg("Could not start completion session")
			return
		}
		if s.text != "" {
			s.setFragment(s.text)
		}
	})
}

// SetText updates the search text and the completion fragment.
func (s *Session) SetText(text string) {
	s.post(func() {
		s.text = text
		if !s.editing {
			return
		}
		s.setFragment(text)
	})
}

// Submit runs an authoritative search for the current text.
func (s *Session) Submit() {
	s.post(func() {
		s.endEditing()
		s.runTextSearch(s.text)
	})
}

// EndEditing closes the completion session and shows the latest results again.
func (s *Session) EndEditing() {
	s.post(s.endEditing)
}

// SelectSuggestion resolves a suggestion into places without re-running the text query.
func (s *Session) SelectSuggestion(item models.SuggestionItem) {
	s.post(func() {
		s.setText(item.Title)
		s.endEditing()
		if _, err := s.search.SearchBySuggestion(item.Handle, s.region); err != nil {
			log.Warn().Err(err).Str("handle", item.Handle).Msg("Could not search for suggestion")
		}
	})
}

// SelectPlace publishes a selection framed by the search region re-centered on the place.
func (s *Session) SelectPlace(place models.PlaceItem) {
	s.post(func() {
		s.selectPlace(place, s.region)
	})
}

// SelectFeature resolves a tapped map feature. A newer tap supersedes an unresolved one.
func (s *Session) SelectFeature(ref string) {
	s.post(func() {
		if s.providers.Features == nil {
			return
		}
		if s.featureCancel != nil {
			s.featureCancel()
		}
		s.featureGen++
		gen := s.featureGen
		ctx, cancel := context.WithCancel(s.ctx)
		s.featureCancel = cancel

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer cancel()
			place, err := s.providers.Features.ResolveFeature(ctx, ref)
			s.loop.Dispatch(ctx, func() { s.onFeature(gen, ref, place, err) })
		}()
	})
}

// State returns a copy of the session state, read on the loop.
func (s *Session) State(ctx context.Context) (State, bool) {
	var st State
	ok := s.loop.Call(ctx, func() {
		st = State{
			Text:      s.text,
			Editing:   s.editing,
			Mode:      s.mode,
			Region:    s.region,
			Location:  s.current,
			Placemark: s.placemark,
		}
	})
	return st, ok
}

// Rows returns the current row list.
func (s *Session) Rows() Snapshot {
	return s.list.Snapshot()
}

func (s *Session) Localizer() *Localizer {
	return s.localizer
}

// Close stops all outstanding work and subscriptions.
func (s *Session) Close() {
	s.cancel()

	s.subsMu.Lock()
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
	s.subsMu.Unlock()

	s.completion.Stop()
	s.search.Cancel()
	s.wg.Wait()
}

func (s *Session) requestLocation() {
	lp := s.providers.Location
	if lp == nil {
		return
	}
	if !lp.ServicesEnabled() {
		s.permissionAlert(ErrServicesDisabled)
		return
	}

	switch lp.AuthorizationStatus() {
	case AuthorizationNotDetermined:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := lp.RequestAuthorization(s.ctx); err != nil {
				log.Warn().Err(err).Msg("Location authorization request failed")
				return
			}
			s.post(func() {
				if lp.AuthorizationStatus() != AuthorizationNotDetermined {
					s.requestLocation()
				}
			})
		}()
	case AuthorizationDenied:
		s.permissionAlert(ErrLocationDenied)
	case AuthorizationRestricted:
		s.permissionAlert(ErrLocationRestricted)
	case AuthorizationAuthorized:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			loc, err := lp.RequestLocation(s.ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Warn().Err(classify("location", err)).Msg("Location request failed")
				}
				return
			}
			s.location.SetLocation(loc)
		}()
	}
}

func (s *Session) permissionAlert(cause error) {
	alert := Alert{
		Kind:  KindPermission,
		Title: s.localizer.text(keyLocationAlertTitle),
		Actions: []AlertAction{
			{Label: s.localizer.text(keyButtonSettings), OpensSettings: true},
			{Label: s.localizer.text(keyButtonCancel)},
		},
	}
	switch {
	case errors.Is(cause, ErrLocationRestricted):
		alert.Message = s.localizer.text(keyLocationRestricted)
		alert.Actions = []AlertAction{{Label: s.localizer.text(keyButtonOK)}}
	case errors.Is(cause, ErrServicesDisabled):
		alert.Message = s.localizer.text(keyLocationServicesOff)
	default:
		alert.Message = s.localizer.text(keyLocationDenied)
	}
	log.Info().Err(cause).Msg("Location unavailable")
	s.alert(alert)
}

func (s *Session) onLocation(loc models.Location) {
	if s.current != nil && sameLocation(*s.current, loc) {
		return
	}
	// A late delivery of a superseded fix must not move the region back.
	if latest := s.location.Current(); latest != nil && !sameLocation(*latest, loc) {
		return
	}
	s.current = &loc
	s.region = DeriveRegion(s.current, s.lastSearch)
	if s.completion.State() != CompletionStopped {
		if err := s.completion.SetRegion(s.region); err != nil {
			log.Warn().Err(err).Msg("Could not rescope completion")
		}
	}
}

func (s *Session) onPlacemark(u PlacemarkUpdate) {
	if latest := s.location.Current(); latest != nil && !sameLocation(*latest, u.Location) {
		return
	}
	// The placemark mailbox may be drained before the location one.
	s.onLocation(u.Location)
	s.placemark = u.Placemark
	s.list.SetPlacemark(u.Placemark)
	if s.text == "" && !s.editing {
		s.runDefaultQuery()
		return
	}
	s.list.Refresh()
}

func (s *Session) runDefaultQuery() {
	query := s.localizer.DefaultQuery()
	log.Debug().Str("query", query).Msg("Issuing default query")
	s.runTextSearch(query)
}

func (s *Session) runTextSearch(query string) {
	if _, err := s.search.SearchByText(query, s.region); err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			return
		}
		log.Warn().Err(err).Msg("Could not start search")
	}
}

func (s *Session) setFragment(text string) {
	if err := s.completion.SetFragment(text); err != nil {
		log.Warn().Err(err).Msg("Could not update completion fragment")
		return
	}
	if text == "" {
		s.showPlaces()
	}
}

func (s *Session) setText(text string) {
	s.text = text
	if s.events.OnText != nil {
		s.events.OnText(text)
	}
}

func (s *Session) endEditing() {
	if !s.editing && s.completion.State() == CompletionStopped {
		return
	}
	s.editing = false
	s.completion.Stop()
	if s.pending || s.mode == ModeSuggestions {
		s.showPlaces()
	}
}

func (s *Session) showPlaces() {
	s.pending = false
	if err := s.list.ApplyPlaces(s.places); err != nil {
		log.Error().Err(err).Msg("Could not apply places")
		return
	}
	if !s.searched {
		s.setMode(ModeNoQuery)
		return
	}
	s.setMode(ModeResults)
}

func (s *Session) onSuggestions(items []models.SuggestionItem) {
	if !s.editing || s.text == "" {
		return
	}
	if err := s.list.ApplySuggestions(items); err != nil {
		log.Error().Err(err).Msg("Could not apply suggestions")
		return
	}
	s.setMode(ModeSuggestions)
}

func (s *Session) onPlaces(places []models.PlaceItem, bounding models.SearchRegion) {
	s.places = places
	s.searched = true
	s.lastSearch = &bounding
	s.region = bounding
	if s.completion.State() != CompletionStopped {
		if err := s.completion.SetRegion(s.region); err != nil {
			log.Warn().Err(err).Msg("Could not rescope completion")
		}
	}

	if s.editing && s.text != "" {
		s.pending = true
		return
	}
	s.showPlaces()
}

func (s *Session) onSearchError(err *Error) {
	s.setMode(ModeError)
	s.alert(Alert{
		Kind:    KindTransient,
		Title:   s.localizer.text(keySearchErrorTitle),
		Message: err.Error(),
		Actions: []AlertAction{{Label: s.localizer.text(keyButtonOK)}},
	})
}

func (s *Session) onFeature(gen uint64, ref string, place *models.PlaceItem, err error) {
	if gen != s.featureGen {
		return
	}
	s.featureCancel = nil
	if err == nil && place == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		typed := classify("resolve feature", err)
		if typed.Kind == KindSuperseded {
			return
		}
		log.Warn().Err(typed).Str("feature", ref).Msg("Map feature lookup failed")
		s.alert(Alert{
			Kind:    KindTransient,
			Title:   s.localizer.text(keySearchErrorTitle),
			Message: typed.Error(),
			Actions: []AlertAction{{Label: s.localizer.text(keyButtonOK)}},
		})
		return
	}

	mapRegion := s.region
	if s.current != nil {
		mapRegion = models.RegionAround(s.current.Coordinate, MapFeatureDistance, MapFeatureDistance)
	}
	s.selectPlace(*place, mapRegion)
}

func (s *Session) selectPlace(place models.PlaceItem, region models.SearchRegion) {
	if s.events.OnSelection != nil {
		s.events.OnSelection(Selection{Place: place, Region: Recenter(region, place.Coordinate)})
	}
}

func sameLocation(a, b models.Location) bool {
	return a.Coordinate == b.Coordinate && a.Timestamp.Equal(b.Timestamp)
}

func (s *Session) setMode(m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	if s.events.OnMode != nil {
		s.events.OnMode(m)
	}
}

func (s *Session) emitRows() {
	if s.events.OnRows != nil {
		s.events.OnRows(s.list.Snapshot())
	}
}

func (s *Session) alert(a Alert) {
	if s.events.OnAlert != nil {
		s.events.OnAlert(a)
	}
}
