package localsearch

import (
	"context"
	"errors"
	"sync"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

// PlacemarkUpdate is published once reverse geocoding for a location finishes.
// Placemark is nil when the lookup failed.
type PlacemarkUpdate struct {
	Location  models.Location
	Placemark *models.Placemark
}

// mailbox delivers the latest value to one subscriber. Values put while the
// subscriber is busy overwrite each other; nothing is queued.
type mailbox[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
	fn      func(T)
}

func newMailbox[T any](fn func(T)) *mailbox[T] {
	m := &mailbox[T]{
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
		fn:     fn,
	}
	go m.run()
	return m
}

func (m *mailbox[T]) put(v T) {
	m.mu.Lock()
	m.value = v
	m.pending = true
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}

func (m *mailbox[T]) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.signal:
		}

		m.mu.Lock()
		if !m.pending {
			m.mu.Unlock()
			continue
		}
		v := m.value
		m.pending = false
		m.mu.Unlock()

		select {
		case <-m.done:
			return
		default:
			m.fn(v)
		}
	}
}

func (m *mailbox[T]) close() {
	m.once.Do(func() { close(m.done) })
}

// LocationState holds the latest device location and the placemark derived from it.
// One instance is created per process and passed to every consumer.
type LocationState struct {
	geocoder ReverseGeocoder

	mu         sync.Mutex
	current    *models.Location
	placemark  *models.Placemark
	resolved   bool
	seq        uint64
	cancel     context.CancelFunc
	nextID     uint64
	locations  map[uint64]*mailbox[models.Location]
	placemarks map[uint64]*mailbox[PlacemarkUpdate]
	closed     bool
	wg         sync.WaitGroup
}

func NewLocationState(geocoder ReverseGeocoder) *LocationState {
	return &LocationState{
		geocoder:   geocoder,
		locations:  make(map[uint64]*mailbox[models.Location]),
		placemarks: make(map[uint64]*mailbox[PlacemarkUpdate]),
	}
}

// SetLocation replaces the current location, notifies subscribers and starts a reverse
// geocode. A geocode still running for an older location is canceled and its result dropped.
func (s *LocationState) SetLocation(loc models.Location) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.current = &loc
	s.placemark = nil
	s.resolved = false

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	for _, m := range s.locations {
		m.put(loc)
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.resolve(ctx, seq, loc)
}

func (s *LocationState) resolve(ctx context.Context, seq uint64, loc models.Location) {
	defer s.wg.Done()

	var (
		pm  *models.Placemark
		err error
	)
	if s.geocoder != nil {
		pm, err = s.geocoder.ReverseGeocode(ctx, loc)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.seq != seq {
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Warn().Err(err).
			Float64("lat", loc.Coordinate.Latitude).
			Float64("lon", loc.Coordinate.Longitude).
			Msg("Reverse geocoding failed")
		pm = nil
	}

	s.placemark = pm
	s.resolved = true
	update := PlacemarkUpdate{Location: loc, Placemark: pm}
	for _, m := range s.placemarks {
		m.put(update)
	}
}

// Subscribe registers fn for location updates. The current location, if any, is
// delivered right away. A slow subscriber only ever sees the latest value.
func (s *LocationState) Subscribe(fn func(models.Location)) (unsubscribe func()) {
	m := newMailbox(fn)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.locations[id] = m
	if s.current != nil {
		m.put(*s.current)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.locations, id)
		s.mu.Unlock()
		m.close()
	}
}

// SubscribePlacemark registers fn for finished reverse geocodes, replaying the last one.
func (s *LocationState) SubscribePlacemark(fn func(PlacemarkUpdate)) (unsubscribe func()) {
	m := newMailbox(fn)

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.placemarks[id] = m
	if s.resolved && s.current != nil {
		m.put(PlacemarkUpdate{Location: *s.current, Placemark: s.placemark})
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.placemarks, id)
		s.mu.Unlock()
		m.close()
	}
}

// HasLocation reports whether any location has been set yet.
func (s *LocationState) HasLocation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Current returns a copy of the latest location, or nil.
func (s *LocationState) Current() *models.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	loc := *s.current
	return &loc
}

// Placemark returns a copy of the latest resolved placemark, or nil.
func (s *LocationState) Placemark() *models.Placemark {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placemark == nil {
		return nil
	}
	pm := *s.placemark
	return &pm
}

// Close cancels pending geocodes and stops all subscribers.
func (s *LocationState) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	for id, m := range s.locations {
		m.close()
		delete(s.locations, id)
	}
	for id, m := range s.placemarks {
		m.close()
		delete(s.placemarks, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
