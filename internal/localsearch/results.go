package localsearch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/okieraised/points-of-interests/internal/models"
)

// RowKind discriminates the payload of a Row.
type RowKind int

const (
	RowHeader RowKind = iota
	RowSuggestion
	RowPlace
)

// Row is one entry of the result list. Exactly one payload matches Kind.
type Row struct {
	Kind       RowKind
	Header     string
	Suggestion *models.SuggestionItem
	Place      *models.PlaceItem
}

func HeaderRow(text string) Row {
	return Row{Kind: RowHeader, Header: text}
}

func SuggestionRow(item models.SuggestionItem) Row {
	return Row{Kind: RowSuggestion, Suggestion: &item}
}

func PlaceRow(item models.PlaceItem) Row {
	return Row{Kind: RowPlace, Place: &item}
}

// Key identifies the row for diffing. Two rows share a key only when all their fields match.
func (r Row) Key() string {
	var b strings.Builder
	switch r.Kind {
	case RowHeader:
		b.WriteString("h")
		writeField(&b, r.Header)
	case RowSuggestion:
		s := r.Suggestion
		b.WriteString("s")
		writeField(&b, s.Title)
		writeField(&b, s.Subtitle)
		writeField(&b, s.Handle)
		writeRanges(&b, s.TitleHighlights)
		writeRanges(&b, s.SubtitleHighlights)
	case RowPlace:
		p := r.Place
		b.WriteString("p")
		writeField(&b, p.Handle)
		writeField(&b, p.Name)
		writeField(&b, p.FormattedAddress)
		writeField(&b, p.Phone)
		writeField(&b, p.URL)
		writeField(&b, string(p.Category))
		writeField(&b, strconv.FormatFloat(p.Coordinate.Latitude, 'f', -1, 64))
		writeField(&b, strconv.FormatFloat(p.Coordinate.Longitude, 'f', -1, 64))
	}
	return b.String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteByte('|')
	b.WriteString(strconv.Quote(s))
}

func writeRanges(b *strings.Builder, ranges []models.Range) {
	b.WriteByte('|')
	for _, r := range ranges {
		fmt.Fprintf(b, "[%d,%d)", r.Start, r.End)
	}
}

func (r Row) valid() bool {
	switch r.Kind {
	case RowSuggestion:
		return r.Suggestion != nil && r.Place == nil
	case RowPlace:
		return r.Place != nil && r.Suggestion == nil
	default:
		return false
	}
}

var (
	ErrMixedRows   = errors.New("result rows mix suggestions and places")
	ErrInvalidRow  = errors.New("result row payload does not match its kind")
	ErrHeaderInRow = errors.New("header rows are added by the list")
)

// Snapshot is an immutable copy of the row list.
type Snapshot struct {
	Rows    []Row
	Version uint64
}

// PayloadKind returns the kind of the non-header rows, or RowHeader for an empty list.
func (s Snapshot) PayloadKind() RowKind {
	if len(s.Rows) < 2 {
		return RowHeader
	}
	return s.Rows[1].Kind
}

// Keys returns the identity key of every row in order.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		keys[i] = r.Key()
	}
	return keys
}

// ResultList holds the authoritative list: one header followed by either suggestions or places.
type ResultList struct {
	localizer *Localizer

	mu        sync.Mutex
	placemark *models.Placemark
	payload   []Row
	rows      []Row
	version   uint64
	nextID    int
	subs      map[int]func(Snapshot)
}

func NewResultList(localizer *Localizer) *ResultList {
	l := &ResultList{
		localizer: localizer,
		subs:      make(map[int]func(Snapshot)),
	}
	l.rows = []Row{HeaderRow(localizer.Header(""))}
	return l
}

// Apply replaces the list with payload behind a freshly computed header and notifies subscribers.
func (l *ResultList) Apply(payload []Row) error {
	if len(payload) > 0 {
		kind := payload[0].Kind
		for _, r := range payload {
			if r.Kind == RowHeader {
				return ErrHeaderInRow
			}
			if !r.valid() {
				return ErrInvalidRow
			}
			if r.Kind != kind {
				return ErrMixedRows
			}
		}
	}

	l.mu.Lock()
	l.payload = append([]Row(nil), payload...)
	rows := make([]Row, 0, len(payload)+1)
	rows = append(rows, HeaderRow(l.headerLocked()))
	rows = append(rows, payload...)
	l.rows = rows
	l.version++
	snap := l.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func (l *ResultList) ApplySuggestions(items []models.SuggestionItem) error {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = SuggestionRow(item)
	}
	return l.Apply(rows)
}

func (l *ResultList) ApplyPlaces(items []models.PlaceItem) error {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = PlaceRow(item)
	}
	return l.Apply(rows)
}

// SetPlacemark changes the locality used by the next header.
func (l *ResultList) SetPlacemark(pm *models.Placemark) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.placemark = pm
}

// Refresh re-applies the current payload, recomputing the header.
func (l *ResultList) Refresh() {
	l.mu.Lock()
	payload := l.payload
	l.mu.Unlock()
	// The stored payload already passed validation.
	_ = l.Apply(payload)
}

func (l *ResultList) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Subscribe registers fn for every applied list and returns a function that removes it.
func (l *ResultList) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.subs[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

func (l *ResultList) headerLocked() string {
	if l.placemark == nil {
		return l.localizer.Header("")
	}
	return l.localizer.Header(l.placemark.Locality)
}

func (l *ResultList) snapshotLocked() Snapshot {
	return Snapshot{Rows: append([]Row(nil), l.rows...), Version: l.version}
}

// Diff returns the keys present only in next and only in prev. Duplicate keys are
// counted, so a row repeated in next is inserted once per extra occurrence.
func Diff(prev, next []Row) (inserted, removed []string) {
	counts := make(map[string]int, len(prev))
	for _, r := range prev {
		counts[r.Key()]++
	}
	for _, r := range next {
		k := r.Key()
		if counts[k] > 0 {
			counts[k]--
			continue
		}
		inserted = append(inserted, k)
	}
	for _, r := range prev {
		k := r.Key()
		if counts[k] > 0 {
			counts[k]--
			removed = append(removed, k)
		}
	}
	return inserted, removed
}
