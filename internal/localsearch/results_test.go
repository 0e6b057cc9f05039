package localsearch

import (
	"testing"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResultList_ApplyPrependsHeader(t *testing.T) {
	tests := []struct {
		name      string
		placemark *models.Placemark
		payload   []Row
		header    string
	}{
		{
			name:   "empty payload without placemark",
			header: "Search Results",
		},
		{
			name:      "suggestions near locality",
			placemark: &models.Placemark{Locality: "Seattle"},
			payload:   []Row{SuggestionRow(suggestion("Seattle Aquarium")), SuggestionRow(suggestion("Seattle Art Museum"))},
			header:    "Search Results near Seattle",
		},
		{
			name:      "places with placemark lacking locality",
			placemark: &models.Placemark{Country: "USA"},
			payload:   []Row{PlaceRow(models.PlaceItem{Handle: "7", Name: "Pike Place Market"})},
			header:    "Search Results",
		},
		{
			name:      "duplicates preserved",
			placemark: &models.Placemark{Locality: "Portland"},
			payload:   []Row{PlaceRow(models.PlaceItem{Handle: "1"}), PlaceRow(models.PlaceItem{Handle: "1"})},
			header:    "Search Results near Portland",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewResultList(NewLocalizer(language.English))
			list.SetPlacemark(tt.placemark)

			require.NoError(t, list.Apply(tt.payload))
			snap := list.Snapshot()

			require.NotEmpty(t, snap.Rows)
			assert.Equal(t, RowHeader, snap.Rows[0].Kind)
			assert.Equal(t, tt.header, snap.Rows[0].Header)
			if len(tt.payload) == 0 {
				assert.Len(t, snap.Rows, 1)
			} else {
				assert.Equal(t, tt.payload, snap.Rows[1:])
			}
			assert.Equal(t, uint64(1), snap.Version)
		})
	}
}

func TestResultList_RejectsInvalidPayload(t *testing.T) {
	list := NewResultList(NewLocalizer(language.English))

	err := list.Apply([]Row{SuggestionRow(suggestion("a")), PlaceRow(models.PlaceItem{Name: "b"})})
	assert.ErrorIs(t, err, ErrMixedRows)

	err = list.Apply([]Row{HeaderRow("sneaky")})
	assert.ErrorIs(t, err, ErrHeaderInRow)

	err = list.Apply([]Row{{Kind: RowPlace}})
	assert.ErrorIs(t, err, ErrInvalidRow)

	snap := list.Snapshot()
	assert.Len(t, snap.Rows, 1)
	assert.Equal(t, uint64(0), snap.Version)
}

func TestResultList_SubscribeAndRefresh(t *testing.T) {
	list := NewResultList(NewLocalizer(language.German))

	var got []Snapshot
	unsubscribe := list.Subscribe(func(s Snapshot) { got = append(got, s) })

	require.NoError(t, list.ApplyPlaces([]models.PlaceItem{{Handle: "3", Name: "Kunsthalle"}}))
	list.SetPlacemark(&models.Placemark{Locality: "Hamburg"})
	list.Refresh()
	unsubscribe()
	require.NoError(t, list.ApplySuggestions(nil))

	require.Len(t, got, 2)
	assert.Equal(t, "Suchergebnisse", got[0].Rows[0].Header)
	assert.Equal(t, "Suchergebnisse in der Nähe von Hamburg", got[1].Rows[0].Header)
	assert.Equal(t, RowPlace, got[1].PayloadKind())
	assert.Equal(t, RowHeader, list.Snapshot().PayloadKind())
}

func TestRowKey_StableIdentity(t *testing.T) {
	a := models.SuggestionItem{Title: "Zoo", Subtitle: "Woodland Park", Handle: "9", TitleHighlights: []models.Range{{Start: 0, End: 3}}}
	b := a
	c := a
	c.TitleHighlights = []models.Range{{Start: 0, End: 2}}

	assert.Equal(t, SuggestionRow(a).Key(), SuggestionRow(b).Key())
	assert.NotEqual(t, SuggestionRow(a).Key(), SuggestionRow(c).Key())
	assert.NotEqual(t, HeaderRow("Zoo").Key(), SuggestionRow(a).Key())

	p := models.PlaceItem{Handle: "9", Name: "Zoo"}
	q := p
	q.Phone = "+1 206-548-2500"
	assert.NotEqual(t, PlaceRow(p).Key(), PlaceRow(q).Key())
	// Quoting keeps separators inside fields from colliding.
	assert.NotEqual(t,
		SuggestionRow(models.SuggestionItem{Title: "a|b", Subtitle: "c"}).Key(),
		SuggestionRow(models.SuggestionItem{Title: "a", Subtitle: "b|c"}).Key())
}

func TestDiff(t *testing.T) {
	prev := []Row{HeaderRow("Search Results"), SuggestionRow(suggestion("A")), SuggestionRow(suggestion("B"))}
	next := []Row{HeaderRow("Search Results"), SuggestionRow(suggestion("B")), SuggestionRow(suggestion("C")), SuggestionRow(suggestion("C"))}

	inserted, removed := Diff(prev, next)

	c := SuggestionRow(suggestion("C")).Key()
	assert.Equal(t, []string{c, c}, inserted)
	assert.Equal(t, []string{SuggestionRow(suggestion("A")).Key()}, removed)

	inserted, removed = Diff(next, next)
	assert.Empty(t, inserted)
	assert.Empty(t, removed)
}
