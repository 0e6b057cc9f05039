package repository

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/tchap/go-patricia/v2/patricia"
)

// TrieIndex is an in-memory completion index keyed by every word of a place name.
// It answers prefix queries without a database round trip.
type TrieIndex struct {
	mu     sync.RWMutex
	trie   *patricia.Trie
	places map[int64]models.Place
}

func NewTrieIndex() *TrieIndex {
	return &TrieIndex{
		trie:   patricia.NewTrie(),
		places: make(map[int64]models.Place),
	}
}

// Load replaces the index contents with places.
func (t *TrieIndex) Load(places []models.Place) {
	trie := patricia.NewTrie()
	byID := make(map[int64]models.Place, len(places))
	for _, p := range places {
		byID[p.ID] = p
		for _, word := range Tokenize(p.Name) {
			key := patricia.Prefix(word)
			if item := trie.Get(key); item != nil {
				ids := item.([]int64)
				if ids[len(ids)-1] != p.ID {
					trie.Set(key, append(ids, p.ID))
				}
				continue
			}
			trie.Insert(key, []int64{p.ID})
		}
	}

	t.mu.Lock()
	t.trie = trie
	t.places = byID
	t.mu.Unlock()
}

// Len returns the number of indexed places.
func (t *TrieIndex) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.places)
}

// CompletePlaces returns places where every fragment word prefixes some word of the name.
func (t *TrieIndex) CompletePlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error) {
	tokens := Tokenize(f.Text)
	if len(tokens) == 0 {
		return nil, nil
	}
	// The longest token narrows the subtree the most.
	seed := tokens[0]
	for _, tok := range tokens[1:] {
		if len(tok) > len(seed) {
			seed = tok
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[int64]struct{})
	var matches []models.Place
	err := t.trie.VisitSubtree(patricia.Prefix(seed), func(p patricia.Prefix, item patricia.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, id := range item.([]int64) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			place := t.places[id]
			if matchesFilter(place, f) && matchesAllTokens(place.Name, tokens) {
				matches = append(matches, place)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Popularity != matches[j].Popularity {
			return matches[i].Popularity > matches[j].Popularity
		}
		if matches[i].Name != matches[j].Name {
			return matches[i].Name < matches[j].Name
		}
		return matches[i].ID < matches[j].ID
	})

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchesAllTokens(name string, tokens []string) bool {
	words := Tokenize(name)
	for _, tok := range tokens {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesFilter(p models.Place, f models.PlaceFilter) bool {
	if p.Latitude < f.MinLat || p.Latitude > f.MaxLat || p.Longitude < f.MinLon || p.Longitude > f.MaxLon {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, p.Kind) {
		return false
	}
	return true
}
