package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okieraised/points-of-interests/internal/localsearch"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ localsearch.ReverseGeocoder    = (*Client)(nil)
	_ localsearch.CompletionProvider = (*Client)(nil)
	_ localsearch.SearchProvider     = (*Client)(nil)
	_ localsearch.FeatureResolver    = (*Client)(nil)
)

var seattle = models.SearchRegion{
	Center:        models.Coordinate{Latitude: 47.6062, Longitude: -122.3321},
	LatitudeDelta: 0.18, LongitudeDelta: 0.27,
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithRateLimit(0, 0))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		expectError bool
	}{
		{name: "http", baseURL: "http://localhost:8080"},
		{name: "https with path", baseURL: "https://poi.example.com/api/"},
		{name: "missing scheme", baseURL: "localhost:8080", expectError: true},
		{name: "unparseable", baseURL: "http://[::1", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestClient_Complete(t *testing.T) {
	var query url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/complete", r.URL.Path)
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `[{"title":"Seattle Aquarium","subtitle":"Seattle","handle":"1","title_highlights":[{"start":0,"end":3}]}]`)
		w.(http.Flusher).Flush()
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, `[{"title":"Seattle Art Museum","subtitle":"Seattle","handle":"2"},{"title":"Seattle Aquarium","subtitle":"Seattle","handle":"1"}]`)
	})

	var batches [][]models.SuggestionItem
	err := c.Complete(context.Background(), models.CompletionRequest{
		Fragment:    "sea",
		Region:      seattle,
		Categories:  []models.Category{models.CategoryAquarium, models.CategoryMuseum},
		ResultTypes: []models.ResultType{models.ResultTypePointOfInterest},
		Limit:       15,
	}, func(items []models.SuggestionItem) {
		batches = append(batches, items)
	})
	require.NoError(t, err)

	require.Len(t, batches, 2)
	assert.Equal(t, []models.Range{{Start: 0, End: 3}}, batches[0][0].TitleHighlights)
	assert.Equal(t, "Seattle Art Museum", batches[1][0].Title)

	assert.Equal(t, "sea", query.Get("q"))
	assert.Equal(t, "47.6062", query.Get("lat"))
	assert.Equal(t, "-122.3321", query.Get("lon"))
	assert.Equal(t, "0.18", query.Get("lat_delta"))
	assert.Equal(t, []string{"aquarium", "museum"}, query["category"])
	assert.Equal(t, []string{"poi"}, query["result_type"])
	assert.Equal(t, "15", query.Get("limit"))
}

func TestClient_Complete_EmptyAndMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "zzz" {
			fmt.Fprintln(w, `[]`)
			return
		}
		fmt.Fprintln(w, `{"not":"a batch"}`)
	})

	var batches [][]models.SuggestionItem
	err := c.Complete(context.Background(), models.CompletionRequest{Fragment: "zzz", Region: seattle}, func(items []models.SuggestionItem) {
		batches = append(batches, items)
	})
	require.NoError(t, err)
	assert.Equal(t, [][]models.SuggestionItem{{}}, batches)

	err = c.Complete(context.Background(), models.CompletionRequest{Fragment: "sea", Region: seattle}, func([]models.SuggestionItem) {
		t.Fatal("no batch expected")
	})
	assert.ErrorContains(t, err, "malformed completion batch")
}

func TestClient_Complete_Canceled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `[{"title":"Seattle Aquarium","handle":"1"}]`)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	err := c.Complete(ctx, models.CompletionRequest{Fragment: "sea", Region: seattle}, func([]models.SuggestionItem) {
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Search(t *testing.T) {
	resp := models.SearchResponse{
		Places: []models.PlaceItem{{Handle: "1", Name: "Seattle Aquarium", Coordinate: models.Coordinate{Latitude: 47.6074, Longitude: -122.343}}},
		BoundingRegion: models.SearchRegion{
			Center:        models.Coordinate{Latitude: 47.6074, Longitude: -122.343},
			LatitudeDelta: 0.01, LongitudeDelta: 0.01,
		},
	}

	var queries []url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		queries = append(queries, r.URL.Query())
		json.NewEncoder(w).Encode(resp)
	})

	got, err := c.Search(context.Background(), models.SearchRequest{Query: "aquarium", Region: seattle})
	require.NoError(t, err)
	assert.Equal(t, &resp, got)

	_, err = c.Search(context.Background(), models.SearchRequest{Handle: "1", Region: models.SearchRegion{}})
	require.NoError(t, err)

	require.Len(t, queries, 2)
	assert.Equal(t, "aquarium", queries[0].Get("q"))
	assert.False(t, queries[0].Has("handle"))
	assert.Equal(t, "1", queries[1].Get("handle"))
	assert.False(t, queries[1].Has("q"))
	assert.False(t, queries[1].Has("lat"), "invalid regions are left to the server default")
}

func TestClient_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"missing required query parameter 'q' or 'handle'"}`)
		case "/places/9":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"not found"}`)
		default:
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, "upstream unavailable")
		}
	})

	_, err := c.Search(context.Background(), models.SearchRequest{Query: " "})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "missing required query parameter 'q' or 'handle'", apiErr.Message)

	_, err = c.Lookup(context.Background(), "9")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ResolveFeature(context.Background(), "place:1")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestClient_ReverseGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse-geocode", r.URL.Path)
		if r.URL.Query().Get("lat") == "0" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":"not found"}`)
			return
		}
		fmt.Fprint(w, `{"name":"Seattle Aquarium","locality":"Seattle","coordinate":{"latitude":47.6074,"longitude":-122.343}}`)
	})

	pm, err := c.ReverseGeocode(context.Background(), models.Location{Coordinate: models.Coordinate{Latitude: 47.6075, Longitude: -122.3432}})
	require.NoError(t, err)
	assert.Equal(t, "Seattle", pm.Locality)

	pm, err = c.ReverseGeocode(context.Background(), models.Location{})
	assert.NoError(t, err)
	assert.Nil(t, pm)
}

func TestClient_FeatureAndLookupPaths(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		fmt.Fprint(w, `{"handle":"1","name":"Seattle Aquarium"}`)
	})

	item, err := c.ResolveFeature(context.Background(), "place:1")
	require.NoError(t, err)
	assert.Equal(t, "Seattle Aquarium", item.Name)

	_, err = c.Lookup(context.Background(), "a/b")
	require.NoError(t, err)

	assert.Equal(t, []string{"/features/place:1", "/places/a%2Fb"}, paths)
}

func TestClient_RateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"handle":"1"}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithRateLimit(1, 1))
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), "1")
	require.NoError(t, err)

	// The bucket is empty; the next call must wait about a second.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Lookup(ctx, "1")

	assert.ErrorContains(t, err, "rate limit wait")
	assert.Equal(t, int32(1), calls.Load())
}
