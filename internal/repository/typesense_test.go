package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesenseIndex_CompletePlaces(t *testing.T) {
	var query map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/places/documents/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-TYPESENSE-API-KEY"))
		query = map[string]string{
			"q":         r.URL.Query().Get("q"),
			"query_by":  r.URL.Query().Get("query_by"),
			"filter_by": r.URL.Query().Get("filter_by"),
			"per_page":  r.URL.Query().Get("per_page"),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"found":          1,
			"out_of":         10,
			"page":           1,
			"search_time_ms": 1,
			"hits": []map[string]interface{}{
				{
					"document": map[string]interface{}{
						"id":         "17",
						"name":       "Pike Place Market",
						"kind":       "poi",
						"category":   "restaurant",
						"locality":   "Seattle",
						"region":     "WA",
						"country":    "USA",
						"location":   []float64{47.6097, -122.3422},
						"popularity": 97,
					},
				},
			},
		})
	}))
	defer server.Close()

	idx := NewTypesenseIndex(server.URL, "secret", "places")
	region := models.SearchRegion{Center: models.Coordinate{Latitude: 47.6, Longitude: -122.3}, LatitudeDelta: 0.2, LongitudeDelta: 0.4}
	filter := models.FilterFor("pike pl", region, []models.Category{models.CategoryRestaurant, models.CategoryCafe}, []models.ResultType{models.ResultTypePointOfInterest}, 5)

	places, err := idx.CompletePlaces(context.Background(), filter)
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, int64(17), places[0].ID)
	assert.Equal(t, "Pike Place Market", places[0].Name)
	assert.Equal(t, models.CategoryRestaurant, places[0].Category)
	assert.Equal(t, 97, places[0].Popularity)
	assert.Equal(t, 47.6097, places[0].Latitude)
	assert.Equal(t, -122.3422, places[0].Longitude)

	assert.Equal(t, "pike pl", query["q"])
	assert.Equal(t, "name", query["query_by"])
	assert.Equal(t, "5", query["per_page"])
	assert.True(t, strings.HasPrefix(query["filter_by"], "location:(47.700000, -122.500000, 47.700000, -122.100000, 47.500000, -122.100000, 47.500000, -122.500000)"))
	assert.Contains(t, query["filter_by"], "category:=[restaurant,cafe]")
	assert.Contains(t, query["filter_by"], "kind:=[poi]")
}

func TestTypesenseIndex_EmptyFragment(t *testing.T) {
	idx := NewTypesenseIndex("http://127.0.0.1:1", "secret", "places")

	places, err := idx.CompletePlaces(context.Background(), models.FilterFor(" ", models.WorldRegion(), nil, nil, 5))
	require.NoError(t, err)
	assert.Nil(t, places)
}

func TestTypesenseIndex_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"Not Ready or Lagging"}`))
	}))
	defer server.Close()

	idx := NewTypesenseIndex(server.URL, "secret", "places")
	_, err := idx.CompletePlaces(context.Background(), models.FilterFor("zoo", models.WorldRegion(), nil, nil, 5))
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	place := models.Place{
		ID: 3, Kind: models.ResultTypePointOfInterest, Name: "Woodland Park Zoo", Category: models.CategoryZoo,
		Street: "5500 Phinney Ave N", Locality: "Seattle", Region: "WA", PostalCode: "98103", Country: "USA",
		Phone: "+1 206-548-2500", Website: "https://www.zoo.org", Popularity: 75, Latitude: 47.6685, Longitude: -122.3505,
	}

	// Documents come back from Typesense as decoded JSON.
	raw, err := json.Marshal(placeDocument(place))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))

	got, err := documentPlace(doc)
	require.NoError(t, err)
	assert.Equal(t, place, got)

	_, err = documentPlace(map[string]interface{}{"id": "abc"})
	assert.Error(t, err)
}
