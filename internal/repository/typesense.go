package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

// TypesenseIndex is a completion backend on a Typesense collection.
type TypesenseIndex struct {
	client     *typesense.Client
	collection string
}

// NewTypesenseIndex creates a client for the collection at serverURL.
func NewTypesenseIndex(serverURL, apiKey, collection string) *TypesenseIndex {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)
	return &TypesenseIndex{client: client, collection: collection}
}

// EnsureCollection creates the collection if it does not exist yet.
func (t *TypesenseIndex) EnsureCollection(ctx context.Context) error {
	if _, err := t.client.Collection(t.collection).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: t.collection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "kind", Type: "string", Facet: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "street", Type: "string", Optional: pointer.True()},
			{Name: "sub_locality", Type: "string", Optional: pointer.True()},
			{Name: "locality", Type: "string", Optional: pointer.True()},
			{Name: "region", Type: "string", Optional: pointer.True()},
			{Name: "postal_code", Type: "string", Optional: pointer.True()},
			{Name: "country", Type: "string", Optional: pointer.True()},
			{Name: "phone", Type: "string", Optional: pointer.True()},
			{Name: "website", Type: "string", Optional: pointer.True()},
			{Name: "location", Type: "geopoint"},
			{Name: "popularity", Type: "int32"},
		},
		DefaultSortingField: pointer.String("popularity"),
	}

	if _, err := t.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("repository: failed to create typesense collection: %w", err)
	}
	return nil
}

// Index upserts places into the collection.
func (t *TypesenseIndex) Index(ctx context.Context, places []models.Place) error {
	for _, p := range places {
		if _, err := t.client.Collection(t.collection).Documents().Upsert(ctx, placeDocument(p)); err != nil {
			return fmt.Errorf("repository: failed to index place %d: %w", p.ID, err)
		}
	}
	return nil
}

// CompletePlaces runs a prefix search on names inside the filter box.
func (t *TypesenseIndex) CompletePlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error) {
	if strings.TrimSpace(f.Text) == "" {
		return nil, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}

	params := &api.SearchCollectionParams{
		Q:        pointer.String(f.Text),
		QueryBy:  pointer.String("name"),
		FilterBy: pointer.String(typesenseFilter(f)),
		SortBy:   pointer.String("_text_match:desc,popularity:desc"),
		PerPage:  pointer.Int(limit),
	}

	result, err := t.client.Collection(t.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search typesense: %w", err)
	}

	places := []models.Place{}
	if result.Hits == nil {
		return places, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		place, err := documentPlace(*hit.Document)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, nil
}

func typesenseFilter(f models.PlaceFilter) string {
	clauses := []string{fmt.Sprintf(
		"location:(%f, %f, %f, %f, %f, %f, %f, %f)",
		f.MaxLat, f.MinLon,
		f.MaxLat, f.MaxLon,
		f.MinLat, f.MaxLon,
		f.MinLat, f.MinLon,
	)}
	if len(f.Categories) > 0 {
		values := make([]string, len(f.Categories))
		for i, c := range f.Categories {
			values[i] = string(c)
		}
		clauses = append(clauses, "category:=["+strings.Join(values, ",")+"]")
	}
	if len(f.Kinds) > 0 {
		values := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			values[i] = string(k)
		}
		clauses = append(clauses, "kind:=["+strings.Join(values, ",")+"]")
	}
	return strings.Join(clauses, " && ")
}

func placeDocument(p models.Place) map[string]interface{} {
	kind := p.Kind
	if kind == "" {
		kind = models.ResultTypePointOfInterest
	}
	return map[string]interface{}{
		"id":           strconv.FormatInt(p.ID, 10),
		"name":         p.Name,
		"kind":         string(kind),
		"category":     string(p.Category),
		"street":       p.Street,
		"sub_locality": p.SubLocality,
		"locality":     p.Locality,
		"region":       p.Region,
		"postal_code":  p.PostalCode,
		"country":      p.Country,
		"phone":        p.Phone,
		"website":      p.Website,
		"location":     []float64{p.Latitude, p.Longitude},
		"popularity":   p.Popularity,
	}
}

func documentPlace(doc map[string]interface{}) (models.Place, error) {
	idText, _ := doc["id"].(string)
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return models.Place{}, fmt.Errorf("repository: invalid typesense document id %q: %w", idText, err)
	}

	str := func(key string) string {
		s, _ := doc[key].(string)
		return s
	}

	p := models.Place{
		ID:          id,
		Kind:        models.ResultType(str("kind")),
		Name:        str("name"),
		Category:    models.Category(str("category")),
		Street:      str("street"),
		SubLocality: str("sub_locality"),
		Locality:    str("locality"),
		Region:      str("region"),
		PostalCode:  str("postal_code"),
		Country:     str("country"),
		Phone:       str("phone"),
		Website:     str("website"),
	}
	if v, ok := doc["popularity"].(float64); ok {
		p.Popularity = int(v)
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		p.Latitude, _ = loc[0].(float64)
		p.Longitude, _ = loc[1].(float64)
	}
	return p, nil
}
