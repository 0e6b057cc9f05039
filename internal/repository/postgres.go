package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okieraised/points-of-interests/internal/models"
)

const placeColumns = `
	id,
	kind,
	name,
	category,
	street,
	sub_locality,
	locality,
	region,
	postal_code,
	country,
	phone,
	website,
	popularity,
	ST_Y(geom::geometry) AS latitude,
	ST_X(geom::geometry) AS longitude
`

// filterClause restricts rows to the bounding box and allow-lists passed as $2..$7.
const filterClause = `
	geom::geometry && ST_MakeEnvelope($3, $2, $5, $4, 4326)
	AND (cardinality($6::text[]) = 0 OR category = ANY($6::text[]))
	AND (cardinality($7::text[]) = 0 OR kind = ANY($7::text[]))
`

// Repository implements place storage on PostgreSQL with PostGIS.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema brings the places schema up to date.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return Migrate(ctx, r.db)
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// SearchPlaces runs a full-text search over place names inside the filter box.
func (r *Repository) SearchPlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error) {
	sql := `SELECT ` + placeColumns + `
		FROM places
		WHERE name_tsvector @@ plainto_tsquery('simple', $1)
		AND ` + filterClause + `
		ORDER BY ts_rank(name_tsvector, plainto_tsquery('simple', $1)) DESC, popularity DESC, id
		LIMIT $8
	`
	return r.queryPlaces(ctx, "search", sql, filterArgs(f.Text, f)...)
}

// CompletePlaces matches every word of the fragment as a name prefix inside the filter box.
func (r *Repository) CompletePlaces(ctx context.Context, f models.PlaceFilter) ([]models.Place, error) {
	query := PrefixQuery(f.Text)
	if query == "" {
		return nil, nil
	}

	sql := `SELECT ` + placeColumns + `
		FROM places
		WHERE name_tsvector @@ to_tsquery('simple', $1)
		AND ` + filterClause + `
		ORDER BY popularity DESC, name, id
		LIMIT $8
	`
	return r.queryPlaces(ctx, "complete", sql, filterArgs(query, f)...)
}

// PlaceByID loads a single place.
func (r *Repository) PlaceByID(ctx context.Context, id int64) (*models.Place, error) {
	sql := `SELECT ` + placeColumns + ` FROM places WHERE id = $1`

	place, err := scanPlace(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repository: place %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("repository: failed to load place: %w", err)
	}
	return place, nil
}

// FindNearestPlace performs a spatial query to find the nearest record to the given coordinates
func (r *Repository) FindNearestPlace(ctx context.Context, lat, lon float64) (*models.Place, error) {
	sql := `SELECT ` + placeColumns + `
		FROM places
		WHERE ST_DWithin(geom, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, 10000) -- Within 10km
		ORDER BY geom <-> ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography
		LIMIT 1
	`

	place, err := scanPlace(r.db.QueryRow(ctx, sql, lat, lon))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("repository: no place found near coordinates: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("repository: failed to execute spatial query: %w", err)
	}
	return place, nil
}

// ListPlaces returns the most popular places, used to warm completion indexes.
func (r *Repository) ListPlaces(ctx context.Context, limit int) ([]models.Place, error) {
	sql := `SELECT ` + placeColumns + `
		FROM places
		ORDER BY popularity DESC, id
		LIMIT $1
	`
	return r.queryPlaces(ctx, "list", sql, limit)
}

// InsertPlaces bulk loads places with COPY and returns the number of rows written.
func (r *Repository) InsertPlaces(ctx context.Context, places []models.Place) (int64, error) {
	n, err := r.db.CopyFrom(
		ctx,
		pgx.Identifier{"places"},
		[]string{"kind", "name", "category", "street", "sub_locality", "locality", "region", "postal_code", "country", "phone", "website", "popularity", "geom"},
		pgx.CopyFromSlice(len(places), func(i int) ([]interface{}, error) {
			p := places[i]
			kind := p.Kind
			if kind == "" {
				kind = models.ResultTypePointOfInterest
			}
			geom := fmt.Sprintf("SRID=4326;POINT(%f %f)", p.Longitude, p.Latitude) // PostGIS format: lon lat
			return []interface{}{
				string(kind), p.Name, string(p.Category), p.Street, p.SubLocality, p.Locality,
				p.Region, p.PostalCode, p.Country, p.Phone, p.Website, p.Popularity, geom,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to copy places: %w", err)
	}
	return n, nil
}

// CountPlaces returns the number of stored places.
func (r *Repository) CountPlaces(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("repository: failed to count places: %w", err)
	}
	return count, nil
}

func (r *Repository) queryPlaces(ctx context.Context, op, sql string, args ...interface{}) ([]models.Place, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to execute %s query: %w", op, err)
	}
	defer rows.Close()

	places := []models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan place: %w", err)
		}
		places = append(places, *place)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	return places, nil
}

func scanPlace(row pgx.Row) (*models.Place, error) {
	var (
		p        models.Place
		kind     string
		category string
	)
	err := row.Scan(
		&p.ID,
		&kind,
		&p.Name,
		&category,
		&p.Street,
		&p.SubLocality,
		&p.Locality,
		&p.Region,
		&p.PostalCode,
		&p.Country,
		&p.Phone,
		&p.Website,
		&p.Popularity,
		&p.Latitude,
		&p.Longitude,
	)
	if err != nil {
		return nil, err
	}
	p.Kind = models.ResultType(kind)
	p.Category = models.Category(category)
	return &p, nil
}

func filterArgs(text string, f models.PlaceFilter) []interface{} {
	categories := make([]string, len(f.Categories))
	for i, c := range f.Categories {
		categories[i] = string(c)
	}
	kinds := make([]string, len(f.Kinds))
	for i, k := range f.Kinds {
		kinds[i] = string(k)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	return []interface{}{text, f.MinLat, f.MinLon, f.MaxLat, f.MaxLon, categories, kinds, limit}
}

// PrefixQuery turns a fragment into a tsquery matching every word as a prefix.
// Characters that carry meaning in tsquery syntax are dropped.
func PrefixQuery(fragment string) string {
	words := Tokenize(fragment)
	for i, w := range words {
		words[i] = w + ":*"
	}
	return strings.Join(words, " & ")
}

// Tokenize lowercases s and splits it into runs of letters and digits.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
