// Package client implements the local search providers against the provider HTTP API.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the server has no record for the request.
var ErrNotFound = errors.New("client: not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: server returned %d: %s", e.Status, e.Message)
}

// Client talks to the provider API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outbound requests per second. A non-positive rate disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(10, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ReverseGeocode returns the placemark nearest to loc, or nil when there is none.
func (c *Client) ReverseGeocode(ctx context.Context, loc models.Location) (*models.Placemark, error) {
	q := url.Values{}
	q.Set("lat", formatFloat(loc.Coordinate.Latitude))
	q.Set("lon", formatFloat(loc.Coordinate.Longitude))

	var pm models.Placemark
	err := c.getJSON(ctx, "/reverse-geocode", q, &pm)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pm, nil
}

// Complete streams suggestion batches from /complete. It returns once the server closes
// the stream or ctx is canceled.
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest, emit func([]models.SuggestionItem)) error {
	q := regionValues(req.Region)
	q.Set("q", req.Fragment)
	addFilters(q, req.Categories, req.ResultTypes, req.Limit)

	resp, err := c.do(ctx, "/complete", q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	batches := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var items []models.SuggestionItem
		if err := json.Unmarshal(line, &items); err != nil {
			return fmt.Errorf("client: malformed completion batch: %w", err)
		}
		if items == nil {
			items = []models.SuggestionItem{}
		}
		batches++
		emit(items)
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("client: completion stream: %w", err)
	}

	log.Debug().Str("fragment", req.Fragment).Int("batches", batches).Msg("Completion stream closed")
	return nil
}

// Search runs /search for a text query or a suggestion handle.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	q := regionValues(req.Region)
	if req.Handle != "" {
		q.Set("handle", req.Handle)
	} else {
		q.Set("q", req.Query)
	}
	addFilters(q, req.Categories, req.ResultTypes, req.Limit)

	var out models.SearchResponse
	if err := c.getJSON(ctx, "/search", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lookup fetches a single place by handle.
func (c *Client) Lookup(ctx context.Context, handle string) (*models.PlaceItem, error) {
	var item models.PlaceItem
	if err := c.getJSON(ctx, "/places/"+url.PathEscape(handle), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ResolveFeature resolves a tapped map feature through /features/:id.
func (c *Client) ResolveFeature(ctx context.Context, ref string) (*models.PlaceItem, error) {
	var item models.PlaceItem
	if err := c.getJSON(ctx, "/features/"+url.PathEscape(ref), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := c.do(ctx, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: failed to decode %s response: %w", path, err)
	}
	return nil
}

// do waits for the limiter, sends the request and turns non-2xx answers into errors.
func (c *Client) do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("client: rate limit wait: %w", err)
	}

	u := c.baseURL.JoinPath(path)
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/x-ndjson")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("client: request %s failed: %w", path, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return nil, &APIError{Status: resp.StatusCode, Message: body.Error}
}

func regionValues(r models.SearchRegion) url.Values {
	q := url.Values{}
	if r.Validate() != nil {
		return q
	}
	q.Set("lat", formatFloat(r.Center.Latitude))
	q.Set("lon", formatFloat(r.Center.Longitude))
	q.Set("lat_delta", formatFloat(r.LatitudeDelta))
	q.Set("lon_delta", formatFloat(r.LongitudeDelta))
	return q
}

func addFilters(q url.Values, categories []models.Category, kinds []models.ResultType, limit int) {
	for _, c := range categories {
		q.Add("category", string(c))
	}
	for _, k := range kinds {
		q.Add("result_type", string(k))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
