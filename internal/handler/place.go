package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okieraised/points-of-interests/internal/models"
	"github.com/rs/zerolog/log"
)

// PlaceHandler handles completion, search and place lookup requests
type PlaceHandler struct {
	service PlaceService
}

// PlaceService interface for dependency injection
type PlaceService interface {
	Complete(ctx context.Context, req models.CompletionRequest, emit func([]models.SuggestionItem)) error
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error)
	Lookup(ctx context.Context, handle string) (*models.PlaceItem, error)
	ResolveFeature(ctx context.Context, ref string) (*models.PlaceItem, error)
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(svc PlaceService) *PlaceHandler {
	return &PlaceHandler{service: svc}
}

// Complete handles GET /complete requests. The response is NDJSON, one suggestion batch
// per line, flushed as each batch becomes available.
//
//	@Summary	Stream suggestion batches for a partial query
//	@Produce	application/x-ndjson
//	@Param		q			query	string	true	"fragment"
//	@Param		lat			query	number	false	"region center latitude"
//	@Param		lon			query	number	false	"region center longitude"
//	@Param		lat_delta	query	number	false	"region latitude span"
//	@Param		lon_delta	query	number	false	"region longitude span"
//	@Router		/complete [get]
func (h *PlaceHandler) Complete(c *gin.Context) {
	fragment := strings.TrimSpace(c.Query("q"))
	if fragment == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q'"})
		return
	}

	req, ok := h.completionRequest(c, fragment)
	if !ok {
		return
	}

	started := false
	enc := json.NewEncoder(c.Writer)
	err := h.service.Complete(c.Request.Context(), req, func(items []models.SuggestionItem) {
		if !started {
			c.Header("Content-Type", "application/x-ndjson")
			c.Status(http.StatusOK)
			started = true
		}
		if err := enc.Encode(items); err != nil {
			log.Debug().Err(err).Msg("Completion stream write failed")
			return
		}
		c.Writer.Flush()
	})
	if err != nil && !started {
		writeError(c, err)
		return
	}
	if err != nil {
		// The status line is already sent; the client sees a truncated stream.
		log.Warn().Err(err).Str("fragment", fragment).Msg("Completion stream ended early")
	}
}

// Search handles GET /search requests
//
//	@Summary	Search places by text or suggestion handle
//	@Produce	json
//	@Param		q		query		string	false	"free text query"
//	@Param		handle	query		string	false	"suggestion handle"
//	@Success	200		{object}	models.SearchResponse
//	@Router		/search [get]
func (h *PlaceHandler) Search(c *gin.Context) {
	query, handle := c.Query("q"), c.Query("handle")
	if strings.TrimSpace(query) == "" && handle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'q' or 'handle'"})
		return
	}

	region, err := parseRegion(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kinds, err := parseResultTypes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, err := parseLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Search(c.Request.Context(), models.SearchRequest{
		Query:       query,
		Handle:      handle,
		Region:      region,
		Categories:  parseCategories(c),
		ResultTypes: kinds,
		Limit:       limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Place handles GET /places/:handle requests
//
//	@Summary	Look up a place by handle
//	@Produce	json
//	@Param		handle	path		string	true	"place handle"
//	@Success	200		{object}	models.PlaceItem
//	@Router		/places/{handle} [get]
func (h *PlaceHandler) Place(c *gin.Context) {
	item, err := h.service.Lookup(c.Request.Context(), c.Param("handle"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Feature handles GET /features/:id requests
//
//	@Summary	Resolve a tapped map feature
//	@Produce	json
//	@Param		id	path		string	true	"feature reference"
//	@Success	200	{object}	models.PlaceItem
//	@Router		/features/{id} [get]
func (h *PlaceHandler) Feature(c *gin.Context) {
	item, err := h.service.ResolveFeature(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PlaceHandler) completionRequest(c *gin.Context, fragment string) (models.CompletionRequest, bool) {
	region, err := parseRegion(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.CompletionRequest{}, false
	}
	kinds, err := parseResultTypes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.CompletionRequest{}, false
	}
	limit, err := parseLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.CompletionRequest{}, false
	}

	return models.CompletionRequest{
		Fragment:    fragment,
		Region:      region,
		Categories:  parseCategories(c),
		ResultTypes: kinds,
		Limit:       limit,
	}, true
}
