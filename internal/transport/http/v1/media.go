package v1

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/anketa/internal/domain"
)

// MediaRequest is the body of PUT /v1/media/:key.
type MediaRequest struct {
	Value string `json:"value"`
}

// MediaEntry is one media reference.
type MediaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ListMedia lists every configured media reference.
// GET /v1/media
func (h *Handler) ListMedia(c echo.Context) error {
	refs := h.admin.MediaRefs()
	entries := make([]MediaEntry, 0, len(refs))
	for k, v := range refs {
		entries = append(entries, MediaEntry{Key: string(k), Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return c.JSON(http.StatusOK, map[string]interface{}{
		"media": entries,
	})
}

// GetMedia returns one media reference.
// GET /v1/media/:key
func (h *Handler) GetMedia(c echo.Context) error {
	key := c.Param("key")
	ref, err := h.admin.MediaRef(key)
	if errors.Is(err, domain.ErrUnknownMediaKey) {
		return c.JSON(http.StatusNotFound, errorBody("unknown media key"))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	if ref == "" {
		return c.JSON(http.StatusNotFound, errorBody("media not set"))
	}
	return c.JSON(http.StatusOK, MediaEntry{Key: key, Value: ref})
}

// PutMedia replaces a media reference.
// PUT /v1/media/:key
func (h *Handler) PutMedia(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("key")

	var req MediaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.Value == "" {
		return c.JSON(http.StatusBadRequest, errorBody("value is required"))
	}

	err := h.admin.SetMediaRef(ctx, key, req.Value)
	if errors.Is(err, domain.ErrUnknownMediaKey) {
		return c.JSON(http.StatusNotFound, errorBody("unknown media key"))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, MediaEntry{Key: key, Value: req.Value})
}
