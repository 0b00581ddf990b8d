package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/anketa/internal/domain"
)

// ReviewerRequest is the body of POST /v1/reviewers.
type ReviewerRequest struct {
	UserID int64 `json:"user_id"`
}

// ListReviewers lists reviewers, primary first.
// GET /v1/reviewers
func (h *Handler) ListReviewers(c echo.Context) error {
	ids, err := h.admin.ListReviewers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}

	reviewers := make([]int64, len(ids))
	for i, id := range ids {
		reviewers[i] = int64(id)
	}
	var primary interface{}
	if len(reviewers) > 0 {
		primary = reviewers[0]
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"reviewers": reviewers,
		"primary":   primary,
	})
}

// AddReviewer registers a reviewer.
// POST /v1/reviewers
func (h *Handler) AddReviewer(c echo.Context) error {
	var req ReviewerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, errorBody("user_id is required"))
	}

	err := h.admin.AddReviewer(c.Request().Context(), domain.UserID(req.UserID))
	if errors.Is(err, domain.ErrReviewerExists) {
		return c.JSON(http.StatusConflict, errorBody("reviewer already exists"))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"ok":      true,
		"user_id": req.UserID,
	})
}

// RemoveReviewer removes a reviewer. The primary reviewer is refused.
// DELETE /v1/reviewers/:user_id
func (h *Handler) RemoveReviewer(c echo.Context) error {
	id, err := domain.ParseUserID(c.Param("user_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid user_id"))
	}

	err = h.admin.RemoveReviewer(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrPrimaryReviewer):
		return c.JSON(http.StatusConflict, errorBody("primary reviewer cannot be removed"))
	case errors.Is(err, domain.ErrReviewerNotFound):
		return c.JSON(http.StatusNotFound, errorBody("reviewer not found"))
	case err != nil:
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}
