// Package v1 provides the admin HTTP API.
package v1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/anketa/internal/domain"
)

// Admin is the service surface the API exposes.
type Admin interface {
	MediaRefs() map[domain.MediaKey]string
	MediaRef(key string) (string, error)
	SetMediaRef(ctx context.Context, key, ref string) error
	ListReviewers(ctx context.Context) ([]domain.UserID, error)
	AddReviewer(ctx context.Context, id domain.UserID) error
	RemoveReviewer(ctx context.Context, id domain.UserID) error
}

// TokenIssuer derives the token a chat client presents in hello.
type TokenIssuer interface {
	Token(id domain.UserID) string
}

// Handler handles HTTP requests.
type Handler struct {
	admin  Admin
	tokens TokenIssuer
}

// NewHandler creates a new handler. A nil tokens leaves /tokens unregistered.
func NewHandler(admin Admin, tokens TokenIssuer) *Handler {
	return &Handler{admin: admin, tokens: tokens}
}

// RegisterRoutes registers the v1 routes.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	// Media references
	g.GET("/media", h.ListMedia)
	g.GET("/media/:key", h.GetMedia)
	g.PUT("/media/:key", h.PutMedia)

	// Reviewers
	g.GET("/reviewers", h.ListReviewers)
	g.POST("/reviewers", h.AddReviewer)
	g.DELETE("/reviewers/:user_id", h.RemoveReviewer)

	// User tokens
	if h.tokens != nil {
		g.POST("/tokens", h.IssueToken)
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
