package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/anketa/internal/domain"
)

// TokenRequest is the body of POST /v1/tokens.
type TokenRequest struct {
	UserID int64 `json:"user_id"`
}

// IssueToken returns the hello token for a user.
// POST /v1/tokens
func (h *Handler) IssueToken(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, errorBody("user_id is required"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": req.UserID,
		"token":   h.tokens.Token(domain.UserID(req.UserID)),
	})
}
