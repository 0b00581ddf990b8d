// Package http provides the HTTP server: health, metrics, the admin API
// and the WebSocket upgrade.
package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/xiaot623/anketa/internal/transport/http/v1"
)

// Service is what the server needs from the application.
type Service interface {
	v1.Admin
	ActiveSessions() int
}

// Connections reports live channel connections.
type Connections interface {
	ConnectionCount() int
	UserCount() int
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	// APIKey protects the admin API. An empty key refuses every /v1 request.
	APIKey string
	// Tokens issues user tokens for POST /v1/tokens.
	Tokens   v1.TokenIssuer
	Store    Pinger
	Gatherer prometheus.Gatherer
	// WebSocket handles GET /ws. Nil leaves the route unregistered.
	WebSocket echo.HandlerFunc
}

// Server is the HTTP server.
type Server struct {
	echo  *echo.Echo
	svc   Service
	conns Connections
	store Pinger
}

// NewServer creates a new HTTP server.
func NewServer(svc Service, conns Connections, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		echo:  e,
		svc:   svc,
		conns: conns,
		store: opts.Store,
	}

	e.GET("/health", s.handleHealth)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.WebSocket != nil {
		e.GET("/ws", opts.WebSocket)
	}

	g := e.Group("/v1")
	g.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:X-API-Key",
		Validator: func(key string, c echo.Context) (bool, error) {
			if opts.APIKey == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(opts.APIKey)) == 1, nil
		},
	}))
	v1.NewHandler(svc, opts.Tokens).RegisterRoutes(g)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":   "healthy",
		"sessions": s.svc.ActiveSessions(),
	}
	if s.conns != nil {
		body["connections"] = s.conns.ConnectionCount()
		body["users"] = s.conns.UserCount()
	}
	if s.store != nil {
		if err := s.store.Ping(c.Request().Context()); err != nil {
			body["status"] = "unhealthy"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
	}
	return c.JSON(http.StatusOK, body)
}
