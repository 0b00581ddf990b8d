package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/xiaot623/anketa/internal/domain"
	"github.com/xiaot623/anketa/internal/logging"
)

// MediaBackend is durable storage for media references.
type MediaBackend interface {
	LoadMedia(ctx context.Context) (map[domain.MediaKey]string, error)
	SaveMedia(ctx context.Context, key domain.MediaKey, ref string) error
}

// MediaCache serves media references from memory, seeded from defaults and
// overlaid with the backend's stored values.
type MediaCache struct {
	backend MediaBackend
	logger  *slog.Logger

	mu   sync.RWMutex
	refs map[domain.MediaKey]string
}

// NewMediaCache loads the backend over defaults. A backend read failure is
// logged and the defaults are served.
func NewMediaCache(ctx context.Context, backend MediaBackend, defaults map[string]string, logger *slog.Logger) *MediaCache {
	c := &MediaCache{
		backend: backend,
		logger:  logging.OrDiscard(logger),
		refs:    make(map[domain.MediaKey]string),
	}
	for k, v := range defaults {
		key, err := domain.ParseMediaKey(k)
		if err != nil {
			c.logger.Warn("ignoring default media", "key", k)
			continue
		}
		c.refs[key] = v
	}

	stored, err := backend.LoadMedia(ctx)
	if err != nil {
		c.logger.Error("failed to load media references, using defaults", "error", err)
		return c
	}
	for k, v := range stored {
		key, err := domain.ParseMediaKey(string(k))
		if err != nil {
			c.logger.Warn("ignoring stored media", "key", k)
			continue
		}
		c.refs[key] = v
	}
	return c
}

// Get returns the reference for key, or "" when unset.
func (c *MediaCache) Get(key domain.MediaKey) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs[key]
}

// Set replaces the reference in memory, then persists it. The in-memory
// value stays even when persisting fails.
func (c *MediaCache) Set(ctx context.Context, key domain.MediaKey, ref string) error {
	if _, err := domain.ParseMediaKey(string(key)); err != nil {
		return err
	}

	c.mu.Lock()
	next := make(map[domain.MediaKey]string, len(c.refs)+1)
	for k, v := range c.refs {
		next[k] = v
	}
	next[key] = ref
	c.refs = next
	c.mu.Unlock()

	if err := c.backend.SaveMedia(ctx, key, ref); err != nil {
		return fmt.Errorf("failed to persist media %s: %w", key, err)
	}
	return nil
}

// All returns a snapshot of every known reference.
func (c *MediaCache) All() map[domain.MediaKey]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[domain.MediaKey]string, len(c.refs))
	for k, v := range c.refs {
		out[k] = v
	}
	return out
}
