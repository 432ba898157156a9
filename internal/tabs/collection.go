package tabs

import (
	"context"
	"sync"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
)

// Collection caches the full tab list fetched from the store.
//
// Only Refresh and Clear write; writes are whole-snapshot replacements, so
// readers may take a snapshot at any time without seeing partial updates.
// A failed refresh leaves the previous snapshot untouched and records the
// error as a distinct load-failure state.
type Collection struct {
	store services.TabStore

	mu      sync.RWMutex
	tabs    []models.Tab
	loaded  bool
	loadErr error
}

// NewCollection creates an empty collection backed by the given store.
func NewCollection(store services.TabStore) *Collection {
	return &Collection{store: store}
}

// Refresh fetches the full sorted tab set and replaces the snapshot
// atomically. On error the previous snapshot is preserved and the error is
// recorded; the caller shows a "try refreshing" state instead of an empty
// list.
func (c *Collection) Refresh(ctx context.Context) error {
	fetched, err := c.store.ListTabs(ctx)
	if err != nil {
		c.mu.Lock()
		c.loadErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.tabs = fetched
	c.loaded = true
	c.loadErr = nil
	c.mu.Unlock()
	return nil
}

// Clear drops the cached snapshot; called when the session ends.
func (c *Collection) Clear() {
	c.mu.Lock()
	c.tabs = nil
	c.loaded = false
	c.loadErr = nil
	c.mu.Unlock()
}

// Snapshot returns the current cached tab list. The returned slice is the
// atomic snapshot itself and must not be mutated.
func (c *Collection) Snapshot() []models.Tab {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tabs
}

// Loaded reports whether at least one refresh has completed since the last Clear.
func (c *Collection) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LoadError returns the error of the most recent failed refresh, or nil.
func (c *Collection) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}
