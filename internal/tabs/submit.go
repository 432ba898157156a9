package tabs

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
	"github.com/fretless/tabstash/internal/shared"
)

// Submitter sends new tab records to the store.
//
// A busy guard blocks reentrant submissions: a second submit while one is in
// flight fails with [shared.ErrBusy] before any validation or network call,
// so rapid double-triggers cannot produce duplicate inserts. The guard resets
// on every exit path.
type Submitter struct {
	store      services.TabStore
	collection *Collection
	logger     *log.Logger

	mu   sync.Mutex
	busy bool
}

// NewSubmitter creates a Submitter. The collection may be nil; when present
// it is refreshed after every accepted submission.
func NewSubmitter(store services.TabStore, collection *Collection, logger *log.Logger) *Submitter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Submitter{store: store, collection: collection, logger: logger}
}

// Submit validates and stores a new tab.
//
// Title, artist and content are required after trimming; a blank tuning is
// stored as absent. Validation failure blocks the call entirely. On store
// rejection the error passes through verbatim so the caller can preserve the
// inputs for retry. On acceptance the collection is refreshed; there is no
// optimistic local insert, so the new tab appears once the round trip
// re-sorts it into position.
func (s *Submitter) Submit(ctx context.Context, title, artist, tuning, content string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: submit", shared.ErrBusy)
	}
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	tab := models.MakeNewTab(title, artist, tuning, content)
	if err := tab.Validate(); err != nil {
		return err
	}

	if err := s.store.InsertTab(ctx, tab); err != nil {
		return err
	}

	if s.collection != nil {
		if err := s.collection.Refresh(ctx); err != nil {
			// The insert was accepted; a failed follow-up refresh shows as
			// the collection's load-failure state, not a submit failure.
			s.logger.Warn("refresh after submit failed", "err", err)
		}
	}
	return nil
}
