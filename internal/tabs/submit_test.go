package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/shared"
	mock "github.com/fretless/tabstash/internal/testing"
)

func TestSubmitter(t *testing.T) {
	ctx := context.Background()

	t.Run("validation failure blocks the network call", func(t *testing.T) {
		cases := []struct {
			name                   string
			title, artist, content string
		}{
			{"all empty", "", "", ""},
			{"missing title", "", "Beatles", "e|---|"},
			{"missing artist", "Blackbird", "", "e|---|"},
			{"missing content", "Blackbird", "Beatles", ""},
			{"whitespace only", "  ", "\t", "\n"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				store := &mock.MockStore{}
				s := NewSubmitter(store, nil, nil)

				err := s.Submit(ctx, tc.title, tc.artist, "", tc.content)
				if !errors.Is(err, shared.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if store.InsertCalls != 0 {
					t.Errorf("insert called %d times despite invalid input", store.InsertCalls)
				}
			})
		}
	})

	t.Run("blank tuning is stored as absent", func(t *testing.T) {
		store := &mock.MockStore{}
		s := NewSubmitter(store, nil, nil)

		if err := s.Submit(ctx, "Blackbird", "Beatles", "   ", "e|---|"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if len(store.Inserted) != 1 {
			t.Fatalf("expected 1 insert, got %d", len(store.Inserted))
		}
		if store.Inserted[0].Tuning != nil {
			t.Errorf("blank tuning should be absent, got %q", *store.Inserted[0].Tuning)
		}
	})

	t.Run("provided tuning is kept", func(t *testing.T) {
		store := &mock.MockStore{}
		s := NewSubmitter(store, nil, nil)

		if err := s.Submit(ctx, "Blackbird", "Beatles", " DADGAD ", "e|---|"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if got := store.Inserted[0].Tuning; got == nil || *got != "DADGAD" {
			t.Errorf("expected tuning DADGAD, got %v", got)
		}
	})

	t.Run("store rejection passes through verbatim", func(t *testing.T) {
		storeErr := errors.New("duplicate key value violates unique constraint")
		store := &mock.MockStore{
			InsertFn: func(ctx context.Context, tab models.NewTab) error {
				return storeErr
			},
		}
		s := NewSubmitter(store, nil, nil)

		err := s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|")
		if !errors.Is(err, storeErr) {
			t.Fatalf("expected store error, got %v", err)
		}
	})

	t.Run("accepted submit refreshes the collection", func(t *testing.T) {
		store := &mock.MockStore{
			ListFn: func(ctx context.Context) ([]models.Tab, error) {
				return []models.Tab{{ID: "1", Title: "Blackbird", Artist: "Beatles"}}, nil
			},
		}
		collection := NewCollection(store)
		s := NewSubmitter(store, collection, nil)

		if err := s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|"); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		if store.ListCalls != 1 {
			t.Errorf("expected 1 refresh, got %d", store.ListCalls)
		}
		if len(collection.Snapshot()) != 1 {
			t.Errorf("collection not updated after submit")
		}
	})

	t.Run("rejected submit does not refresh", func(t *testing.T) {
		store := &mock.MockStore{
			InsertFn: func(ctx context.Context, tab models.NewTab) error {
				return errors.New("rejected")
			},
		}
		collection := NewCollection(store)
		s := NewSubmitter(store, collection, nil)

		_ = s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|")
		if store.ListCalls != 0 {
			t.Errorf("refresh called %d times after rejection", store.ListCalls)
		}
	})

	t.Run("failed refresh after insert is not a submit failure", func(t *testing.T) {
		store := &mock.MockStore{
			ListFn: func(ctx context.Context) ([]models.Tab, error) {
				return nil, errors.New("backend unavailable")
			},
		}
		collection := NewCollection(store)
		s := NewSubmitter(store, collection, nil)

		if err := s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|"); err != nil {
			t.Fatalf("submit should succeed despite refresh failure, got %v", err)
		}
		if collection.LoadError() == nil {
			t.Error("refresh failure should surface as the collection's load error")
		}
	})

	t.Run("second submit while one is in flight is rejected", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		store := &mock.MockStore{
			InsertFn: func(ctx context.Context, tab models.NewTab) error {
				close(entered)
				<-release
				return nil
			},
		}
		s := NewSubmitter(store, nil, nil)

		done := make(chan error, 1)
		go func() {
			done <- s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|")
		}()
		<-entered

		err := s.Submit(ctx, "Let It Be", "Beatles", "", "e|---|")
		if !errors.Is(err, shared.ErrBusy) {
			t.Fatalf("expected busy error, got %v", err)
		}

		close(release)
		if err := <-done; err != nil {
			t.Fatalf("first submit failed: %v", err)
		}
		if store.InsertCalls != 1 {
			t.Errorf("expected 1 insert, got %d", store.InsertCalls)
		}
	})

	t.Run("guard resets after every outcome", func(t *testing.T) {
		store := &mock.MockStore{
			InsertFn: func(ctx context.Context, tab models.NewTab) error {
				return errors.New("rejected")
			},
		}
		s := NewSubmitter(store, nil, nil)

		_ = s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|")
		_ = s.Submit(ctx, "", "", "", "")

		store.InsertFn = nil
		if err := s.Submit(ctx, "Blackbird", "Beatles", "", "e|---|"); err != nil {
			t.Fatalf("submit after failures should succeed, got %v", err)
		}
	})
}
