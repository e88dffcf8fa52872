// Package inventory implements the create-or-update-by-number flow and
// entry lookups on top of a Store.
package inventory

import (
	"context"
	"errors"
	"strings"

	"computer-inventory-api/internal/apperr"
	"computer-inventory-api/internal/logger"
	"computer-inventory-api/internal/models"
	"computer-inventory-api/internal/query"
	"computer-inventory-api/internal/store"
)

// MsgNoChanges is reported when an upsert matched an identical entry
const MsgNoChanges = "No changes were made."

// MsgEntryNotFound is reported when an id matches no entry
const MsgEntryNotFound = "The entry was not found."

// Store is the persistence the service needs. *store.DB satisfies it.
type Store interface {
	EntryByID(ctx context.Context, id int64) (*models.Entry, error)
	EntryByNumber(ctx context.Context, number int64) (*models.Entry, error)
	InsertEntry(ctx context.Context, e *models.Entry) error
	UpdateEntry(ctx context.Context, e *models.Entry) error
	SearchEntries(ctx context.Context, q query.Query) ([]models.Entry, error)
}

// Recorder observes service outcomes, typically for metrics
type Recorder interface {
	ObserveUpsert(outcome Outcome)
	ObserveSearch(results int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpsert(Outcome) {}
func (nopRecorder) ObserveSearch(int)     {}

// Outcome is what an upsert did
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Result of an upsert
type Result struct {
	Outcome Outcome
	// Entry is the stored entry after the call
	Entry   *models.Entry
	Changes []models.Change
}

// Message returns the client-facing summary of an update or no-op.
// One line per changed field, in field order.
func (r *Result) Message() string {
	if len(r.Changes) == 0 {
		return MsgNoChanges
	}
	lines := make([]string, len(r.Changes))
	for i, c := range r.Changes {
		lines[i] = c.String()
	}
	return strings.Join(lines, "\n")
}

// Service coordinates validation-free entry operations
type Service struct {
	store    Store
	recorder Recorder
}

// Option configures a Service
type Option func(*Service)

// WithRecorder sets the outcome recorder
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(st Store, opts ...Option) *Service {
	s := &Service{store: st, recorder: nopRecorder{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert creates the entry when no entry carries its number, otherwise
// applies the differing fields to the existing entry. e must be validated.
func (s *Service) Upsert(ctx context.Context, e *models.Entry) (*Result, error) {
	existing, err := s.store.EntryByNumber(ctx, e.Number)
	if errors.Is(err, store.ErrNotFound) {
		created := *e
		created.ID = 0
		err = s.store.InsertEntry(ctx, &created)
		if err == nil {
			s.recorder.ObserveUpsert(Created)
			return &Result{Outcome: Created, Entry: &created}, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, apperr.Internal(err)
		}
		// another request inserted the same number first
		logger.Log.Debugw("insert lost race, updating instead", "number", e.Number)
		existing, err = s.store.EntryByNumber(ctx, e.Number)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	changes := existing.Diff(e)
	if len(changes) == 0 {
		s.recorder.ObserveUpsert(Unchanged)
		return &Result{Outcome: Unchanged, Entry: existing}, nil
	}

	updated := *existing
	updated.CopyFields(e)
	if err := s.store.UpdateEntry(ctx, &updated); err != nil {
		return nil, apperr.Internal(err)
	}
	s.recorder.ObserveUpsert(Updated)
	return &Result{Outcome: Updated, Entry: &updated, Changes: changes}, nil
}

// Get returns the entry with id
func (s *Service) Get(ctx context.Context, id int64) (*models.Entry, error) {
	e, err := s.store.EntryByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(MsgEntryNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return e, nil
}

// Search returns one page of entries matching spec
func (s *Service) Search(ctx context.Context, spec query.Spec) ([]models.Entry, error) {
	entries, err := s.store.SearchEntries(ctx, query.Build(spec))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.recorder.ObserveSearch(len(entries))
	return entries, nil
}
