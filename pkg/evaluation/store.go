package evaluation

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/google/uuid"
)

// ErrSessionNotFound indicates an unknown task draft id.
var ErrSessionNotFound = fmt.Errorf("task draft %w", models.ErrNotFound)

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// SessionStore keeps task drafts in memory. Each draft has its own lock so
// a slow evaluation only blocks selections on the same draft.
type SessionStore struct {
	evaluator *Evaluator
	taskTypes *tasktypes.Store
	logger    *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// NewSessionStore creates a store. Task types are the catalog SelectType
// accepts; a nil catalog accepts none.
func NewSessionStore(evaluator *Evaluator, taskTypes *tasktypes.Store, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		evaluator: evaluator,
		taskTypes: taskTypes,
		logger:    logger.With("module", "task_drafts"),
		sessions:  make(map[string]*sessionEntry),
		now:       time.Now,
	}
}

// Create starts an empty draft.
func (s *SessionStore) Create(ctx context.Context) *Session {
	session := NewSession(uuid.NewString(), s.now().UTC())

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "Task draft created", "session_id", session.ID)

	return session.Clone()
}

// Get returns a copy of the draft.
func (s *SessionStore) Get(_ context.Context, id string) (*Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.session.Clone(), nil
}

// Delete drops the draft.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	delete(s.sessions, id)

	return nil
}

// SelectType picks the task type of the draft, resetting crop, field and
// diagnostics. The draft keeps the type's parameter table as it is now.
func (s *SessionStore) SelectType(ctx context.Context, id, taskType string) (*Session, error) {
	if s.taskTypes == nil {
		return nil, fmt.Errorf("%w: unknown task type %q", models.ErrValidationFailed, taskType)
	}

	selected, err := s.taskTypes.Get(taskType)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown task type %q", models.ErrValidationFailed, taskType)
	}

	return s.update(ctx, id, func(session *Session) error {
		err := session.SelectType(selected.ID)
		if err != nil {
			return err
		}

		session.Parameters = selected.Params

		return nil
	})
}

// SelectCrop picks the crop kind, resetting field and diagnostics. The kind
// must have a profile.
func (s *SessionStore) SelectCrop(ctx context.Context, id, kind string) (*Session, error) {
	if _, err := s.evaluator.Profile(kind); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(session *Session) error {
		return session.SelectCrop(kind)
	})
}

// SelectField picks the field and evaluates it against the selected crop
// kind. When evaluation fails the draft stays in field_selected.
func (s *SessionStore) SelectField(ctx context.Context, id, fieldID string) (*Session, error) {
	if _, err := s.evaluator.Reading(ctx, fieldID); err != nil {
		return nil, err
	}

	return s.update(ctx, id, func(session *Session) error {
		err := session.SelectField(fieldID)
		if err != nil {
			return err
		}

		diagnostics, err := s.evaluator.ListAdvisories(ctx, session.FieldID, session.CropKind)
		if err != nil {
			s.logger.WarnContext(ctx, "Task draft evaluation failed", "session_id", id, "error", err)

			return nil
		}

		return session.Evaluate(diagnostics)
	})
}

// Prune drops drafts untouched since before cutoff and returns how many
// were dropped. Staleness is checked outside the store lock so a draft busy
// evaluating only delays its own check.
func (s *SessionStore) Prune(ctx context.Context, cutoff time.Time) int {
	s.mu.RLock()
	entries := make(map[string]*sessionEntry, len(s.sessions))
	maps.Copy(entries, s.sessions)
	s.mu.RUnlock()

	var stale []string

	for id, entry := range entries {
		entry.mu.Lock()
		expired := entry.session.UpdatedAt.Before(cutoff)
		entry.mu.Unlock()

		if expired {
			stale = append(stale, id)
		}
	}

	pruned := 0

	s.mu.Lock()
	for _, id := range stale {
		// A draft replaced or deleted meanwhile is left alone.
		if s.sessions[id] == entries[id] {
			delete(s.sessions, id)
			pruned++
		}
	}
	s.mu.Unlock()

	if pruned > 0 {
		s.logger.InfoContext(ctx, "Pruned stale task drafts", "count", pruned)
	}

	return pruned
}

// Len returns the number of drafts held.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func (s *SessionStore) update(ctx context.Context, id string, apply func(*Session) error) (*Session, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.session.Clone()

	err = apply(working)
	if err != nil {
		return nil, err
	}

	working.UpdatedAt = s.now().UTC()
	entry.session = working

	s.logger.DebugContext(ctx, "Task draft updated", "session_id", id, "state", working.State)

	return working.Clone(), nil
}

func (s *SessionStore) entry(id string) (*sessionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return entry, nil
}
