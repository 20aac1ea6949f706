// Package memory is an in-process SessionRepository for development and
// tests. It enforces the same optimistic version discipline as the
// PostgreSQL repo.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// SessionRepo stores sessions in a mutex-guarded map.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionRepo constructs an empty in-memory repo.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]domain.Session)}
}

// Create stores a new session and returns its id (generates one if empty).
func (r *SessionRepo) Create(_ domain.Context, s domain.Session) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = ulid.Make().String()
	}
	if _, exists := r.sessions[s.ID]; exists {
		return "", fmt.Errorf("op=session.create id=%s: %w", s.ID, domain.ErrConflict)
	}
	now := time.Now().UTC()
	s.Version = 1
	s.CreatedAt = now
	s.UpdatedAt = now
	r.sessions[s.ID] = clone(s)
	return s.ID, nil
}

// Get loads a session by id. The snapshot is detached from the store so a
// caller mutating it cannot bypass Update's version check.
func (r *SessionRepo) Get(_ domain.Context, id string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("op=session.get id=%s: %w", id, domain.ErrNotFound)
	}
	return clone(s), nil
}

// Update writes the session back, rejecting stale versions with ErrConflict.
func (r *SessionRepo) Update(_ domain.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.sessions[s.ID]
	if !ok {
		return fmt.Errorf("op=session.update id=%s: %w", s.ID, domain.ErrNotFound)
	}
	if cur.Version != s.Version {
		return fmt.Errorf("op=session.update id=%s version=%d: %w", s.ID, s.Version, domain.ErrConflict)
	}
	s.Version++
	s.UpdatedAt = time.Now().UTC()
	r.sessions[s.ID] = clone(s)
	return nil
}

// clone detaches the question list, the per-question pointers and the summary
// so stored state is only reachable through Create/Update, mirroring the
// JSONB round-trip of the postgres repo.
func clone(s domain.Session) domain.Session {
	if s.Questions != nil {
		qs := make([]domain.SessionQuestion, len(s.Questions))
		copy(qs, s.Questions)
		for i := range qs {
			if qs[i].Submission != nil {
				sub := *qs[i].Submission
				qs[i].Submission = &sub
			}
			if qs[i].Evaluation != nil {
				ev := *qs[i].Evaluation
				qs[i].Evaluation = &ev
			}
		}
		s.Questions = qs
	}
	if s.Summary != nil {
		sum := *s.Summary
		s.Summary = &sum
	}
	return s
}
