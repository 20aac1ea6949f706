// Package postgres persists interview sessions in PostgreSQL.
package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repo for easy testing.
type PgxPool interface {
	Exec(ctx domain.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx domain.Context, sql string, args ...any) pgx.Row
	Query(ctx domain.Context, sql string, args ...any) (pgx.Rows, error)
}

// SessionRepo persists and loads sessions using a minimal pgx pool.
// Questions and Summary are stored as JSONB documents; session-level fields
// stay relational so they remain queryable.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create stores a new session and returns its id (generates one if empty).
func (r *SessionRepo) Create(ctx domain.Context, s domain.Session) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()

	id := s.ID
	if id == "" {
		id = ulid.Make().String()
	}
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return "", fmt.Errorf("op=session.create: marshal questions: %w", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO sessions (id, mode, category, target_role, company_simulation, job_description, status, questions, summary, version, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULL,1,$9,$9)`
	_, err = r.Pool.Exec(ctx, q, id, s.Mode, s.Category, s.TargetRole, s.CompanySimulation, s.JobDescriptionText, s.Status, questions, now)
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.Session, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()

	q := `SELECT id, mode, category, target_role, company_simulation, job_description, status, questions, summary, version, created_at, updated_at
	      FROM sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	var s domain.Session
	var questions []byte
	var summary []byte
	if err := row.Scan(&s.ID, &s.Mode, &s.Category, &s.TargetRole, &s.CompanySimulation, &s.JobDescriptionText, &s.Status, &questions, &summary, &s.Version, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.Session{}, fmt.Errorf("op=session.get: %w", err)
	}
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return domain.Session{}, fmt.Errorf("op=session.get: unmarshal questions: %w", err)
	}
	if len(summary) > 0 {
		s.Summary = &domain.SessionMetricsSummary{}
		if err := json.Unmarshal(summary, s.Summary); err != nil {
			return domain.Session{}, fmt.Errorf("op=session.get: unmarshal summary: %w", err)
		}
	}
	return s, nil
}

// Update writes the session back, enforcing the optimistic version. A stale
// write affects zero rows and surfaces as ErrConflict so the caller can
// reload and retry.
func (r *SessionRepo) Update(ctx domain.Context, s domain.Session) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Update")
	defer span.End()

	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("op=session.update: marshal questions: %w", err)
	}
	var summary []byte
	if s.Summary != nil {
		summary, err = json.Marshal(s.Summary)
		if err != nil {
			return fmt.Errorf("op=session.update: marshal summary: %w", err)
		}
	}
	q := `UPDATE sessions SET status=$3, questions=$4, summary=$5, version=version+1, updated_at=$6
	      WHERE id=$1 AND version=$2`
	tag, err := r.Pool.Exec(ctx, q, s.ID, s.Version, s.Status, questions, summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.update id=%s version=%d: %w", s.ID, s.Version, domain.ErrConflict)
	}
	return nil
}
