package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

func newSession() domain.Session {
	return domain.Session{
		Mode:     domain.ModeJudge,
		Category: domain.CategoryTechnical,
		Status:   domain.SessionActive,
		Questions: []domain.SessionQuestion{
			{Question: domain.QuestionRecord{ID: "q1", Prompt: "Explain caching."}},
		},
	}
}

func TestSessionRepo_CreateAndGet(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	id, err := repo.Create(context.Background(), newSession())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, domain.SessionActive, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSessionRepo_GetMissing(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	_, err := repo.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepo_UpdateBumpsVersion(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	id, err := repo.Create(context.Background(), newSession())
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	got.Status = domain.SessionCompleted
	require.NoError(t, repo.Update(context.Background(), got))

	got, err = repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, domain.SessionCompleted, got.Status)
}

func TestSessionRepo_StaleUpdateConflicts(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	id, err := repo.Create(context.Background(), newSession())
	require.NoError(t, err)

	a, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	b, err := repo.Get(context.Background(), id)
	require.NoError(t, err)

	require.NoError(t, repo.Update(context.Background(), a))
	err = repo.Update(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSessionRepo_SnapshotIsDetachedFromStore(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	id, err := repo.Create(context.Background(), newSession())
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	got.Questions[0].Submission = &domain.AnswerSubmission{Transcript: "written past the version check"}
	got.Status = domain.SessionCompleted

	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, stored.Questions[0].Submission)
	assert.Equal(t, domain.SessionActive, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestSessionRepo_DuplicateCreateConflicts(t *testing.T) {
	t.Parallel()
	repo := memory.NewSessionRepo()
	s := newSession()
	s.ID = "fixed"
	_, err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
