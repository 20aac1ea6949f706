package httpserver_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/httpserver"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/kvcache"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/repo/memory"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/app"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/dialogue"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evaluator"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/followup"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/usecase"
)

type fixedBank struct{}

func (fixedBank) Sample(_ domain.Context, _ []string, count int) ([]domain.QuestionRecord, error) {
	out := make([]domain.QuestionRecord, count)
	for i := range out {
		out[i] = domain.QuestionRecord{
			ID:       fmt.Sprintf("tech-%03d", i+1),
			Category: domain.CategoryTechnical,
			Prompt:   fmt.Sprintf("Walk me through design decision %d.", i+1),
		}
	}
	return out, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{RateLimitPerMin: 1000, CORSAllowOrigins: "*"}
	bank := fixedBank{}
	followups := followup.New(nil)
	svc := usecase.NewSessionService(
		memory.NewSessionRepo(),
		bank,
		evaluator.New(nil, time.Second),
		followups,
		dialogue.New(bank, nil, followups, 0),
		kvcache.NewMemoryStore(),
		nil,
		time.Hour,
	)
	srv := httpserver.NewServer(cfg, svc, nil, nil)
	return app.BuildRouter(cfg, srv)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, h http.Handler) domain.Session {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions", `{"mode":"judge","category":"Technical","question_count":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var sess domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.ID)
	return sess
}

func TestCreateSession_Created(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	sess := createSession(t, h)
	assert.Equal(t, "judge", sess.Mode)
	assert.Len(t, sess.Questions, 2)
}

func TestCreateSession_InvalidMode(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions", `{"mode":"observer"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestCreateSession_UnknownField(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions", `{"mode":"judge","surprise":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/v1/sessions/01J00000000000000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswer_Flow(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	sess := createSession(t, h)

	body := `{"transcript":"I would add an index on the filter column and verify the plan with explain.","answer_type":"text","duration_sec":35}`
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/answers", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		QuestionID string                  `json:"question_id"`
		Evaluation domain.EvaluationResult `json:"evaluation"`
		FollowUp   string                  `json:"follow_up"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "tech-001", res.QuestionID)
	assert.NotZero(t, res.Evaluation.Scores.Overall)
	assert.NotEmpty(t, res.FollowUp)

	// Re-submitting the same question is a conflict.
	rec = doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/answers",
		`{"question_id":"tech-001","transcript":"second attempt at the same question"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChat_Reply(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	sess := createSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/chat", `{"message":"can you repeat the question?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.Reply, "Judge:"))
}

func TestChat_MissingMessage(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	sess := createSession(t, h)
	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplete_ReturnsSummary(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	sess := createSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/answers",
		`{"transcript":"We decided to split the monolith along the billing boundary after measuring deploy coupling."}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.SessionMetricsSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.AnsweredCount)

	rec = doJSON(t, h, http.MethodPost, "/v1/sessions/"+sess.ID+"/complete", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	h := testRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz_FailingCheck(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewServer(config.Config{}, usecase.SessionService{},
		func(context.Context) error { return fmt.Errorf("db down") }, nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	srv.ReadyzHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "db down")
}
