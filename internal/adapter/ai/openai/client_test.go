package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/openai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/retryx"
)

func testPolicy() retryx.Policy {
	return retryx.Policy{Attempts: 3, MinDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func testConfig(baseURL string) config.Config {
	return config.Config{
		OpenAIAPIKey:    "test-key",
		OpenAIBaseURL:   baseURL,
		OpenAIModel:     "gpt-4o-mini",
		ProviderTimeout: 2 * time.Second,
	}
}

func chatCompletion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func evalInput() domain.EvalInput {
	return domain.EvalInput{
		Transcript:     "REST is an architectural style built on HTTP verbs and resources.",
		QuestionPrompt: "Explain REST.",
		Category:       domain.CategoryTechnical,
		TargetRole:     "backend engineer",
	}
}

func TestEvaluate_Success(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		_, _ = w.Write([]byte(chatCompletion(`{"communication": 80, "technical_accuracy": 74, "feedback_tips": ["name a concrete endpoint"]}`)))
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	out, err := c.Evaluate(context.Background(), evalInput())
	require.NoError(t, err)
	assert.Equal(t, "openai", out.Source)
	require.NotNil(t, out.Communication)
	assert.Equal(t, 80, *out.Communication)
	require.NotNil(t, out.TechnicalAccuracy)
	assert.Equal(t, 74, *out.TechnicalAccuracy)
}

func TestEvaluate_RetriesOn500ThenSucceeds(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(chatCompletion(`{"grammar": 66}`)))
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	out, err := c.Evaluate(context.Background(), evalInput())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 66, *out.Grammar)
}

func TestEvaluate_ExhaustsAttemptsOn503(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	_, err := c.Evaluate(context.Background(), evalInput())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEvaluate_NoRetryOn400(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	_, err := c.Evaluate(context.Background(), evalInput())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEvaluate_MissingAPIKey(t *testing.T) {
	t.Parallel()
	cfg := testConfig("http://127.0.0.1:1")
	cfg.OpenAIAPIKey = ""
	c := openai.New(cfg, testPolicy())
	_, err := c.Evaluate(context.Background(), evalInput())
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestEvaluate_EmptyChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	_, err := c.Evaluate(context.Background(), evalInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestGenerateText_StripsAndSanitizes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// generate calls never force JSON mode
		assert.NotContains(t, body, "response_format")
		_, _ = w.Write([]byte(chatCompletion("  What trade-offs did you weigh?  ")))
	}))
	defer srv.Close()

	c := openai.New(testConfig(srv.URL), testPolicy())
	got, err := c.GenerateText(context.Background(), "ask one question", "context here", 0.5, 80)
	require.NoError(t, err)
	assert.Equal(t, "What trade-offs did you weigh?", got)
}
