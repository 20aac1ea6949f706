// Package openai adapts an OpenAI-compatible chat-completions endpoint to the
// provider capability interface.
package openai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/retryx"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// Client implements domain.Provider against /chat/completions.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	retry   retryx.Policy
	hc      *http.Client
}

// New constructs the client. The retry policy is this provider's own ladder;
// it never blocks the other adapters in the fan-out.
func New(cfg config.Config, retry retryx.Policy) *Client {
	return &Client{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: cfg.OpenAIBaseURL,
		model:   cfg.OpenAIModel,
		retry:   retry,
		hc:      &http.Client{Timeout: cfg.ProviderTimeout, Transport: ai.Transport("openai")},
	}
}

// Name implements domain.Provider.
func (c *Client) Name() string { return "openai" }

// Evaluate scores one answer and returns a partial score set.
func (c *Client) Evaluate(ctx domain.Context, in domain.EvalInput) (*domain.ProviderOutcome, error) {
	content, err := c.chat(ctx, ai.EvaluationSystemPrompt, ai.EvaluationUserPrompt(in), 0.2, 600, true)
	if err != nil {
		return nil, err
	}
	return ai.ParseOutcome(c.Name(), content)
}

// GenerateText returns the raw completion text for an instruction/prompt pair.
func (c *Client) GenerateText(ctx domain.Context, instruction, prompt string, temperature float64, maxTokens int) (string, error) {
	return c.chat(ctx, instruction, prompt, temperature, maxTokens, false)
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx domain.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int, jsonMode bool) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("op=openai.chat: %w: OPENAI_API_KEY missing", domain.ErrInvalidArgument)
	}
	body := map[string]any{
		"model":       c.model,
		"temperature": temperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	if jsonMode {
		body["response_format"] = map[string]string{"type": "json_object"}
	}
	b, _ := json.Marshal(body)

	var out chatResponse
	op := func(ctx domain.Context) error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing consumed bodies.
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(b))
		if err != nil {
			return err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.ObserveProviderCall(c.Name(), "chat", start)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Warn("ai provider non-2xx",
				slog.String("provider", c.Name()),
				slog.String("op", "chat"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", c.model),
				slog.String("body", snippet))
			return &retryx.HTTPStatusError{StatusCode: resp.StatusCode, Op: "openai.chat"}
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Warn("ai provider decode error", slog.String("provider", c.Name()), slog.Any("error", err))
			return err
		}
		return nil
	}
	if err := retryx.Do(ctx, c.retry, op); err != nil {
		return "", fmt.Errorf("op=openai.chat: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("op=openai.chat: empty choices")
	}
	content := textx.SanitizeText(out.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("op=openai.chat: empty content")
	}
	return content, nil
}
