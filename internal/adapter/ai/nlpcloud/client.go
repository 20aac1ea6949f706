// Package nlpcloud adapts a generic bearer-token NLP scoring endpoint to the
// provider capability interface. The endpoint returns a flat JSON score
// object rather than generated prose.
package nlpcloud

import (
	"bytes"
	"encoding/json"
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

// Client implements domain.Provider against a flat-JSON scoring API.
type Client struct {
	apiKey  string
	baseURL string
	retry   retryx.Policy
	hc      *http.Client
}

// New constructs the client.
func New(cfg config.Config, retry retryx.Policy) *Client {
	return &Client{
		apiKey:  cfg.NLPCloudAPIKey,
		baseURL: cfg.NLPCloudBaseURL,
		retry:   retry,
		hc:      &http.Client{Timeout: cfg.ProviderTimeout, Transport: ai.Transport("nlpcloud")},
	}
}

// Name implements domain.Provider.
func (c *Client) Name() string { return "nlpcloud" }

// Evaluate posts the answer for scoring and parses the flat score object.
func (c *Client) Evaluate(ctx domain.Context, in domain.EvalInput) (*domain.ProviderOutcome, error) {
	body, _ := json.Marshal(map[string]any{
		"text":     in.Transcript,
		"question": in.QuestionPrompt,
		"category": in.Category,
		"role":     in.TargetRole,
	})
	raw, err := c.post(ctx, "/score", body)
	if err != nil {
		return nil, err
	}
	return ai.ParseOutcome(c.Name(), raw)
}

// GenerateText posts an instruction/prompt pair to the generation endpoint.
func (c *Client) GenerateText(ctx domain.Context, instruction, prompt string, temperature float64, maxTokens int) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"instruction": instruction,
		"prompt":      prompt,
		"temperature": temperature,
		"max_tokens":  maxTokens,
	})
	raw, err := c.post(ctx, "/generate", body)
	if err != nil {
		return "", err
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return "", fmt.Errorf("op=nlpcloud.generate: %w", err)
	}
	text := textx.SanitizeText(out.Text)
	if text == "" {
		return "", fmt.Errorf("op=nlpcloud.generate: empty text")
	}
	return text, nil
}

func (c *Client) post(ctx domain.Context, path string, body []byte) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("op=nlpcloud.post: %w: NLPCLOUD_API_KEY missing", domain.ErrInvalidArgument)
	}
	var raw []byte
	op := func(ctx domain.Context) error {
		start := time.Now()
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.ObserveProviderCall(c.Name(), path, start)
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
			slog.Warn("nlp provider non-2xx",
				slog.String("provider", c.Name()),
				slog.String("op", path),
				slog.Int("status", resp.StatusCode),
				slog.String("body", snippet))
			return &retryx.HTTPStatusError{StatusCode: resp.StatusCode, Op: "nlpcloud" + path}
		}
		raw = bodyBytes
		return nil
	}
	if err := retryx.Do(ctx, c.retry, op); err != nil {
		return "", fmt.Errorf("op=nlpcloud.post: %w", err)
	}
	return string(raw), nil
}
