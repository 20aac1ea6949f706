// Package gemini adapts a generative-content endpoint to the provider
// capability interface. It walks an ordered list of model names across an
// ordered list of API bases until one yields non-empty text.
package gemini

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

// Client implements domain.Provider against :generateContent.
type Client struct {
	apiKey string
	models []string
	bases  []string
	retry  retryx.Policy
	hc     *http.Client
}

// New constructs the client with its ordered model and base preference lists.
func New(cfg config.Config, retry retryx.Policy) *Client {
	return &Client{
		apiKey: cfg.GeminiAPIKey,
		models: cfg.GeminiModels,
		bases:  cfg.GeminiAPIBases,
		retry:  retry,
		hc:     &http.Client{Timeout: cfg.ProviderTimeout, Transport: ai.Transport("gemini")},
	}
}

// Name implements domain.Provider.
func (c *Client) Name() string { return "gemini" }

// Evaluate scores one answer and returns a partial score set.
func (c *Client) Evaluate(ctx domain.Context, in domain.EvalInput) (*domain.ProviderOutcome, error) {
	text, err := c.generate(ctx, ai.EvaluationSystemPrompt, ai.EvaluationUserPrompt(in), 0.2, 600, "application/json")
	if err != nil {
		return nil, err
	}
	return ai.ParseOutcome(c.Name(), text)
}

// GenerateText returns raw generated text for an instruction/prompt pair.
func (c *Client) GenerateText(ctx domain.Context, instruction, prompt string, temperature float64, maxTokens int) (string, error) {
	return c.generate(ctx, instruction, prompt, temperature, maxTokens, "text/plain")
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate walks bases x models in order and returns the first non-empty
// text. Each (base, model) pair gets its own retry ladder.
func (c *Client) generate(ctx domain.Context, instruction, prompt string, temperature float64, maxTokens int, mimeType string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("op=gemini.generate: %w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: instruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:      temperature,
			MaxOutputTokens:  maxTokens,
			ResponseMimeType: mimeType,
		},
	}
	b, _ := json.Marshal(req)

	var lastErr error
	for _, base := range c.bases {
		for _, model := range c.models {
			text, err := c.callModel(ctx, base, model, b)
			if err == nil && text != "" {
				return text, nil
			}
			if err != nil {
				lastErr = err
				slog.Warn("gemini model failed, trying next",
					slog.String("provider", c.Name()),
					slog.String("base", base),
					slog.String("model", model),
					slog.Any("error", err))
			}
			if ctx.Err() != nil {
				return "", fmt.Errorf("op=gemini.generate: %w", ctx.Err())
			}
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no model produced text")
	}
	return "", fmt.Errorf("op=gemini.generate: %w", lastErr)
}

func (c *Client) callModel(ctx domain.Context, base, model string, body []byte) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", base, model, c.apiKey)
	var out generateResponse
	op := func(ctx domain.Context) error {
		start := time.Now()
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		r.Header.Set("Content-Type", "application/json")
		resp, err := c.hc.Do(r)
		observability.ObserveProviderCall(c.Name(), "generate", start)
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
				slog.String("op", "generate"),
				slog.Int("status", resp.StatusCode),
				slog.String("model", model),
				slog.String("body", snippet))
			return &retryx.HTTPStatusError{StatusCode: resp.StatusCode, Op: "gemini.generate"}
		}
		return json.Unmarshal(bodyBytes, &out)
	}
	if err := retryx.Do(ctx, c.retry, op); err != nil {
		return "", err
	}
	for _, cand := range out.Candidates {
		var text string
		for _, p := range cand.Content.Parts {
			text += p.Text
		}
		if t := textx.SanitizeText(text); t != "" {
			return t, nil
		}
	}
	return "", nil
}
