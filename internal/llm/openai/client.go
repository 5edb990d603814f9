package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
	"github.com/joseph-ayodele/deal-scanner/internal/llm"
)

var (
	errNoAPIKey       = errors.New("no API key configured")
	errNoChoices      = errors.New("no choices in response")
	errEmptyCandidate = errors.New("empty candidate")
	errSafetyBlock    = errors.New("response blocked by content filter")
)

var _ llm.Inferer = (*Client)(nil)

// Infer implements llm.Inferer with a single chat/completions call in JSON
// mode. It does not retry.
func (c *Client) Infer(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return "", common.InferenceError("openai", errNoAPIKey)
	}

	c.log.Info("llm.infer.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": "You extract commercial real estate deal data. Return ONLY a JSON object."},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, rid, c.log)
	if err != nil {
		c.log.Error("llm.infer.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.InferenceError("openai", err)
	}

	var cc struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content string `json:"content"`
				Refusal string `json:"refusal"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.infer.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.InferenceError("openai", fmt.Errorf("decode response: %w", err))
	}
	if len(cc.Choices) == 0 {
		return "", common.InferenceError("openai", errNoChoices)
	}

	choice := cc.Choices[0]
	if choice.FinishReason == "content_filter" || choice.Message.Refusal != "" {
		c.log.Warn("llm.infer.blocked", "req_id", rid, "finish_reason", choice.FinishReason)
		return "", common.InferenceError("openai", errSafetyBlock)
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", common.InferenceError("openai", errEmptyCandidate)
	}

	c.log.Info("llm.infer.ok",
		"req_id", rid,
		"finish_reason", choice.FinishReason,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
