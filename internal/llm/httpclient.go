package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/pkg/model"
)

const defaultHTTPTimeout = 120 * time.Second

// HTTPWorker posts to a bare OpenAI-compatible HTTP completion endpoint,
// for self-hosted or proxy LLM servers.
type HTTPWorker struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	client   *http.Client
}

// NewHTTPWorker builds an HTTPWorker from config.
func NewHTTPWorker(cfg model.HTTPLLMConfig) *HTTPWorker {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTPWorker{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
	}
}

func (w *HTTPWorker) Render(tmpl string, data any) (string, error) {
	return renderTemplate(tmpl, data)
}

func (w *HTTPWorker) Timeout() time.Duration {
	return w.timeout
}

type httpChatRequest struct {
	Model    string            `json:"model"`
	Messages []httpChatMessage `json:"messages"`
}

type httpChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type httpChatResponse struct {
	Choices []struct {
		Message httpChatMessage `json:"message"`
	} `json:"choices"`
}

func (w *HTTPWorker) Invoke(ctx context.Context, prompt string) (string, error) {
	if w.endpoint == "" {
		return "", fmt.Errorf("llm: http backend has no endpoint configured")
	}

	body, err := json.Marshal(httpChatRequest{
		Model:    w.model,
		Messages: []httpChatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		if reqCtx.Err() != nil {
			return "", fmt.Errorf("%w: %s", distillerr.LLMTimeout, err)
		}
		return "", fmt.Errorf("%w: %s", distillerr.LLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", distillerr.LLMUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	var parsed httpChatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty output", distillerr.LLMUnavailable)
	}
	return parsed.Choices[0].Message.Content, nil
}
