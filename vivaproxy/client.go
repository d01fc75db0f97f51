// Package vivaproxy proxies viva chat turns to an OpenAI-compatible
// completion API, retrying rate-limited calls with exponential backoff.
package vivaproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/sparsh1616/MedHistoryApp/domain"
)

// Client is the upstream chat-completion client.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
	baseDelay  time.Duration
}

// NewClient creates a new upstream client. maxRetries bounds the extra
// attempts made on 429 responses before the error is surfaced.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		baseDelay:  time.Second,
	}
}

// Configured reports whether an API key is present. Without one the chat
// endpoint answers 503.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatCompletionRequest represents the OpenAI chat completion request.
type ChatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature,omitempty"`
}

// ChatCompletionResponse represents the OpenAI chat completion response.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a completion choice.
type Choice struct {
	Index        int                 `json:"index"`
	Message      *domain.ChatMessage `json:"message,omitempty"`
	FinishReason string              `json:"finish_reason,omitempty"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}

// APIError represents the error details.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// UpstreamError is a non-success response from the AI provider.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("AI API error [%d]: %s", e.StatusCode, e.Message)
}

// Complete sends the transcript upstream and returns the assistant reply
// text. 429 responses are retried with exponential backoff plus jitter up
// to the configured attempt budget.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		text, err := c.complete(ctx, messages)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var ue *UpstreamError
		if !errors.As(err, &ue) || ue.StatusCode != http.StatusTooManyRequests || attempt == c.maxRetries {
			return "", err
		}

		delay := c.baseDelay*(1<<attempt) + time.Duration(rand.Int63n(int64(time.Second)))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", lastErr
}

func (c *Client) complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.7,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			msg = errResp.Error.Message
		}
		return "", &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("AI response missing content")
	}
	return result.Choices[0].Message.Content, nil
}
