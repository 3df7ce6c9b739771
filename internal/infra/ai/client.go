package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Message struct {
	Role    string `json:"role"` // system | user | assistant
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat completion endpoint. The service
// is opaque to us: ordered messages in, one completion text out.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the client can actually reach a provider.
// Callers short-circuit to a no-op when it is false.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return fmt.Sprintf("completion service returned %d", e.status)
}

// Complete sends the conversation and returns the completion text.
// Server errors (5xx) are retried up to three attempts with exponential
// backoff starting at one second; client errors are terminal.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}

	var text string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return &serverError{status: resp.StatusCode}
		}
		if resp.StatusCode != http.StatusOK {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return backoff.Permanent(fmt.Errorf("completion service returned %d: %s", resp.StatusCode, data))
		}

		var out completionResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode completion response: %w", err))
		}
		if len(out.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("completion response has no choices"))
		}
		text = out.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second

	// 2 retries = 3 attempts total.
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx)); err != nil {
		return "", err
	}
	return text, nil
}
