// Package llm implements the Generator port against the OpenAI chat
// completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dataprism/internal/errors"
)

// Config holds the settings for the OpenAI client.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// OpenAIClient implements ports.Generator against the chat completions
// endpoint. Transport and API failures surface as UPSTREAM_ERROR; the
// content of a successful response is returned untouched for the coercer
// to deal with.
type OpenAIClient struct {
	config Config
	http   *http.Client
}

// NewOpenAIClient validates the config and builds a client.
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	return &OpenAIClient{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
	}, nil
}

// Generate sends one system + one user message and returns the first
// choice's content.
func (c *OpenAIClient) Generate(ctx context.Context, systemInstructions, prompt string) (string, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature,omitempty"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
	}
	body := reqBody{
		Model: c.config.Model,
		Messages: []msg{
			{Role: "system", Content: systemInstructions},
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.UpstreamError("openai", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.UpstreamError("openai", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.UpstreamError("openai",
			fmt.Errorf("http %d: %s", resp.StatusCode, string(respRaw)))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", errors.UpstreamError("openai", fmt.Errorf("unmarshal response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", errors.UpstreamError("openai", fmt.Errorf("response missing choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

// MockGenerator is a Generator for tests.
type MockGenerator struct {
	Response string
	Err      error
	Prompts  []string // records received prompts
}

func (m *MockGenerator) Generate(_ context.Context, _, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
