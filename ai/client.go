package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"coursegen/apierr"

	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrUnavailable   = errors.New("AI provider is not configured")
	ErrEmptyResponse = errors.New("AI provider returned no content")
)

// TextGenerator is the prompt-in, text-out contract every generation path uses.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client talks to any OpenAI-compatible chat completion endpoint. The default
// base URL is Gemini's OpenAI compatibility layer.
type Client struct {
	api        *openai.Client
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnavailable
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	c.api = c.newAPI(apiKey)
	return c, nil
}

func (c *Client) newAPI(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cfg.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(cfg)
}

// WithAPIKey returns a copy that authenticates with a caller-supplied key.
func (c *Client) WithAPIKey(apiKey string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return c
	}
	cp := *c
	cp.api = c.newAPI(apiKey)
	return &cp
}

func (c *Client) Model() string { return c.model }

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ClassifyError maps a provider failure onto the service error taxonomy.
// Key problems are recognised by the substrings providers put in their
// messages.
func ClassifyError(err error) *apierr.Error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, ErrUnavailable) {
		return apierr.New(http.StatusServiceUnavailable, apierr.CodeAIProvider, err)
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "invalid") || strings.Contains(lower, "expired") || strings.Contains(msg, "PERMISSION_DENIED") {
		return apierr.New(http.StatusUnauthorized, apierr.CodeAIKeyInvalid, err)
	}
	return apierr.New(http.StatusBadGateway, apierr.CodeAIProvider, err)
}
