package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1.
	BaseURL string
	APIKey  string
	Model   string
	// Temperature is passed through as is; zero lets the server decide.
	Temperature float32

	HTTPClient *http.Client
}

// Chat sends one system and one user message and returns the reply text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, system, user, nil)
}

// ChatJSON asks for a JSON object reply and decodes it into out.
func (c *Client) ChatJSON(ctx context.Context, system, user string, out any) error {
	format := &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	text, err := c.complete(ctx, system, user, format)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFence(text)), out); err != nil {
		return fmt.Errorf("llm: decode reply: %w: %v", internalerr.ErrCollaborator, err)
	}
	return nil
}

func (c *Client) complete(ctx context.Context, system, user string, format *openai.ChatCompletionResponseFormat) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required: %w", internalerr.ErrInvalidConfig)
	}
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature:    c.Temperature,
		ResponseFormat: format,
	}
	resp, err := c.client().CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm: %w: %v", internalerr.ErrCollaborator, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response: %w", internalerr.ErrCollaborator)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) client() *openai.Client {
	cfg := openai.DefaultConfig(c.APIKey)
	cfg.BaseURL = strings.TrimRight(c.BaseURL, "/")
	cfg.HTTPClient = c.httpClient()
	return openai.NewClientWithConfig(cfg)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// stripFence removes a ```json ... ``` wrapper some models add even when
// asked for a bare object.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
