// Package gemini implements the reviewer client on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"grantreview-backend/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

// Client implements llm.Client using the Gemini API. Tool capabilities
// are not dispatched by this provider; the orchestrator's pre-fetched
// enrichment in the context covers the same data.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a new Gemini client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{client: client, model: model}, nil
}

// Review runs one reviewer invocation.
func (c *Client) Review(ctx context.Context, input llm.ReviewInput) (string, error) {
	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	prompt := input.Description + "\n\n" + input.Context
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini returned nil response")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return text, nil
}
