// Package openai implements the reviewer client against the OpenAI
// Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"grantreview-backend/internal/llm"
	"grantreview-backend/internal/shared/telemetry"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

type toolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatTool struct {
	Type     string           `json:"type"`
	Function chatToolFunction `json:"function"`
}

type chatToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
	User       string        `json:"user,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Review runs one reviewer invocation. Tool capabilities are offered to
// the model; at most one round of tool dispatch is performed before the
// final completion is requested.
func (c *Client) Review(ctx context.Context, input llm.ReviewInput) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: input.Description},
		{Role: "user", Content: input.Context},
	}

	req := chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    buildTools(input.Tools),
		User:     sessionUser(input),
	}

	resp, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) == 0 {
		return msg.Content, nil
	}

	messages = append(messages, msg)
	for _, call := range msg.ToolCalls {
		messages = append(messages, c.dispatch(ctx, input.Tools, call))
	}

	final, err := c.complete(ctx, chatRequest{
		Model:      c.model,
		Messages:   messages,
		Tools:      buildTools(input.Tools),
		ToolChoice: "none",
		User:       sessionUser(input),
	})
	if err != nil {
		return "", err
	}
	return final.Choices[0].Message.Content, nil
}

func (c *Client) dispatch(ctx context.Context, tools []llm.Tool, call toolCall) chatMessage {
	result := chatMessage{
		Role:       "tool",
		ToolCallID: call.ID,
		Name:       call.Function.Name,
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		result.Content = fmt.Sprintf("tool error: invalid arguments: %v", err)
		return result
	}

	for _, tool := range tools {
		if tool.Name != call.Function.Name {
			continue
		}
		out, err := tool.Invoke(ctx, args.Query)
		if err != nil {
			result.Content = fmt.Sprintf("tool error: %v", err)
		} else {
			result.Content = out
		}
		return result
	}

	telemetry.Warn("openai.unknown_tool", map[string]any{"tool": call.Function.Name})
	result.Content = fmt.Sprintf("tool error: unknown capability %s", call.Function.Name)
	return result
}

func (c *Client) complete(ctx context.Context, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("openai encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("openai decode response (status %d): %w", httpResp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai returned status %d", httpResp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}
	return &parsed, nil
}

func buildTools(tools []llm.Tool) []chatTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]chatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, chatTool{
			Type: "function",
			Function: chatToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Lookup input, e.g. a repository reference or research question.",
						},
					},
					"required": []string{"query"},
				},
			},
		})
	}
	return out
}

func sessionUser(input llm.ReviewInput) string {
	if input.SessionID != "" {
		return input.SessionID
	}
	return input.UserID
}
