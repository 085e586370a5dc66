package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const researchAdapterName = "market_research"

// ResearchAdapter issues a single research query to a chat-completions
// style search backend and returns the textual summary.
type ResearchAdapter struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

// NewResearchAdapter constructs the adapter.
func NewResearchAdapter(apiURL, apiKey, model string, timeout time.Duration) *ResearchAdapter {
	return &ResearchAdapter{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements Adapter.
func (a *ResearchAdapter) Name() string { return researchAdapterName }

type researchRequest struct {
	Model    string            `json:"model"`
	Messages []researchMessage `json:"messages"`
}

type researchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type researchResponse struct {
	Choices []struct {
		Message researchMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Enrich runs one market-research query for the given problem/solution
// text. Upstream errors settle to a failure marker.
func (a *ResearchAdapter) Enrich(ctx context.Context, query string) Result {
	if strings.TrimSpace(query) == "" {
		return failure(researchAdapterName, "no problem/solution text provided")
	}
	if strings.TrimSpace(a.apiKey) == "" {
		return failure(researchAdapterName, "research backend not configured")
	}

	payload := researchRequest{
		Model: a.model,
		Messages: []researchMessage{
			{
				Role:    "user",
				Content: "Research the market landscape and competing solutions for the following grant project. Summarize briefly.\n\n" + query,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return failure(researchAdapterName, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(body))
	if err != nil {
		return failure(researchAdapterName, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return failure(researchAdapterName, fmt.Sprintf("research request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failure(researchAdapterName, fmt.Sprintf("research backend returned status %d", resp.StatusCode))
	}

	var parsed researchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return failure(researchAdapterName, fmt.Sprintf("decode response: %v", err))
	}
	if parsed.Error != nil {
		return failure(researchAdapterName, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return failure(researchAdapterName, "research backend returned no content")
	}

	return success(researchAdapterName, strings.TrimSpace(parsed.Choices[0].Message.Content))
}
