package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestResearchAdapterReturnsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req researchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "audit tooling") {
			t.Fatalf("query text missing from request: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(researchResponse{
			Choices: []struct {
				Message researchMessage `json:"message"`
			}{
				{Message: researchMessage{Role: "assistant", Content: "The audit tooling market is growing."}},
			},
		})
	}))
	t.Cleanup(srv.Close)

	adapter := NewResearchAdapter(srv.URL, "test-key", "sonar", 5*time.Second)
	res := adapter.Enrich(context.Background(), "Developers lack audit tooling.")

	if !res.OK {
		t.Fatalf("expected success, got %s", res.Reason)
	}
	if res.Summary != "The audit tooling market is growing." {
		t.Fatalf("unexpected summary %q", res.Summary)
	}
}

func TestResearchAdapterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	adapter := NewResearchAdapter(srv.URL, "test-key", "sonar", 5*time.Second)
	res := adapter.Enrich(context.Background(), "some question")

	if res.OK {
		t.Fatal("expected failure on upstream error")
	}
	if !strings.Contains(res.Reason, "502") {
		t.Fatalf("unexpected reason %q", res.Reason)
	}
}

func TestResearchAdapterEmptyQuery(t *testing.T) {
	adapter := NewResearchAdapter("http://unused.invalid", "key", "sonar", time.Second)
	res := adapter.Enrich(context.Background(), " ")
	if res.OK {
		t.Fatal("expected failure for empty query")
	}
}

func TestResearchAdapterUnconfigured(t *testing.T) {
	adapter := NewResearchAdapter("http://unused.invalid", "", "sonar", time.Second)
	res := adapter.Enrich(context.Background(), "question")
	if res.OK || !strings.Contains(res.Reason, "not configured") {
		t.Fatalf("expected unconfigured failure, got %+v", res)
	}
}
