package reviews

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/enrich"
	"grantreview-backend/internal/llm"
	"grantreview-backend/internal/notify"
	"grantreview-backend/internal/sections"
	"grantreview-backend/internal/shared/metrics"
	"grantreview-backend/internal/shared/telemetry"
)

const (
	apologyReply = "I apologize, but I encountered an issue while reviewing the application. Please try again."
	ledgerReply  = "The application was reviewed but the result could not be recorded. Please resubmit."
	historyReply = "Your review history is currently unavailable. Please try again."
)

// Service orchestrates the review flow: classify the inbound message,
// gather enrichment, consult the reviewer, persist the outcome, and
// deliver the reply.
type Service struct {
	Repo     Repo
	LLM      llm.Client
	GitHub   enrich.Adapter
	Research enrich.Adapter
}

// Review runs one review flow for message. For a new application the
// review text is persisted to the ledger before reply delivery; a
// follow-up is answered from prior reviews without writing anything.
// The returned string is the reviewer's text even when a later stage
// failed, so callers can still surface it.
func (s *Service) Review(ctx context.Context, message, userID, sessionID string, reply notify.Func) (string, error) {
	metrics.IncReviewStarted()
	start := time.Now()

	var out string
	var err error
	if strings.Contains(message, NewApplicationMarker) {
		out, err = s.reviewNewApplication(ctx, message, userID, sessionID, reply)
	} else {
		out, err = s.reviewFollowUp(ctx, message, userID, sessionID, reply)
	}

	metrics.ObserveReviewDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncReviewFailed()
	} else {
		metrics.IncReviewCompleted()
	}
	return out, err
}

func (s *Service) reviewNewApplication(ctx context.Context, message, userID, sessionID string, reply notify.Func) (string, error) {
	raw := extractPayload(message)
	rec, parseErr := application.Parse(raw)

	var reviewCtx string
	if parseErr != nil {
		telemetry.Warn("application parse failed", map[string]any{
			"user_id": userID,
			"error":   parseErr.Error(),
		})
		reviewCtx = BuildParseError(raw, parseErr)
	} else {
		secs := sections.Extract(rec.Content)
		results := s.runAdapters(ctx, secs)
		reviewCtx = BuildNewApplication(rec, secs, results)
	}

	reviewText, err := s.LLM.Review(ctx, llm.ReviewInput{
		UserID:      userID,
		SessionID:   sessionID,
		Description: llm.Description(),
		Context:     reviewCtx,
		Tools:       s.tools(),
	})
	if err != nil {
		telemetry.Error("reviewer invocation failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		s.deliver(ctx, reply, apologyReply, userID)
		return "", fmt.Errorf("review application: %w", err)
	}

	// Persistence happens strictly before reply delivery; a reply is
	// never sent for a review that failed to persist.
	contentHash, err := s.Repo.AddReview(ctx, userID, rec, reviewText)
	if err != nil {
		telemetry.Error("review persistence failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		s.deliver(ctx, reply, ledgerReply, userID)
		return "", fmt.Errorf("persist review: %w", err)
	}

	telemetry.Info("review persisted", map[string]any{
		"user_id":      userID,
		"content_hash": contentHash,
	})
	s.deliver(ctx, reply, reviewText, userID)
	return reviewText, nil
}

func (s *Service) reviewFollowUp(ctx context.Context, message, userID, sessionID string, reply notify.Func) (string, error) {
	// A follow-up answered without the real history would assert things
	// about the user's record that may be false, so a ledger fault
	// aborts the flow instead of degrading it.
	history, err := s.Repo.GetReviews(ctx, userID)
	if err != nil {
		telemetry.Error("review history unavailable", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		s.deliver(ctx, reply, historyReply, userID)
		return "", fmt.Errorf("load review history: %w", err)
	}

	reviewText, err := s.LLM.Review(ctx, llm.ReviewInput{
		UserID:      userID,
		SessionID:   sessionID,
		Description: llm.Description(),
		Context:     BuildFollowUp(history, message),
		Tools:       s.tools(),
	})
	if err != nil {
		telemetry.Error("reviewer invocation failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		s.deliver(ctx, reply, apologyReply, userID)
		return "", fmt.Errorf("review follow-up: %w", err)
	}

	s.deliver(ctx, reply, reviewText, userID)
	return reviewText, nil
}

// runAdapters runs both enrichment lookups concurrently and waits for
// both to settle. Adapters never error; a failed lookup arrives as a
// failure-marked Result and is rendered into the context as such.
func (s *Service) runAdapters(ctx context.Context, secs sections.Sections) []enrich.Result {
	adapters := []struct {
		adapter enrich.Adapter
		query   string
	}{
		{s.GitHub, secs.Get(sections.TechnicalInfrastructure, "github_repository")},
		{s.Research, researchQuery(secs)},
	}

	results := make([]enrich.Result, len(adapters))
	var wg sync.WaitGroup
	for i, a := range adapters {
		if a.adapter == nil {
			continue
		}
		wg.Add(1)
		go func(i int, adapter enrich.Adapter, query string) {
			defer wg.Done()
			results[i] = adapter.Enrich(ctx, query)
		}(i, a.adapter, a.query)
	}
	wg.Wait()

	settled := results[:0]
	for _, res := range results {
		if res.Adapter != "" {
			settled = append(settled, res)
		}
	}
	return settled
}

// researchQuery composes the market-research question from the
// application's own framing of the problem.
func researchQuery(secs sections.Sections) string {
	problem := secs.Get(sections.MarketInnovation, "problem_solution")
	if problem == "" {
		return ""
	}
	name := secs.Get(sections.ProjectFundamentals, "name")
	if name != "" {
		return fmt.Sprintf("Market context and comparable projects for %s: %s", name, problem)
	}
	return "Market context and comparable projects for: " + problem
}

// tools exposes the enrichment adapters as reviewer-invocable tools. A
// failed lookup is returned as text so the reviewer sees the same
// unavailability note the pre-fetched context would carry.
func (s *Service) tools() []llm.Tool {
	var tools []llm.Tool
	for _, spec := range []struct {
		adapter     enrich.Adapter
		description string
	}{
		{s.GitHub, "Look up recent commit activity for a GitHub repository. Input is an owner/repo reference or repository URL."},
		{s.Research, "Research market context for a project. Input is a free-text research question."},
	} {
		if spec.adapter == nil {
			continue
		}
		adapter := spec.adapter
		tools = append(tools, llm.Tool{
			Name:        adapter.Name(),
			Description: spec.description,
			Invoke: func(ctx context.Context, input string) (string, error) {
				res := adapter.Enrich(ctx, input)
				if !res.OK {
					return "analysis unavailable: " + res.Reason, nil
				}
				return res.Summary, nil
			},
		})
	}
	return tools
}

// deliver sends the reply over the callback. Delivery failures are
// logged but never propagated; the review outcome is already decided.
func (s *Service) deliver(ctx context.Context, reply notify.Func, text, userID string) {
	if reply == nil {
		return
	}
	if err := reply(ctx, text); err != nil {
		telemetry.Error("reply delivery failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// extractPayload strips the announcement framing around the embedded
// JSON document. When no braces are present the message is returned
// unchanged and left for Parse to reject.
func extractPayload(message string) string {
	start := strings.Index(message, "{")
	end := strings.LastIndex(message, "}")
	if start < 0 || end < start {
		return message
	}
	return message[start : end+1]
}
