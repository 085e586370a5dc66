// Package llm abstracts the external reviewer that turns an evaluation
// context into review text.
package llm

import (
	"context"
	"errors"
)

// Tool is a named capability the reviewer may invoke directly during a
// run. The set is fixed and enumerated by the orchestrator; the
// orchestrator also pre-fetches the same data so the context is complete
// even when the reviewer never calls the tool.
type Tool struct {
	Name        string
	Description string
	Invoke      func(ctx context.Context, input string) (string, error)
}

// ReviewInput carries everything one reviewer invocation needs.
type ReviewInput struct {
	// UserID and SessionID key the reviewer's own memory so follow-up
	// conversations keep continuity per user+session.
	UserID    string
	SessionID string
	// Description is the fixed system/background text (the scoring rubric).
	Description string
	// Context is the assembled evaluation context.
	Context string
	Tools   []Tool
}

// Client abstracts LLM providers for grant review.
type Client interface {
	Review(ctx context.Context, input ReviewInput) (string, error)
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Review returns ErrNotImplemented.
func (PlaceholderClient) Review(ctx context.Context, input ReviewInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
