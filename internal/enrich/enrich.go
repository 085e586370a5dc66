// Package enrich provides the asynchronous external lookups that augment
// a review context. Adapters never propagate upstream errors: every
// invocation settles to either a success payload or a failure marker.
package enrich

import "context"

// Adapter performs one outbound enrichment lookup. Implementations make
// exactly one upstream call per invocation and do not retry; retry policy
// belongs to the orchestrator.
type Adapter interface {
	Name() string
	Enrich(ctx context.Context, query string) Result
}

// Result is the settled outcome of one enrichment lookup.
type Result struct {
	Adapter string
	OK      bool
	// Summary is the human-readable success text rendered into the
	// evaluation context.
	Summary string
	// Reason describes the failure when OK is false.
	Reason string
	// Stats carries the typed commit-activity payload when the adapter
	// produced one.
	Stats *CommitStats
}

func success(adapter, summary string) Result {
	return Result{Adapter: adapter, OK: true, Summary: summary}
}

func failure(adapter, reason string) Result {
	return Result{Adapter: adapter, Reason: reason}
}
