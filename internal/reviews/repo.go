package reviews

import (
	"context"
	"strings"

	"grantreview-backend/internal/application"
)

// Repo is the review ledger: a content-addressed store of reviews with
// per-user history ordering. Read operations return copies, never
// references into storage.
type Repo interface {
	// AddReview persists a review keyed by the hash of reviewText and
	// returns that hash. Writing the same text twice is an idempotent
	// no-op that returns the canonical hash. app may be nil when the
	// original submission could not be parsed.
	AddReview(ctx context.Context, userID string, app *application.Record, reviewText string) (string, error)

	// GetReviews returns all reviews for userID, newest first. No
	// reviews is an empty slice, not an error.
	GetReviews(ctx context.Context, userID string) ([]Record, error)

	// GetLatestReview returns the most recent review for userID, or
	// ErrNotFound.
	GetLatestReview(ctx context.Context, userID string) (Record, error)
}

func buildMeta(userID string, app *application.Record) map[string]string {
	meta := map[string]string{
		"user_id":     userID,
		"review_type": ReviewType,
	}
	if app != nil {
		meta["application_id"] = app.ID
		if date, ok := app.MetaData["application_date"].(string); ok && date != "" {
			meta["application_date"] = date
		} else {
			meta["application_date"] = app.CreatedAt
		}
	}
	return meta
}

func displayName(userID string) string {
	return "Grant Review - " + strings.TrimSpace(userID)
}
