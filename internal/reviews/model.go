package reviews

import "time"

const (
	// DocumentType tags every persisted review row.
	DocumentType = "grant_review"

	// ReviewType is the fixed meta_data.review_type value.
	ReviewType = "grant_review"

	// NewApplicationMarker classifies an inbound message as a fresh
	// submission rather than a follow-up query.
	NewApplicationMarker = "New Grant Application Received"
)

// Record is a persisted review keyed by the content hash of its text.
// The hash is a function of the review text alone: byte-identical
// reviews collapse to one row.
type Record struct {
	ContentHash  string            `json:"content_hash"`
	Name         string            `json:"name"`
	Content      string            `json:"content"`
	MetaData     map[string]string `json:"meta_data"`
	DocumentType string            `json:"document_type"`
	CreatedAt    time.Time         `json:"created_at"`
}
