package reviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/shared/util"
)

// PGRepo implements Repo using Postgres. Each operation checks out its
// own pooled connection and releases it on every exit path.
type PGRepo struct {
	DB *sql.DB
}

// AddReview inserts a review row keyed by content hash. A conflicting
// hash means the identical text was already stored; the insert is a
// silent no-op and the canonical hash is returned.
func (r *PGRepo) AddReview(ctx context.Context, userID string, app *application.Record, reviewText string) (string, error) {
	const query = `
INSERT INTO grant_reviews (content_hash, name, content, meta_data, document_type)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (content_hash) DO NOTHING`

	contentHash := util.ContentHash(reviewText)
	meta, err := json.Marshal(buildMeta(userID, app))
	if err != nil {
		return "", fmt.Errorf("%w: encode meta_data: %v", ErrLedgerUnavailable, err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		contentHash,
		displayName(userID),
		reviewText,
		meta,
		DocumentType,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return contentHash, nil
}

// GetReviews returns all reviews for a user, newest first.
func (r *PGRepo) GetReviews(ctx context.Context, userID string) ([]Record, error) {
	const query = `
SELECT content_hash, name, content, meta_data, document_type, created_at
FROM grant_reviews
WHERE meta_data->>'user_id' = $1
ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return out, nil
}

// GetLatestReview returns the most recent review for a user.
func (r *PGRepo) GetLatestReview(ctx context.Context, userID string) (Record, error) {
	const query = `
SELECT content_hash, name, content, meta_data, document_type, created_at
FROM grant_reviews
WHERE meta_data->>'user_id' = $1
ORDER BY created_at DESC
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, userID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var meta []byte
	var name sql.NullString
	var docType sql.NullString
	if err := row.Scan(&rec.ContentHash, &name, &rec.Content, &meta, &docType, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if name.Valid {
		rec.Name = name.String
	}
	if docType.Valid {
		rec.DocumentType = docType.String
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &rec.MetaData); err != nil {
			return Record{}, err
		}
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
