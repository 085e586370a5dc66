package reviews

import (
	"context"
	"sort"
	"sync"
	"time"

	"grantreview-backend/internal/application"
	"grantreview-backend/internal/shared/util"
)

// MemoryRepo is an in-memory Repo used for local development and tests.
// Records are keyed by content hash so duplicate review text collapses
// to a single entry, same as the Postgres unique constraint.
type MemoryRepo struct {
	mu      sync.Mutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		records: map[string]Record{},
		now:     time.Now,
	}
}

func (m *MemoryRepo) AddReview(_ context.Context, userID string, app *application.Record, reviewText string) (string, error) {
	contentHash := util.ContentHash(reviewText)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[contentHash]; ok {
		return contentHash, nil
	}
	m.records[contentHash] = Record{
		ContentHash:  contentHash,
		Name:         displayName(userID),
		Content:      reviewText,
		MetaData:     buildMeta(userID, app),
		DocumentType: DocumentType,
		CreatedAt:    m.now().UTC(),
	}
	return contentHash, nil
}

func (m *MemoryRepo) GetReviews(_ context.Context, userID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Record{}
	for _, rec := range m.records {
		if rec.MetaData["user_id"] == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepo) GetLatestReview(ctx context.Context, userID string) (Record, error) {
	all, err := m.GetReviews(ctx, userID)
	if err != nil {
		return Record{}, err
	}
	if len(all) == 0 {
		return Record{}, ErrNotFound
	}
	return all[0], nil
}

var _ Repo = (*MemoryRepo)(nil)
