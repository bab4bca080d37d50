package service

import (
	"context"
	"fmt"
	"time"

	"propchat/internal/logging"
	"propchat/internal/model"
	"propchat/internal/repository"
)

// PropertyStore is the read side of the property database
type PropertyStore interface {
	ImageResolver
	SearchProperties(ctx context.Context, q *repository.PropertyQuery) ([]model.Property, error)
}

// SearchService runs a validated search: query building, store access and
// result normalization
type SearchService struct {
	store      PropertyStore
	normalizer *Normalizer
	limit      int
}

// NewSearchService creates a new search service
func NewSearchService(store PropertyStore, limit int) *SearchService {
	return &SearchService{
		store:      store,
		normalizer: NewNormalizer(store),
		limit:      limit,
	}
}

// Search returns at most repository.MaxResults summaries, newest first.
// Store failures are reported as ErrStoreUnavailable.
func (s *SearchService) Search(ctx context.Context, criteria *model.SearchCriteria) ([]model.PropertySummary, error) {
	start := time.Now()

	q := repository.BuildPropertyQuery(criteria, s.limit)
	rows, err := s.store.SearchProperties(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	summaries := s.normalizer.Normalize(ctx, rows)
	if err := ctx.Err(); err != nil {
		// The caller is gone or the deadline fired; nobody will read this
		return nil, err
	}

	logging.FromContext(ctx).Debug("property search finished",
		"criteria", criteria.Params(),
		"results", len(summaries),
		"took_ms", time.Since(start).Milliseconds(),
	)
	return summaries, nil
}
