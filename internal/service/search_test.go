package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propchat/internal/model"
	"propchat/internal/repository"
)

// fakeStore records the queries it receives and serves fixed rows
type fakeStore struct {
	fakeImages
	mu      sync.Mutex
	rows    []model.Property
	err     error
	delay   time.Duration // slept through without watching ctx, like a stuck query
	queries []*repository.PropertyQuery
}

func (s *fakeStore) SearchProperties(ctx context.Context, q *repository.PropertyQuery) ([]model.Property, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeStore) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func TestSearchService_Search(t *testing.T) {
	store := &fakeStore{rows: []model.Property{
		propertyRow(2, stringPtr("https://img/2.jpg")),
		propertyRow(1, nil),
	}}
	svc := NewSearchService(store, 5)

	got, err := svc.Search(context.Background(), &model.SearchCriteria{
		OperationType: stringPtr("alquiler"),
		Location:      stringPtr("Valencia"),
		MaxPrice:      float64Ptr(500),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "https://img/2.jpg", *got[0].ImageURL)

	require.Equal(t, 1, store.queryCount())
	q := store.queries[0]
	assert.Equal(t, 5, q.Limit)
	assert.Len(t, q.Predicates, 4)
}

func TestSearchService_TruncatesToLimit(t *testing.T) {
	rows := make([]model.Property, 8)
	for i := range rows {
		rows[i] = propertyRow(int64(i+1), nil)
	}
	svc := NewSearchService(&fakeStore{rows: rows}, 3)

	got, err := svc.Search(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSearchService_StoreUnavailable(t *testing.T) {
	svc := NewSearchService(&fakeStore{err: errors.New("dial tcp: connection refused")}, 5)

	_, err := svc.Search(context.Background(), nil)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSearchService_DiscardsResultsAfterCancel(t *testing.T) {
	svc := NewSearchService(&fakeStore{rows: []model.Property{propertyRow(1, nil)}}, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := svc.Search(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}
