package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propchat/internal/model"
)

// fakeImages serves primary images from a map, with optional per-row
// failures and random latency
type fakeImages struct {
	mu       sync.Mutex
	images   map[int64]string
	failures map[int64]bool
	jitter   time.Duration
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeImages) PrimaryImage(ctx context.Context, id int64) (*string, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.jitter > 0 {
		select {
		case <-time.After(time.Duration(rand.Int63n(int64(f.jitter)))):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[id] {
		return nil, errors.New("lookup failed")
	}
	if url, ok := f.images[id]; ok {
		return &url, nil
	}
	return nil, nil
}

func propertyRow(id int64, imageURL *string) model.Property {
	return model.Property{
		ID:            id,
		Title:         "Propiedad",
		Location:      "Valencia",
		Price:         float64(100 * id),
		Type:          "apartamento",
		OperationType: model.OperationRental,
		Status:        model.StatusAvailable,
		ImageURL:      imageURL,
	}
}

func TestNormalize_ImageFallbacks(t *testing.T) {
	images := &fakeImages{
		images:   map[int64]string{1: "https://img/1-cover.jpg", 3: "https://img/3-cover.jpg"},
		failures: map[int64]bool{3: true},
	}
	n := NewNormalizer(images)

	rows := []model.Property{
		propertyRow(1, stringPtr("https://img/1.jpg")), // dedicated image wins
		propertyRow(2, stringPtr("https://img/2.jpg")), // row image fallback
		propertyRow(3, stringPtr("https://img/3.jpg")), // lookup failure degrades to null
		propertyRow(4, nil),                            // nothing at all
	}

	got := n.Normalize(context.Background(), rows)
	require.Len(t, got, 4)

	assert.Equal(t, "https://img/1-cover.jpg", *got[0].ImageURL)
	assert.Equal(t, "https://img/2.jpg", *got[1].ImageURL)
	assert.Nil(t, got[2].ImageURL)
	assert.Nil(t, got[3].ImageURL)
	assert.Equal(t, int32(4), images.calls.Load())
}

func TestNormalize_PreservesOrder(t *testing.T) {
	images := &fakeImages{images: map[int64]string{}, jitter: 20 * time.Millisecond}
	rows := make([]model.Property, 5)
	for i := range rows {
		id := int64(i + 1)
		images.images[id] = "https://img/cover-" + string(rune('a'+i))
		rows[i] = propertyRow(id, nil)
	}

	for attempt := 0; attempt < 10; attempt++ {
		got := NewNormalizer(images).Normalize(context.Background(), rows)
		require.Len(t, got, len(rows))
		for i := range rows {
			assert.Equal(t, rows[i].ID, got[i].ID)
			assert.Equal(t, "https://img/cover-"+string(rune('a'+i)), *got[i].ImageURL)
		}
	}
	assert.LessOrEqual(t, images.maxSeen.Load(), int32(len(rows)))
}

func TestNormalize_CopiesFields(t *testing.T) {
	row := propertyRow(9, nil)
	row.Bedrooms = intPtr(3)
	row.Area = float64Ptr(120.5)

	got := NewNormalizer(&fakeImages{}).Normalize(context.Background(), []model.Property{row})
	require.Len(t, got, 1)
	assert.Equal(t, model.PropertySummary{
		ID:            9,
		Title:         "Propiedad",
		Location:      "Valencia",
		Price:         900,
		Bedrooms:      intPtr(3),
		Area:          float64Ptr(120.5),
		Type:          "apartamento",
		OperationType: model.OperationRental,
	}, got[0])
}

func TestNormalize_Empty(t *testing.T) {
	images := &fakeImages{}
	got := NewNormalizer(images).Normalize(context.Background(), nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, images.calls.Load())
}

func TestNormalize_CancelledContext(t *testing.T) {
	images := &fakeImages{images: map[int64]string{1: "https://img/1-cover.jpg"}, jitter: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := NewNormalizer(images).Normalize(ctx, []model.Property{propertyRow(1, stringPtr("https://img/1.jpg"))})
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ImageURL)
}
