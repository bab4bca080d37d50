package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"propchat/internal/logging"
	"propchat/internal/model"
)

// ImageResolver looks up the dedicated primary image of a property.
// A nil URL with a nil error means the property has no dedicated image.
type ImageResolver interface {
	PrimaryImage(ctx context.Context, propertyID int64) (*string, error)
}

// Normalizer projects store rows into PropertySummary values and resolves
// each row's primary image
type Normalizer struct {
	images ImageResolver
}

// NewNormalizer creates a result normalizer
func NewNormalizer(images ImageResolver) *Normalizer {
	return &Normalizer{images: images}
}

// Normalize resolves images for all rows concurrently, one lookup per row.
// The output has the same length and order as rows. A failed lookup only
// nulls that row's image.
func (n *Normalizer) Normalize(ctx context.Context, rows []model.Property) []model.PropertySummary {
	summaries := make([]model.PropertySummary, len(rows))
	if len(rows) == 0 {
		return summaries
	}

	logger := logging.FromContext(ctx)

	var g errgroup.Group
	g.SetLimit(len(rows))
	for i, row := range rows {
		g.Go(func() error {
			summaries[i] = row.Summarize(n.resolveImage(ctx, logger, row))
			return nil
		})
	}
	// Lookups never return errors; Wait only joins them
	_ = g.Wait()

	return summaries
}

func (n *Normalizer) resolveImage(ctx context.Context, logger *slog.Logger, row model.Property) *string {
	if n.images == nil {
		return row.ImageURL
	}

	url, err := n.images.PrimaryImage(ctx, row.ID)
	if err != nil {
		logger.Warn("image lookup failed", "property_id", row.ID, "error", err)
		return nil
	}
	if url != nil {
		return url
	}
	return row.ImageURL
}
