package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/flowbit/invoice-analytics/internal/entity"
)

// LineItemRepository bulk-creates the positions of one invoice.
type LineItemRepository interface {
	// CreateAll inserts the items in the given order. A nil or empty
	// slice is a no-op.
	CreateAll(ctx context.Context, items []*entity.LineItem) ([]*entity.LineItem, error)
}

type lineItemRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLineItemRepository(db *gorm.DB, logger *slog.Logger) LineItemRepository {
	return &lineItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *lineItemRepository) CreateAll(ctx context.Context, items []*entity.LineItem) ([]*entity.LineItem, error) {
	if len(items) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		r.logger.Error("failed to create line items", "count", len(items), "error", err)
		return nil, err
	}
	return items, nil
}
