package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowbit/invoice-analytics/internal/entity"
)

// CustomerRepository persists customers keyed by their synthesized external ID.
type CustomerRepository interface {
	Upsert(ctx context.Context, c *entity.Customer) (*entity.Customer, error)
}

type customerRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCustomerRepository(db *gorm.DB, logger *slog.Logger) CustomerRepository {
	return &customerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *customerRepository) Upsert(ctx context.Context, c *entity.Customer) (*entity.Customer, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "updated_at"}),
	}).Create(c).Error
	if err != nil {
		r.logger.Error("failed to upsert customer", "external_id", c.ExternalID, "error", err)
		return nil, err
	}

	var row entity.Customer
	if err := r.db.WithContext(ctx).Where("external_id = ?", c.ExternalID).First(&row).Error; err != nil {
		r.logger.Error("failed to load upserted customer", "external_id", c.ExternalID, "error", err)
		return nil, err
	}
	return &row, nil
}
