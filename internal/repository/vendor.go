package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowbit/invoice-analytics/internal/entity"
)

// VendorRepository persists vendors keyed by their synthesized external ID.
type VendorRepository interface {
	Upsert(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error)
}

type vendorRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewVendorRepository(db *gorm.DB, logger *slog.Logger) VendorRepository {
	return &vendorRepository{
		db:     db,
		logger: logger,
	}
}

func (r *vendorRepository) Upsert(ctx context.Context, v *entity.Vendor) (*entity.Vendor, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "tax_id", "address", "updated_at"}),
	}).Create(v).Error
	if err != nil {
		r.logger.Error("failed to upsert vendor", "external_id", v.ExternalID, "error", err)
		return nil, err
	}

	// On conflict the insert's generated ID loses; re-read the surviving row.
	var row entity.Vendor
	if err := r.db.WithContext(ctx).Where("external_id = ?", v.ExternalID).First(&row).Error; err != nil {
		r.logger.Error("failed to load upserted vendor", "external_id", v.ExternalID, "error", err)
		return nil, err
	}
	return &row, nil
}
