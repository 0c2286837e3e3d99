package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/flowbit/invoice-analytics/internal/entity"
)

// PaymentRepository creates the optional payment row of an invoice.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.Payment) (*entity.Payment, error)
}

type paymentRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewPaymentRepository(db *gorm.DB, logger *slog.Logger) PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *entity.Payment) (*entity.Payment, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		r.logger.Error("failed to create payment", "invoice_id", p.InvoiceID, "error", err)
		return nil, err
	}
	return p, nil
}
