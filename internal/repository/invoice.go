package repository

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flowbit/invoice-analytics/internal/entity"
	"github.com/flowbit/invoice-analytics/internal/search"
)

// InvoiceRepository creates and queries invoices. Invoices are never
// upserted: each ingested record creates its own row.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)
	// Search returns one page of invoices matching any of the given
	// predicates (OR), newest invoice date first, plus the total match
	// count. An empty predicate set matches everything.
	Search(ctx context.Context, preds []search.Predicate, page, pageSize int) ([]*entity.Invoice, int64, error)
	// List returns invoices inside an optional invoice-date window,
	// oldest first, with vendor and customer loaded.
	List(ctx context.Context, from, to *time.Time) ([]*entity.Invoice, error)
}

type invoiceRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *gorm.DB, logger *slog.Logger) InvoiceRepository {
	return &invoiceRepository{
		db:     db,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		r.logger.Error("failed to create invoice", "invoice_code", inv.InvoiceCode, "error", err)
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) Search(ctx context.Context, preds []search.Predicate, page, pageSize int) ([]*entity.Invoice, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 49
	}

	base := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Joins("LEFT JOIN vendors ON vendors.id = invoices.vendor_id")
	if cond := r.predicateClause(preds); cond != nil {
		base = base.Where(cond)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		r.logger.Error("failed to count invoices", "error", err)
		return nil, 0, err
	}

	var rows []*entity.Invoice
	err := base.Session(&gorm.Session{}).
		Preload("Vendor").
		Preload("Customer").
		Order("invoices.invoice_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		r.logger.Error("failed to search invoices", "error", err)
		return nil, 0, err
	}
	return rows, total, nil
}

// predicateClause turns the synthesized predicates into one OR-composed
// where condition, nil when there is nothing to filter on.
func (r *invoiceRepository) predicateClause(preds []search.Predicate) *gorm.DB {
	var cond *gorm.DB
	or := func(c *gorm.DB) {
		if cond == nil {
			cond = c
		} else {
			cond = cond.Or(c)
		}
	}
	for _, p := range preds {
		switch p := p.(type) {
		case search.TextMatch:
			col := "invoices.invoice_code"
			if p.Field == search.FieldVendorName {
				col = "vendors.name"
			}
			or(r.db.Where("LOWER("+col+") LIKE ?", "%"+strings.ToLower(p.Pattern)+"%"))
		case search.AmountRange:
			or(r.db.Where("invoices.total_amount >= ? AND invoices.total_amount <= ?", p.Low, p.High))
		case search.DateRange:
			or(r.db.Where("invoices.invoice_date >= ? AND invoices.invoice_date < ?", p.Start, p.End))
		}
	}
	return cond
}

func (r *invoiceRepository) List(ctx context.Context, from, to *time.Time) ([]*entity.Invoice, error) {
	q := r.db.WithContext(ctx).Model(&entity.Invoice{})
	if from != nil {
		q = q.Where("invoice_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("invoice_date <= ?", *to)
	}
	var rows []*entity.Invoice
	err := q.Preload("Vendor").Preload("Customer").Order("invoice_date ASC").Find(&rows).Error
	if err != nil {
		r.logger.Error("failed to list invoices", "error", err)
		return nil, err
	}
	return rows, nil
}
