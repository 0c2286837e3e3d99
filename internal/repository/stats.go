package repository

import (
	"context"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/flowbit/invoice-analytics/internal/entity"
)

// StatsRepository serves the aggregate queries behind the dashboard. The
// month-bucketed queries use date_trunc and require Postgres.
type StatsRepository interface {
	Overview(ctx context.Context) (*entity.Overview, error)
	MonthlyTrends(ctx context.Context) ([]entity.TrendPoint, error)
	TopVendors(ctx context.Context, limit int) ([]entity.VendorSpend, error)
	CategorySpend(ctx context.Context) ([]entity.CategorySpend, error)
	CashOutflow(ctx context.Context) ([]entity.OutflowPoint, error)
	Counts(ctx context.Context) (*entity.TableCounts, error)
}

type statsRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStatsRepository(db *gorm.DB, logger *slog.Logger) StatsRepository {
	return &statsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *statsRepository) Overview(ctx context.Context) (*entity.Overview, error) {
	var totals struct {
		Count       int64
		SpendSum    float64
		SubtotalSum float64
		TaxSum      float64
		AvgTotal    float64
	}
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(total_amount), 0) AS spend_sum, " +
			"COALESCE(SUM(sub_total), 0) AS subtotal_sum, " +
			"COALESCE(SUM(total_tax), 0) AS tax_sum, " +
			"COALESCE(AVG(total_amount), 0) AS avg_total").
		Scan(&totals).Error
	if err != nil {
		r.logger.Error("failed to aggregate invoices", "error", err)
		return nil, err
	}

	var lineItems int64
	if err := r.db.WithContext(ctx).Model(&entity.LineItem{}).Count(&lineItems).Error; err != nil {
		r.logger.Error("failed to count line items", "error", err)
		return nil, err
	}

	var avgTaxRate float64
	if totals.SubtotalSum > 0 {
		avgTaxRate = math.Round(totals.TaxSum/totals.SubtotalSum*100*100) / 100
	}

	return &entity.Overview{
		TotalInvoices:   totals.Count,
		TotalSpend:      totals.SpendSum,
		TotalSubTotal:   totals.SubtotalSum,
		TotalTax:        totals.TaxSum,
		AvgInvoiceValue: totals.AvgTotal,
		AvgTaxRate:      avgTaxRate,
		TotalLineItems:  lineItems,
	}, nil
}

func (r *statsRepository) MonthlyTrends(ctx context.Context) ([]entity.TrendPoint, error) {
	var points []entity.TrendPoint
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(date_trunc('month', invoice_date), 'YYYY-MM') AS month,
			COUNT(*) AS count,
			SUM(sub_total) AS subtotal_sum,
			SUM(total_tax) AS tax_sum,
			SUM(total_amount) AS total_sum
		FROM invoices
		WHERE invoice_date IS NOT NULL
		GROUP BY 1
		ORDER BY 1`).Scan(&points).Error
	if err != nil {
		r.logger.Error("failed to query invoice trends", "error", err)
		return nil, err
	}
	return points, nil
}

func (r *statsRepository) TopVendors(ctx context.Context, limit int) ([]entity.VendorSpend, error) {
	var rows []entity.VendorSpend
	err := r.db.WithContext(ctx).Table("invoices").
		Select("vendors.name AS vendor_name, " +
			"COALESCE(vendors.address, 'Unknown') AS vendor_address, " +
			"SUM(invoices.total_amount) AS total_spend").
		Joins("JOIN vendors ON vendors.id = invoices.vendor_id").
		Group("vendors.id, vendors.name, vendors.address").
		Order("total_spend DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("failed to query top vendors", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) CategorySpend(ctx context.Context) ([]entity.CategorySpend, error) {
	var rows []entity.CategorySpend
	err := r.db.WithContext(ctx).Table("line_items").
		Select("sachkonto AS category, SUM(total_price) AS total_spend").
		Where("sachkonto IS NOT NULL").
		Group("sachkonto").
		Order("total_spend DESC").
		Scan(&rows).Error
	if err != nil {
		r.logger.Error("failed to query category spend", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) CashOutflow(ctx context.Context) ([]entity.OutflowPoint, error) {
	var rows []entity.OutflowPoint
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			to_char(date_trunc('month', i.invoice_date), 'YYYY-MM') AS month,
			v.name AS vendor_name,
			SUM(i.total_amount) AS total_outflow
		FROM invoices i
		JOIN vendors v ON i.vendor_id = v.id
		JOIN payments p ON p.invoice_id = i.id
		WHERE i.invoice_date IS NOT NULL
		  AND p.due_date IS NOT NULL
		GROUP BY 1, v.name
		ORDER BY 1, total_outflow DESC`).Scan(&rows).Error
	if err != nil {
		r.logger.Error("failed to query cash outflow", "error", err)
		return nil, err
	}
	return rows, nil
}

func (r *statsRepository) Counts(ctx context.Context) (*entity.TableCounts, error) {
	counts := &entity.TableCounts{}
	for _, c := range []struct {
		model any
		dst   *int64
	}{
		{&entity.Vendor{}, &counts.Vendors},
		{&entity.Customer{}, &counts.Customers},
		{&entity.Invoice{}, &counts.Invoices},
		{&entity.LineItem{}, &counts.LineItems},
		{&entity.Payment{}, &counts.Payments},
	} {
		if err := r.db.WithContext(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			r.logger.Error("failed to count rows", "error", err)
			return nil, err
		}
	}
	return counts, nil
}
