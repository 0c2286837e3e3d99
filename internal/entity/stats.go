package entity

// Overview aggregates the headline numbers for the dashboard.
type Overview struct {
	TotalInvoices   int64   `json:"total_invoices"`
	TotalSpend      float64 `json:"total_spend"`
	TotalSubTotal   float64 `json:"total_subtotal"`
	TotalTax        float64 `json:"total_tax"`
	AvgInvoiceValue float64 `json:"avg_invoice_value"`
	AvgTaxRate      float64 `json:"avg_tax_rate"`
	TotalLineItems  int64   `json:"total_line_items"`
}

// TrendPoint is one month of invoice volume and value.
type TrendPoint struct {
	Month       string  `json:"month"`
	Count       int64   `json:"count"`
	SubtotalSum float64 `json:"subtotal_sum"`
	TaxSum      float64 `json:"tax_sum"`
	TotalSum    float64 `json:"total_sum"`
}

// VendorSpend is one vendor's accumulated invoice total.
type VendorSpend struct {
	VendorName    string  `json:"vendor_name"`
	VendorAddress string  `json:"vendor_address"`
	TotalSpend    float64 `json:"total_spend"`
}

// CategorySpend is line-item spend grouped by Sachkonto.
type CategorySpend struct {
	Category   string  `json:"category"`
	TotalSpend float64 `json:"total_spend"`
}

// OutflowPoint is one month of due payments for one vendor.
type OutflowPoint struct {
	Month        string  `json:"month"`
	VendorName   string  `json:"vendor_name"`
	TotalOutflow float64 `json:"total_outflow"`
}

// TableCounts are the per-entity row counts reported after a batch run.
type TableCounts struct {
	Vendors   int64 `json:"vendors"`
	Customers int64 `json:"customers"`
	Invoices  int64 `json:"invoices"`
	LineItems int64 `json:"line_items"`
	Payments  int64 `json:"payments"`
}
