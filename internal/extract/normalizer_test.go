package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbit/invoice-analytics/internal/entity"
	"github.com/flowbit/invoice-analytics/internal/search"
)

type fakeVendors struct {
	rows map[string]*entity.Vendor
	err  error
}

func (f *fakeVendors) Upsert(_ context.Context, v *entity.Vendor) (*entity.Vendor, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.rows[v.ExternalID]; ok {
		existing.Name = v.Name
		existing.TaxID = v.TaxID
		existing.Address = v.Address
		return existing, nil
	}
	v.ID = uuid.New()
	f.rows[v.ExternalID] = v
	return v, nil
}

type fakeCustomers struct {
	rows map[string]*entity.Customer
	err  error
}

func (f *fakeCustomers) Upsert(_ context.Context, c *entity.Customer) (*entity.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if existing, ok := f.rows[c.ExternalID]; ok {
		existing.Name = c.Name
		existing.Address = c.Address
		return existing, nil
	}
	c.ID = uuid.New()
	f.rows[c.ExternalID] = c
	return c, nil
}

type fakeInvoices struct {
	rows []*entity.Invoice
	err  error
}

func (f *fakeInvoices) Create(_ context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	inv.ID = uuid.New()
	f.rows = append(f.rows, inv)
	return inv, nil
}

func (f *fakeInvoices) Search(context.Context, []search.Predicate, int, int) ([]*entity.Invoice, int64, error) {
	return nil, 0, nil
}

func (f *fakeInvoices) List(context.Context, *time.Time, *time.Time) ([]*entity.Invoice, error) {
	return nil, nil
}

type fakeLineItems struct {
	rows []*entity.LineItem
	err  error
}

func (f *fakeLineItems) CreateAll(_ context.Context, items []*entity.LineItem) ([]*entity.LineItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, item := range items {
		item.ID = uuid.New()
		f.rows = append(f.rows, item)
	}
	return items, nil
}

type fakePayments struct {
	rows []*entity.Payment
	err  error
}

func (f *fakePayments) Create(_ context.Context, p *entity.Payment) (*entity.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	p.ID = uuid.New()
	f.rows = append(f.rows, p)
	return p, nil
}

type fixture struct {
	vendors   *fakeVendors
	customers *fakeCustomers
	invoices  *fakeInvoices
	lineItems *fakeLineItems
	payments  *fakePayments
	norm      *Normalizer
}

func newFixture() *fixture {
	f := &fixture{
		vendors:   &fakeVendors{rows: map[string]*entity.Vendor{}},
		customers: &fakeCustomers{rows: map[string]*entity.Customer{}},
		invoices:  &fakeInvoices{},
		lineItems: &fakeLineItems{},
		payments:  &fakePayments{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.norm = NewNormalizer(f.vendors, f.customers, f.invoices, f.lineItems, f.payments, logger)
	return f
}

func container(v any) map[string]any {
	return map[string]any{"value": v, "confidence": 0.9}
}

func acmeRecord() ExtractionRecord {
	return ExtractionRecord{
		ID: "doc-7",
		ExtractedData: ExtractedData{LLMData: map[string]any{
			"vendor": container(map[string]any{
				"vendorName":  container("Acme"),
				"vendorTaxId": container("DE811234567"),
			}),
			"customer": container(map[string]any{
				"customerName": container("Globex GmbH"),
			}),
			"invoice": container(map[string]any{
				"invoiceId":   container("INV-001"),
				"invoiceDate": container("2024-03-15"),
			}),
			"summary": container(map[string]any{
				"subTotal":     container("100.00"),
				"totalTax":     container(19.0),
				"invoiceTotal": container("119.00"),
				"currencySymbol": container("EUR"),
			}),
			"lineItems": container(map[string]any{
				"items": container([]any{
					map[string]any{
						"description": container("Widget"),
						"quantity":    container(2.0),
						"unitPrice":   container("25.00"),
						"totalPrice":  container("50.00"),
						"Sachkonto":   container(4400.0),
					},
					map[string]any{
						"description": container("Gadget"),
						"quantity":    container(1.0),
						"unitPrice":   container("50.00"),
						"totalPrice":  container("50.00"),
					},
				}),
			}),
		}},
	}
}

func TestIngestSkipsUningestibleRecords(t *testing.T) {
	tests := []struct {
		name   string
		record ExtractionRecord
		reason SkipReason
	}{
		{
			"missing payload",
			ExtractionRecord{ID: "doc-1"},
			SkipMissingPayload,
		},
		{
			"missing both identifiers",
			ExtractionRecord{ExtractedData: ExtractedData{LLMData: map[string]any{
				"vendor": container(map[string]any{"vendorName": container("Acme")}),
			}}},
			SkipMissingIdentifier,
		},
		{
			"missing vendor section",
			ExtractionRecord{ID: "doc-1", ExtractedData: ExtractedData{LLMData: map[string]any{
				"invoice": container(map[string]any{}),
			}}},
			SkipMissingVendor,
		},
		{
			"payload is not an object",
			ExtractionRecord{ID: "doc-1", ExtractedData: ExtractedData{LLMData: "garbage"}},
			SkipMissingPayload,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			result, err := f.norm.Ingest(context.Background(), &tt.record)

			require.Error(t, err)
			var skipped *SkippedError
			require.ErrorAs(t, err, &skipped)
			assert.Equal(t, tt.reason, skipped.Reason)
			assert.Nil(t, result)

			// Skipped records leave no trace in storage.
			assert.Empty(t, f.vendors.rows)
			assert.Empty(t, f.customers.rows)
			assert.Empty(t, f.invoices.rows)
			assert.Empty(t, f.lineItems.rows)
			assert.Empty(t, f.payments.rows)
		})
	}
}

func TestIngestEndToEnd(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)

	assert.Equal(t, "vendor-doc-7", result.Vendor.ExternalID)
	assert.Equal(t, "Acme", result.Vendor.Name)
	assert.Equal(t, "customer-doc-7", result.Customer.ExternalID)
	assert.Equal(t, "Globex GmbH", result.Customer.Name)

	require.NotNil(t, result.Invoice.InvoiceCode)
	assert.Equal(t, "INV-001", *result.Invoice.InvoiceCode)
	require.NotNil(t, result.Invoice.InvoiceDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *result.Invoice.InvoiceDate)
	assert.Equal(t, 100.0, result.Invoice.SubTotal)
	assert.Equal(t, 19.0, result.Invoice.TotalTax)
	assert.Equal(t, 119.0, result.Invoice.TotalAmount)
	assert.Equal(t, "EUR", result.Invoice.Currency)
	assert.Equal(t, "invoice", result.Invoice.DocumentType)

	// Line items keep source order; numeric codes become strings.
	require.Len(t, result.LineItems, 2)
	assert.Equal(t, "Widget", *result.LineItems[0].Description)
	assert.Equal(t, "Gadget", *result.LineItems[1].Description)
	require.NotNil(t, result.LineItems[0].Sachkonto)
	assert.Equal(t, "4400", *result.LineItems[0].Sachkonto)
	assert.Nil(t, result.LineItems[0].VATRate)
	assert.Nil(t, result.LineItems[0].VATAmount)
	for _, item := range result.LineItems {
		assert.Equal(t, result.Invoice.ID, item.InvoiceID)
	}

	// No payment section, no payment row.
	assert.Nil(t, result.Payment)
	assert.Empty(t, f.payments.rows)

	assert.Len(t, f.vendors.rows, 1)
	assert.Len(t, f.customers.rows, 1)
	assert.Len(t, f.invoices.rows, 1)
	assert.Len(t, f.lineItems.rows, 2)
}

func TestIngestFallsBackToMetadataDocID(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()
	rec.ID = ""
	rec.Metadata.DocID = "meta-42"

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)
	assert.Equal(t, "vendor-meta-42", result.Vendor.ExternalID)
	assert.Equal(t, "customer-meta-42", result.Customer.ExternalID)
}

func TestIngestAppliesDefaults(t *testing.T) {
	f := newFixture()
	rec := ExtractionRecord{
		ID: "doc-9",
		ExtractedData: ExtractedData{LLMData: map[string]any{
			// Vendor section exists but carries no payload.
			"vendor": container(nil),
		}},
	}

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)

	assert.Equal(t, "Unknown Vendor", result.Vendor.Name)
	assert.Nil(t, result.Vendor.TaxID)
	assert.Equal(t, "Unknown Customer", result.Customer.Name)
	assert.Nil(t, result.Invoice.InvoiceCode)
	assert.Nil(t, result.Invoice.InvoiceDate)
	assert.Equal(t, "invoice", result.Invoice.DocumentType)
	assert.Equal(t, "EUR", result.Invoice.Currency)
	assert.Zero(t, result.Invoice.SubTotal)
	assert.Zero(t, result.Invoice.TotalTax)
	assert.Zero(t, result.Invoice.TotalAmount)
	assert.Empty(t, result.LineItems)
	assert.Nil(t, result.Payment)
}

func TestIngestCreatesPayment(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()
	rec.ExtractedData.LLMData.(map[string]any)["payment"] = container(map[string]any{
		"dueDate":            container("2024-04-14"),
		"bankAccountNumber":  container("DE02120300000000202051"),
		"paymentTerms":       container("30 days net"),
		"netDays":            container(30.0),
		"discountPercentage": container("2.5"),
	})

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)

	require.NotNil(t, result.Payment)
	require.NotNil(t, result.Payment.DueDate)
	assert.Equal(t, time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC), *result.Payment.DueDate)
	assert.Equal(t, "DE02120300000000202051", *result.Payment.BankAccountNumber)
	assert.Equal(t, 30, *result.Payment.NetDays)
	assert.Equal(t, 2.5, *result.Payment.DiscountPercentage)
	assert.Nil(t, result.Payment.DiscountedTotal)
	assert.Equal(t, result.Invoice.ID, result.Payment.InvoiceID)
}

func TestIngestEmptyDueDateMeansAbsent(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()
	rec.ExtractedData.LLMData.(map[string]any)["payment"] = container(map[string]any{
		"dueDate": container(""),
	})

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)
	require.NotNil(t, result.Payment)
	assert.Nil(t, result.Payment.DueDate)
}

func TestIngestReplayDuplicatesInvoiceButNotParties(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()

	first, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)
	rec2 := acmeRecord()
	second, err := f.norm.Ingest(context.Background(), &rec2)
	require.NoError(t, err)

	// Vendor and Customer are upserted in place; Invoice and line items
	// duplicate on replay.
	assert.Len(t, f.vendors.rows, 1)
	assert.Len(t, f.customers.rows, 1)
	assert.Equal(t, first.Vendor.ID, second.Vendor.ID)
	assert.Len(t, f.invoices.rows, 2)
	assert.Len(t, f.lineItems.rows, 4)
	assert.NotEqual(t, first.Invoice.ID, second.Invoice.ID)
}

func TestIngestPersistenceFailureIsNotASkip(t *testing.T) {
	f := newFixture()
	f.invoices.err = errors.New("connection reset")
	rec := acmeRecord()

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.Error(t, err)
	assert.Nil(t, result)

	var skipped *SkippedError
	assert.False(t, errors.As(err, &skipped))

	// The vendor and customer upserts already happened; the invoice did not.
	assert.Len(t, f.vendors.rows, 1)
	assert.Len(t, f.customers.rows, 1)
	assert.Empty(t, f.invoices.rows)
	assert.Empty(t, f.lineItems.rows)
}

func TestIngestIgnoresNonArrayLineItems(t *testing.T) {
	f := newFixture()
	rec := acmeRecord()
	rec.ExtractedData.LLMData.(map[string]any)["lineItems"] = container(map[string]any{
		"items": container("not an array"),
	})

	result, err := f.norm.Ingest(context.Background(), &rec)
	require.NoError(t, err)
	assert.Empty(t, result.LineItems)
	assert.Empty(t, f.lineItems.rows)
}
