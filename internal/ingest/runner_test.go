package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowbit/invoice-analytics/internal/entity"
	"github.com/flowbit/invoice-analytics/internal/extract"
	"github.com/flowbit/invoice-analytics/internal/search"
)

type memStore struct {
	vendors    map[string]*entity.Vendor
	customers  map[string]*entity.Customer
	invoices   int
	lineItems  int
	payments   int
	invoiceErr error
	countsErr  error
}

func newMemStore() *memStore {
	return &memStore{
		vendors:   map[string]*entity.Vendor{},
		customers: map[string]*entity.Customer{},
	}
}

func (s *memStore) Upsert(_ context.Context, v *entity.Vendor) (*entity.Vendor, error) {
	if existing, ok := s.vendors[v.ExternalID]; ok {
		return existing, nil
	}
	v.ID = uuid.New()
	s.vendors[v.ExternalID] = v
	return v, nil
}

type memCustomers struct{ store *memStore }

func (s memCustomers) Upsert(_ context.Context, c *entity.Customer) (*entity.Customer, error) {
	if existing, ok := s.store.customers[c.ExternalID]; ok {
		return existing, nil
	}
	c.ID = uuid.New()
	s.store.customers[c.ExternalID] = c
	return c, nil
}

type memInvoices struct{ store *memStore }

func (s memInvoices) Create(_ context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if s.store.invoiceErr != nil {
		return nil, s.store.invoiceErr
	}
	inv.ID = uuid.New()
	s.store.invoices++
	return inv, nil
}

func (s memInvoices) Search(context.Context, []search.Predicate, int, int) ([]*entity.Invoice, int64, error) {
	return nil, 0, nil
}

func (s memInvoices) List(context.Context, *time.Time, *time.Time) ([]*entity.Invoice, error) {
	return nil, nil
}

type memLineItems struct{ store *memStore }

func (s memLineItems) CreateAll(_ context.Context, items []*entity.LineItem) ([]*entity.LineItem, error) {
	s.store.lineItems += len(items)
	return items, nil
}

type memPayments struct{ store *memStore }

func (s memPayments) Create(_ context.Context, p *entity.Payment) (*entity.Payment, error) {
	s.store.payments++
	return p, nil
}

type memStats struct{ store *memStore }

func (s memStats) Overview(context.Context) (*entity.Overview, error)            { return nil, nil }
func (s memStats) MonthlyTrends(context.Context) ([]entity.TrendPoint, error)    { return nil, nil }
func (s memStats) TopVendors(context.Context, int) ([]entity.VendorSpend, error) { return nil, nil }
func (s memStats) CategorySpend(context.Context) ([]entity.CategorySpend, error) { return nil, nil }
func (s memStats) CashOutflow(context.Context) ([]entity.OutflowPoint, error)    { return nil, nil }

func (s memStats) Counts(context.Context) (*entity.TableCounts, error) {
	if s.store.countsErr != nil {
		return nil, s.store.countsErr
	}
	return &entity.TableCounts{
		Vendors:   int64(len(s.store.vendors)),
		Customers: int64(len(s.store.customers)),
		Invoices:  int64(s.store.invoices),
		LineItems: int64(s.store.lineItems),
		Payments:  int64(s.store.payments),
	}, nil
}

func newTestRunner(store *memStore) *Runner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	norm := extract.NewNormalizer(
		store,
		memCustomers{store},
		memInvoices{store},
		memLineItems{store},
		memPayments{store},
		logger,
	)
	return NewRunner(norm, memStats{store}, logger)
}

func record(id string) extract.ExtractionRecord {
	return extract.ExtractionRecord{
		ID: id,
		ExtractedData: extract.ExtractedData{LLMData: map[string]any{
			"vendor": map[string]any{"value": map[string]any{
				"vendorName": map[string]any{"value": "Acme"},
			}},
		}},
	}
}

func TestRunContinuesPastSkipsAndFailures(t *testing.T) {
	store := newMemStore()
	runner := newTestRunner(store)

	records := []extract.ExtractionRecord{
		record("doc-1"),
		{ID: "doc-2"}, // no payload
		record("doc-3"),
	}

	report := runner.Run(context.Background(), records)

	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, Outcome{Position: 1, Status: StatusIngested}, report.Outcomes[0])
	assert.Equal(t, StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, "missing llmData payload", report.Outcomes[1].Reason)
	assert.Equal(t, Outcome{Position: 3, Status: StatusIngested}, report.Outcomes[2])

	assert.Equal(t, 2, store.invoices)
}

func TestRunRecordsPersistenceFailures(t *testing.T) {
	store := newMemStore()
	store.invoiceErr = errors.New("connection reset")
	runner := newTestRunner(store)

	report := runner.Run(context.Background(), []extract.ExtractionRecord{record("doc-1")})

	assert.Equal(t, 0, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Error, "connection reset")
}

func TestRunEmptyBatch(t *testing.T) {
	store := newMemStore()
	runner := newTestRunner(store)

	report := runner.Run(context.Background(), nil)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.Ingested+report.Skipped+report.Failed)
}

func TestSummary(t *testing.T) {
	store := newMemStore()
	runner := newTestRunner(store)
	runner.Run(context.Background(), []extract.ExtractionRecord{record("doc-1"), record("doc-1")})

	counts, err := runner.Summary(context.Background())
	require.NoError(t, err)
	// Replaying the same record duplicates the invoice but not the parties.
	assert.Equal(t, int64(1), counts.Vendors)
	assert.Equal(t, int64(1), counts.Customers)
	assert.Equal(t, int64(2), counts.Invoices)

	store.countsErr = errors.New("relation does not exist")
	_, err = runner.Summary(context.Background())
	assert.Error(t, err)
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "records.json")
	payload := `[
		{"_id": "doc-1", "extractedData": {"llmData": {"vendor": {"value": {}}}}},
		{"metadata": {"docId": "meta-2"}, "extractedData": {"llmData": "garbage"}}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "doc-1", records[0].ID)
	assert.Equal(t, "meta-2", records[1].Metadata.DocID)
	// A malformed llmData decodes; it surfaces later as a skip.
	assert.Nil(t, records[1].Payload())
}

func TestLoadRecordsFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRecords(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read records file")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadRecords(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode records file")
}
