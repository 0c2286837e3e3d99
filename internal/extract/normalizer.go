package extract

import (
	"context"
	"log/slog"

	"github.com/flowbit/invoice-analytics/internal/entity"
	"github.com/flowbit/invoice-analytics/internal/repository"
)

// SkipReason says why a record was not ingestible.
type SkipReason string

const (
	SkipMissingPayload    SkipReason = "missing llmData payload"
	SkipMissingIdentifier SkipReason = "no record identifier"
	SkipMissingVendor     SkipReason = "no vendor section"
)

// SkippedError marks a record that cannot be ingested. Skips are local to the
// record and never abort a batch.
type SkippedError struct {
	Reason SkipReason
}

func (e *SkippedError) Error() string {
	return "record skipped: " + string(e.Reason)
}

// Result is the entity graph persisted for one ingested record.
type Result struct {
	Vendor    *entity.Vendor
	Customer  *entity.Customer
	Invoice   *entity.Invoice
	LineItems []*entity.LineItem
	Payment   *entity.Payment
}

// Normalizer maps one extraction record onto the relational schema. Vendor
// and Customer are upserted by their synthesized external IDs; Invoice, line
// items and the optional Payment are created unconditionally, so replaying a
// record duplicates those rows.
type Normalizer struct {
	vendors   repository.VendorRepository
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	lineItems repository.LineItemRepository
	payments  repository.PaymentRepository
	logger    *slog.Logger
}

func NewNormalizer(
	vendors repository.VendorRepository,
	customers repository.CustomerRepository,
	invoices repository.InvoiceRepository,
	lineItems repository.LineItemRepository,
	payments repository.PaymentRepository,
	logger *slog.Logger,
) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		vendors:   vendors,
		customers: customers,
		invoices:  invoices,
		payments:  payments,
		lineItems: lineItems,
		logger:    logger,
	}
}

// Ingest persists the entity graph for one record. It returns a *SkippedError
// when the record is not ingestible (missing payload, then missing
// identifiers, then missing vendor section, checked in that order); any other
// error is a persistence failure for this record only.
func (n *Normalizer) Ingest(ctx context.Context, rec *ExtractionRecord) (*Result, error) {
	data := rec.Payload()
	if data == nil {
		return nil, &SkippedError{Reason: SkipMissingPayload}
	}

	recordID, ok := RecordID(rec)
	if !ok {
		return nil, &SkippedError{Reason: SkipMissingIdentifier}
	}

	vendorSection, ok := data["vendor"]
	if !ok || vendorSection == nil {
		return nil, &SkippedError{Reason: SkipMissingVendor}
	}

	vendor, err := n.upsertVendor(ctx, recordID, vendorSection)
	if err != nil {
		return nil, err
	}

	customer, err := n.upsertCustomer(ctx, recordID, data["customer"])
	if err != nil {
		return nil, err
	}

	invoice, err := n.createInvoice(ctx, vendor, customer, data)
	if err != nil {
		return nil, err
	}

	items, err := n.createLineItems(ctx, invoice, data)
	if err != nil {
		return nil, err
	}

	payment, err := n.createPayment(ctx, invoice, data)
	if err != nil {
		return nil, err
	}

	n.logger.Info("record ingested",
		"record_id", recordID,
		"vendor", vendor.Name,
		"invoice_id", invoice.ID,
		"line_items", len(items),
		"has_payment", payment != nil)

	return &Result{
		Vendor:    vendor,
		Customer:  customer,
		Invoice:   invoice,
		LineItems: items,
		Payment:   payment,
	}, nil
}

func (n *Normalizer) upsertVendor(ctx context.Context, recordID string, section any) (*entity.Vendor, error) {
	fields := Unwrap(section, nil)
	return n.vendors.Upsert(ctx, &entity.Vendor{
		ExternalID: VendorExternalID(recordID),
		Name:       CoerceStringDefault(Field(fields, "vendorName"), "Unknown Vendor"),
		TaxID:      CoerceString(Field(fields, "vendorTaxId")),
		Address:    CoerceString(Field(fields, "vendorAddress")),
	})
}

func (n *Normalizer) upsertCustomer(ctx context.Context, recordID string, section any) (*entity.Customer, error) {
	fields := Unwrap(section, nil)
	return n.customers.Upsert(ctx, &entity.Customer{
		ExternalID: CustomerExternalID(recordID),
		Name:       CoerceStringDefault(Field(fields, "customerName"), "Unknown Customer"),
		Address:    CoerceString(Field(fields, "customerAddress")),
	})
}

func (n *Normalizer) createInvoice(ctx context.Context, vendor *entity.Vendor, customer *entity.Customer, data map[string]any) (*entity.Invoice, error) {
	invoiceFields := Unwrap(data["invoice"], nil)
	summaryFields := Unwrap(data["summary"], nil)

	return n.invoices.Create(ctx, &entity.Invoice{
		VendorID:     vendor.ID,
		CustomerID:   customer.ID,
		InvoiceCode:  CoerceString(Field(invoiceFields, "invoiceId")),
		InvoiceDate:  CoerceDate(Field(invoiceFields, "invoiceDate")),
		DeliveryDate: CoerceDate(Field(invoiceFields, "deliveryDate")),
		DocumentType: CoerceStringDefault(Field(summaryFields, "documentType"), "invoice"),
		SubTotal:     CoerceFloat(Field(summaryFields, "subTotal")),
		TotalTax:     CoerceFloat(Field(summaryFields, "totalTax")),
		TotalAmount:  CoerceFloat(Field(summaryFields, "invoiceTotal")),
		Currency:     CoerceStringDefault(Field(summaryFields, "currencySymbol"), "EUR"),
	})
}

func (n *Normalizer) createLineItems(ctx context.Context, invoice *entity.Invoice, data map[string]any) ([]*entity.LineItem, error) {
	// Items live one container deeper: lineItems.value.items.value.
	itemsValue := Field(Unwrap(data["lineItems"], nil), "items")
	raw, ok := itemsValue.([]any)
	if !ok {
		return nil, nil
	}

	items := make([]*entity.LineItem, 0, len(raw))
	for _, item := range raw {
		items = append(items, &entity.LineItem{
			InvoiceID:    invoice.ID,
			Description:  CoerceString(Field(item, "description")),
			Quantity:     CoerceFloat(Field(item, "quantity")),
			UnitPrice:    CoerceFloat(Field(item, "unitPrice")),
			TotalPrice:   CoerceFloat(Field(item, "totalPrice")),
			Sachkonto:    CoerceString(Field(item, "Sachkonto")),
			BUSchluessel: CoerceString(Field(item, "BUSchluessel")),
			// VAT rate and amount are reserved, always null at creation.
		})
	}
	return n.lineItems.CreateAll(ctx, items)
}

func (n *Normalizer) createPayment(ctx context.Context, invoice *entity.Invoice, data map[string]any) (*entity.Payment, error) {
	fields := Unwrap(data["payment"], nil)
	if fields == nil {
		return nil, nil
	}
	return n.payments.Create(ctx, &entity.Payment{
		InvoiceID:          invoice.ID,
		DueDate:            CoerceDate(Field(fields, "dueDate")),
		BankAccountNumber:  CoerceString(Field(fields, "bankAccountNumber")),
		DiscountedTotal:    CoerceFloatPtr(Field(fields, "discountedTotal")),
		PaymentTerms:       CoerceString(Field(fields, "paymentTerms")),
		NetDays:            CoerceIntPtr(Field(fields, "netDays")),
		DiscountPercentage: CoerceFloatPtr(Field(fields, "discountPercentage")),
	})
}
