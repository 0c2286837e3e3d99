package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LineItem is one position on an invoice. Sachkonto and BUSchluessel are the
// DATEV ledger-account and posting-key codes carried through from extraction.
// VATRate and VATAmount are reserved columns, always null at creation.
type LineItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Description  *string   `json:"description,omitempty"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	TotalPrice   float64   `json:"total_price"`
	Sachkonto    *string   `json:"sachkonto,omitempty"`
	BUSchluessel *string   `gorm:"column:buschluessel" json:"buschluessel,omitempty"`
	VATRate      *float64  `gorm:"column:vat_rate" json:"vat_rate,omitempty"`
	VATAmount    *float64  `gorm:"column:vat_amount" json:"vat_amount,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (li *LineItem) BeforeCreate(_ *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}
