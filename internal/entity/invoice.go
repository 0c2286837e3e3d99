package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice is one normalized invoice document. Invoices are created
// unconditionally per ingested record; re-ingesting a record produces a new
// row (Vendor/Customer are the only upserted entities).
type Invoice struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	VendorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"vendor_id"`
	CustomerID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	InvoiceCode  *string    `json:"invoice_code,omitempty"`
	InvoiceDate  *time.Time `gorm:"index" json:"invoice_date,omitempty"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
	DocumentType string     `gorm:"not null;default:invoice" json:"document_type"`
	SubTotal     float64    `json:"sub_total"`
	TotalTax     float64    `json:"total_tax"`
	TotalAmount  float64    `json:"total_amount"`
	Currency     string     `gorm:"not null;default:EUR" json:"currency"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Vendor    *Vendor    `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Customer  *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	LineItems []LineItem `gorm:"foreignKey:InvoiceID" json:"line_items,omitempty"`
	Payment   *Payment   `gorm:"foreignKey:InvoiceID" json:"payment,omitempty"`
}

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
