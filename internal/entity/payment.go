package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment holds the payment terms of an invoice. At most one per invoice,
// created only when the source record carries a payment section.
type Payment struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"invoice_id"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	BankAccountNumber  *string    `json:"bank_account_number,omitempty"`
	DiscountedTotal    *float64   `json:"discounted_total,omitempty"`
	PaymentTerms       *string    `json:"payment_terms,omitempty"`
	NetDays            *int       `json:"net_days,omitempty"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
