package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice types.
const (
	InvoiceTypeMonthly = "monthly"
	InvoiceTypeHosting = "hosting"
	InvoiceTypeManual  = "manual"
)

// Invoice is the record of a billing event. It is immutable once issued,
// so it intentionally has no soft-delete column: a force regeneration
// removes the row for real and the freed number can be reallocated.
type Invoice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Number      string          `gorm:"uniqueIndex;size:50;not null" json:"number"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	Client      Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	InvoiceType string          `gorm:"size:20;not null;index" json:"invoice_type"` // monthly, hosting, manual
	PeriodFrom  time.Time       `gorm:"not null" json:"period_from"`
	PeriodTo    time.Time       `gorm:"not null;index" json:"period_to"`
	IssuedDate  time.Time       `gorm:"not null" json:"issued_date"`
	DueDate     time.Time       `gorm:"not null" json:"due_date"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_amount"`
	VATRate     decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"vat_rate"`
	VATAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"vat_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Paid        bool            `gorm:"default:false" json:"paid"`
	PDFPath     string          `gorm:"size:500" json:"pdf_path"`

	Lines []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// TableName overrides the table name
func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	// Total is stored, not derived at read time, so historical invoices
	// keep their amounts if pricing logic ever changes.
	Total decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
}

// TableName overrides the table name
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}
