package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WorkLog struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
	ClientID    uint            `gorm:"not null;index" json:"client_id"`
	Client      Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Billed      bool            `gorm:"default:false;index" json:"billed"`
}

// TableName overrides the table name
func (WorkLog) TableName() string {
	return "work_logs"
}

// Total is the billable amount for this entry.
func (w WorkLog) Total() decimal.Decimal {
	return w.Quantity.Mul(w.UnitPrice)
}
