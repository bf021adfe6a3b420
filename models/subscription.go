package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Subscription struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
	ClientID          uint             `gorm:"not null;index" json:"client_id"`
	Client            Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Title             string           `gorm:"size:255;not null" json:"title"`
	MonthlyFee        decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"monthly_fee"`
	HostingYearlyFee  *decimal.Decimal `gorm:"type:decimal(10,2)" json:"hosting_yearly_fee"`
	HostingValidUntil *time.Time       `json:"hosting_valid_until"`
	Active            bool             `gorm:"default:true" json:"active"`
}

// TableName overrides the table name
func (Subscription) TableName() string {
	return "subscriptions"
}
