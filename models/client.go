package models

import (
	"time"

	"gorm.io/gorm"
)

type Client struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	CompanyCode string         `gorm:"size:50" json:"company_code"`
	VATCode     string         `gorm:"size:50" json:"vat_code"`
	Email       string         `gorm:"size:255" json:"email"`
	Address     string         `gorm:"type:text" json:"address"`
	Active      bool           `gorm:"default:true" json:"active"`

	Emails        []ClientEmail  `gorm:"foreignKey:ClientID" json:"emails,omitempty"`
	Subscriptions []Subscription `gorm:"foreignKey:ClientID" json:"subscriptions,omitempty"`
	WorkLogs      []WorkLog      `gorm:"foreignKey:ClientID" json:"work_logs,omitempty"`
}

// TableName overrides the table name
func (Client) TableName() string {
	return "clients"
}

type ClientEmail struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	ClientID  uint           `gorm:"not null;index" json:"client_id"`
	Email     string         `gorm:"size:255;not null" json:"email"`
	EmailType string         `gorm:"size:50;default:'other'" json:"email_type"` // accounting, administration, other
	Active    bool           `gorm:"default:true" json:"active"`
}

// TableName overrides the table name
func (ClientEmail) TableName() string {
	return "client_emails"
}
