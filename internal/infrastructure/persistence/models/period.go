package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettingModel is the persistence model for a raw key/value setting. The
// period engine stores its delimiter-separated lists here; the value is
// opaque to the database layer.
type SettingModel struct {
	Key       string    `gorm:"primaryKey;type:varchar(100);column:key"`
	Value     string    `gorm:"type:text;not null;default:''"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// InvoiceModel is the persistence model for an invoice row as the period
// engine sees it: the customer, the period bucket, the remaining balance,
// and the status that decides whether the row participates in aggregates.
type InvoiceModel struct {
	ID             int64           `gorm:"primaryKey;autoIncrement"`
	CustomerID     int64           `gorm:"not null;index:idx_invoices_customer_period,priority:1"`
	InvoiceNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	SemesterPeriod string          `gorm:"type:varchar(10);not null;index:idx_invoices_customer_period,priority:2"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         string          `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// Invoice statuses relevant to aggregation. Canceled rows never count
// toward outstanding balances or invoice counts.
const (
	InvoiceStatusOpen     = "open"
	InvoiceStatusPaid     = "paid"
	InvoiceStatusCanceled = "canceled"
)
