package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentConfig struct {
	ID            uint           `gorm:"primarykey"`
	UUID          string         `gorm:"uniqueIndex;type:varchar(36);not null"`
	Name          string         `gorm:"type:varchar(100);not null;default:'Payment Method'"` // Display name
	PaymentMethod string         `gorm:"type:varchar(50);not null"`                           // e.g., "sslcommerz"
	Config        datatypes.JSON `gorm:"type:json;not null"`
	Enable        bool           `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Order statuses for FinePaymentOrder.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// FinePaymentOrder tracks one gateway payment attempt against a debt. The
// gateway callback flips it to paid, which records the journal entry and the
// debt payment in the same transaction.
type FinePaymentOrder struct {
	ID          string  `gorm:"primarykey;type:varchar(32)"` // Order ID
	UserID      uint    `gorm:"index;not null"`
	DebtID      uint    `gorm:"index;not null"`
	Amount      float64 `gorm:"type:decimal(20,2);not null"`
	Status      string  `gorm:"type:varchar(20);default:'pending'"`
	PaymentUUID string  `gorm:"type:varchar(36);index"` // Which payment config was used
	ExternalID  string  `gorm:"type:varchar(64);index"` // Transaction ID from payment gateway
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
