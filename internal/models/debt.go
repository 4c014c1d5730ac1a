package models

import "time"

type DebtStatus string

const (
	DebtOutstanding DebtStatus = "OUTSTANDING"
	DebtPartial     DebtStatus = "PARTIAL"
	DebtPaid        DebtStatus = "PAID"
	DebtWaived      DebtStatus = "WAIVED"
)

// OutstandingDebt is a monetary obligation derived from a negative net
// balance. Invariants enforced by the services and repaired by the
// reconciliation job:
//
//  1. PaidAmount <= CurrentAmount
//  2. CurrentAmount == OriginalAmount + LateFees while OUTSTANDING/PARTIAL
//  3. Status == PAID iff PaidAmount >= CurrentAmount
//  4. At most one OUTSTANDING/PARTIAL row per user
//
// Rows are never deleted; WAIVED and PAID rows are kept for audit.
type OutstandingDebt struct {
	ID                   uint       `gorm:"primarykey"`
	UserID               uint       `gorm:"index;not null"`
	OriginalAmount       float64    `gorm:"type:decimal(20,2);not null"`
	CurrentAmount        float64    `gorm:"type:decimal(20,2);not null"`
	PaidAmount           float64    `gorm:"type:decimal(20,2);not null;default:0"`
	LateFees             float64    `gorm:"type:decimal(20,2);not null;default:0"`
	WeeksPastDue         int        `gorm:"not null;default:0"`
	Status               DebtStatus `gorm:"type:varchar(20);index;default:'OUTSTANDING'"`
	DueDate              time.Time  `gorm:"index;not null"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	PaidAt               *time.Time
	LastPenaltyDate      *time.Time
	RelatedTransactionID *uint
	PaymentReference     string `gorm:"type:varchar(100)"`
	Notes                string `gorm:"type:text"`
}

// Remaining is the amount still owed.
func (d *OutstandingDebt) Remaining() float64 {
	return d.CurrentAmount - d.PaidAmount
}

// IsActive reports whether the debt still counts against the user.
func (d *OutstandingDebt) IsActive() bool {
	return d.Status == DebtOutstanding || d.Status == DebtPartial
}
