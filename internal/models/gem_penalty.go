package models

import "time"

type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeveritySerious  Severity = "SERIOUS"
	SeveritySevere   Severity = "SEVERE"
	SeverityCritical Severity = "CRITICAL"
)

// RecommendedDeduction maps a violation severity to the default gem
// deduction. Callers may override the amount but not the sign.
func RecommendedDeduction(s Severity) int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySerious:
		return 3
	case SeveritySevere:
		return 5
	case SeverityCritical:
		return 10
	default:
		return 0
	}
}

// ValidSeverity reports whether s is one of the known severity levels.
func ValidSeverity(s Severity) bool {
	return RecommendedDeduction(s) > 0
}

// Ledger names for GemPenaltyRecord.Account.
const (
	GemLedgerCitizen = "citizen"
	GemLedgerDriver  = "driver"
)

// GemPenaltyRecord is the immutable audit row written alongside every gem
// deduction. One row per application; never updated.
type GemPenaltyRecord struct {
	ID          uint      `gorm:"primarykey"`
	CreatedAt   time.Time `gorm:"precision:3"`
	CitizenID   uint      `gorm:"index;not null"`
	Account     string    `gorm:"type:varchar(20);not null;default:'citizen'"`
	Amount      int       `gorm:"not null"` // gems actually deducted (post-floor)
	Reason      string    `gorm:"type:text"`
	Severity    Severity  `gorm:"type:varchar(20);index;not null"`
	ViolationID *uint     `gorm:"index"`
	AppliedBy   string    `gorm:"type:varchar(100)"` // username or 'system'
}
