package models

import "time"

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportApproved ReportStatus = "APPROVED"
	ReportRejected ReportStatus = "REJECTED"
)

// ViolationReport is the legacy reward/penalty source that predates the
// transaction journal. Reporters earn RewardAmount when a report is
// approved; the accused citizen owes FineAmount. Balance derivation takes
// max(journal, reports) per side so the two subsystems never double count.
type ViolationReport struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ReporterID   uint         `gorm:"index;not null"`
	AccusedID    uint         `gorm:"index;not null"`
	Description  string       `gorm:"type:text"`
	Status       ReportStatus `gorm:"type:varchar(20);index;default:'PENDING'"`
	RewardAmount float64      `gorm:"type:decimal(20,2);not null;default:0"`
	FineAmount   float64      `gorm:"type:decimal(20,2);not null;default:0"`
	ReviewedBy   string       `gorm:"type:varchar(100)"`
	ReviewedAt   *time.Time
}
