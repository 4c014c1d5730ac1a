package models

import "time"

// DrivingLicense carries the driving privilege tied to the driver gem
// ledger. Restrictions and endorsements are ordered string lists persisted
// as JSON (StringList handles the boundary).
type DrivingLicense struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CitizenID    uint       `gorm:"uniqueIndex;not null"`
	LicenseNo    string     `gorm:"uniqueIndex;type:varchar(30);not null"`
	Class        string     `gorm:"type:varchar(20);not null"` // e.g. "light", "heavy", "motorcycle"
	IssuedAt     time.Time  `gorm:"not null"`
	ExpiresAt    time.Time  `gorm:"not null"`
	Restrictions StringList `gorm:"type:json"`
	Endorsements StringList `gorm:"type:json"`
	IsSuspended  bool       `gorm:"default:false"`
}
