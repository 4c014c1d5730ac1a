package models

import "time"

// CitizenGem is the materialized gem balance for a citizen. It is a cache
// over the penalty/reward history: if it is ever corrupted it can be rebuilt
// by replaying GemPenaltyRecord rows. Amount never goes below zero, and the
// restriction flag is a pure function of the amount.
type CitizenGem struct {
	ID           uint `gorm:"primarykey"`
	CitizenID    uint `gorm:"uniqueIndex;not null"`
	Amount       int  `gorm:"not null;default:0"`
	IsRestricted bool `gorm:"not null;default:false"`
	LastUpdated  time.Time
}

// DriverGem mirrors CitizenGem for the driver ledger. Kept as a separate
// table because a citizen may hold both roles with independent balances.
type DriverGem struct {
	ID           uint `gorm:"primarykey"`
	CitizenID    uint `gorm:"uniqueIndex;not null"`
	Amount       int  `gorm:"not null;default:0"`
	IsRestricted bool `gorm:"not null;default:false"`
	LastUpdated  time.Time
}
