package models

import "time"

type CitizenRole string

const (
	RoleCitizen CitizenRole = "citizen"
	RolePolice  CitizenRole = "police"
	RoleAdmin   CitizenRole = "admin"
)

// Citizen is the owner row every ledger table hangs off. Registration and
// credential handling live in the account service; this backend only needs
// identity and role.
type Citizen struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string      `gorm:"type:varchar(100);not null"`
	NID       string      `gorm:"uniqueIndex;type:varchar(20);not null"` // national ID
	Role      CitizenRole `gorm:"type:varchar(20);not null;default:'citizen'"`
	IsActive  bool        `gorm:"default:true"`
}

// StartingGems returns the grant a freshly created gem account receives.
func (c *Citizen) StartingGems() int {
	switch c.Role {
	case RolePolice:
		return 20
	case RoleCitizen:
		return 10
	default:
		return 0
	}
}
