package gem

import (
	"time"

	"github.com/muddasirfaiyaj66/nirapoth-backend-sub002/internal/services"
)

// GemResponse is the materialized balance view for one ledger.
type GemResponse struct {
	CitizenID    uint      `json:"citizen_id"`
	Account      string    `json:"account"`
	Amount       int       `json:"amount"`
	IsRestricted bool      `json:"is_restricted"`
	LastUpdated  time.Time `json:"last_updated"`
}

// PenaltyHistoryResponse carries the raw audit rows plus the per-severity
// aggregation.
type PenaltyHistoryResponse struct {
	CitizenID uint                         `json:"citizen_id"`
	Penalties []PenaltyRecordResponse      `json:"penalties"`
	Breakdown []services.SeverityBreakdown `json:"breakdown"`
}

type PenaltyRecordResponse struct {
	ID          uint      `json:"id"`
	Account     string    `json:"account"`
	Amount      int       `json:"amount"`
	Reason      string    `json:"reason"`
	Severity    string    `json:"severity"`
	ViolationID *uint     `json:"violation_id,omitempty"`
	AppliedBy   string    `json:"applied_by"`
	CreatedAt   time.Time `json:"created_at"`
}
