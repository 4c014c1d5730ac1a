package gem

// ApplyPenaltyRequest applies a bounded gem deduction. Amount zero means
// "use the severity's recommended deduction".
type ApplyPenaltyRequest struct {
	CitizenID   uint   `json:"citizen_id" binding:"required"`
	Account     string `json:"account" binding:"omitempty,oneof=citizen driver"`
	Amount      int    `json:"amount" binding:"omitempty,gt=0"`
	Severity    string `json:"severity" binding:"required,oneof=MINOR MODERATE SERIOUS SEVERE CRITICAL"`
	Reason      string `json:"reason" binding:"required"`
	ViolationID *uint  `json:"violation_id"`
}

// AdjustGemsRequest credits or debits gems outside the penalty path.
type AdjustGemsRequest struct {
	CitizenID uint   `json:"citizen_id" binding:"required"`
	Direction string `json:"direction" binding:"required,oneof=increase decrease"`
	Amount    int    `json:"amount" binding:"required,gt=0"`
}

// SetRestrictionRequest overrides the restriction flag. Unrestricting a
// zero-gem account is downgraded server-side.
type SetRestrictionRequest struct {
	CitizenID  uint  `json:"citizen_id" binding:"required"`
	Restricted *bool `json:"restricted" binding:"required"`
}

type PenaltyResultResponse struct {
	CitizenID      uint `json:"citizen_id"`
	NewBalance     int  `json:"new_balance"`
	WasAlreadyZero bool `json:"was_already_zero"`
	IsRestricted   bool `json:"is_restricted"`
}

type AdjustResultResponse struct {
	CitizenID  uint `json:"citizen_id"`
	NewBalance int  `json:"new_balance"`
}

type RestrictionResponse struct {
	CitizenID    uint `json:"citizen_id"`
	IsRestricted bool `json:"is_restricted"`
}
