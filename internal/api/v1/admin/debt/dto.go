package debt

// CreateDebtRequest opens a new outstanding debt for a user.
type CreateDebtRequest struct {
	UserID uint    `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// RecordPaymentRequest records an out-of-band payment against a debt,
// e.g. cash collected at a station counter.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference"`
}

// WaiveDebtRequest forgives whatever is still owed.
type WaiveDebtRequest struct {
	Notes string `json:"notes"`
}

// CheckBalanceRequest triggers the negative-balance reconciliation for
// a single user.
type CheckBalanceRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}
