package debt

import "time"

// DebtSummaryResponse is the aggregation consumed by dashboards: total
// outstanding amount plus the active rows backing it.
type DebtSummaryResponse struct {
	UserID      uint           `json:"user_id"`
	TotalActive float64        `json:"total_active"`
	Debts       []DebtResponse `json:"debts"`
}

type DebtResponse struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"user_id"`
	OriginalAmount   float64    `json:"original_amount"`
	CurrentAmount    float64    `json:"current_amount"`
	PaidAmount       float64    `json:"paid_amount"`
	LateFees         float64    `json:"late_fees"`
	WeeksPastDue     int        `json:"weeks_past_due"`
	Remaining        float64    `json:"remaining"`
	Status           string     `json:"status"`
	DueDate          time.Time  `json:"due_date"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
