package payment

// CreateOrderRequest opens a gateway payment order against a debt.
type CreateOrderRequest struct {
	UserID uint    `json:"user_id" binding:"required"`
	DebtID uint    `json:"debt_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Method string  `json:"method" binding:"required"` // payment config UUID
}

// JumpRequest asks for the gateway redirect URL of a pending order.
type JumpRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Channel   string `json:"channel"`
	ReturnURL string `json:"return_url"`
}

type PaymentMethodResponse struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Method string `json:"method"`
}

type OrderResponse struct {
	OrderID string  `json:"order_id"`
	UserID  uint    `json:"user_id"`
	DebtID  uint    `json:"debt_id"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
}

type JumpResponse struct {
	URL string `json:"url"`
}
