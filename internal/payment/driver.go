package payment

// Driver is the interface every payment gateway implements.
type Driver interface {
	// SetConfig applies the stored gateway configuration (credentials,
	// endpoint) before any other call.
	SetConfig(config map[string]interface{}) error

	// Pay initiates a payment for an order and returns the redirect URL the
	// payer is sent to. notifyURL is the fully built callback endpoint.
	Pay(orderID string, amount float64, notifyURL string, returnURL string, params map[string]interface{}) (string, error)

	// Notify verifies a gateway callback.
	// Returns: isValid, orderID, externalID, error
	Notify(params map[string]interface{}) (bool, string, string, error)
}
