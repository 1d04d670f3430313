package models

// CheckoutRequest describes the parameters for an external checkout session.
type CheckoutRequest struct {
	AppointmentID string
	Amount        float64
	Currency      string
	Description   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the provider's handle for an initiated payment.
type CheckoutSession struct {
	Reference string `json:"reference"` // provider session/transaction id
	URL       string `json:"url"`       // hosted checkout page
}

// PaymentOutcome is the terminal result reported by the payment provider.
type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "succeeded"
	PaymentFailed    PaymentOutcome = "failed"
)

// OutcomeSource identifies where a payment outcome report came from. Only
// provider-authenticated sources may drive reconciliation; a bare client
// claim is never sufficient.
type OutcomeSource string

const (
	// SourceProviderWebhook is a signature-verified provider callback.
	SourceProviderWebhook OutcomeSource = "provider_webhook"
	// SourceServerCheck is a server-to-server status query against the provider.
	SourceServerCheck OutcomeSource = "server_check"
	// SourceClientClaim is an unauthenticated client assertion.
	SourceClientClaim OutcomeSource = "client_claim"
)

// Trusted reports whether outcomes from this source may be applied.
func (s OutcomeSource) Trusted() bool {
	return s == SourceProviderWebhook || s == SourceServerCheck
}
