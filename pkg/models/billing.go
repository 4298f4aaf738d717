package models

// BillingWebhookPayload represents the incoming JSON payload from the
// payment processor. Only the event types the reconciliation handler knows
// about are acted on; everything else is acknowledged and ignored.
type BillingWebhookPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SubscriptionID   string `json:"subscription_id"`
		ProfileID        string `json:"profile_id"`
		Status           string `json:"status,omitempty"`
		CurrentPeriodEnd string `json:"current_period_end,omitempty"` // RFC3339
	} `json:"data"`
}

// Billing event types consumed by the webhook handler
const (
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionCanceled  = "subscription.canceled"
	EventPaymentConfirmed      = "payment.confirmed"
	EventPaymentFailed         = "payment.failed"
)
