package domain

// CheckoutState tracks how much of a checkout could be produced.
type CheckoutState string

const (
	// CheckoutPending is shown while the payload and QR code are being built.
	CheckoutPending     CheckoutState = "pending"
	CheckoutReady       CheckoutState = "ready"
	CheckoutPayloadOnly CheckoutState = "payload_only"
	CheckoutUnavailable CheckoutState = "unavailable"
)

func (s CheckoutState) Valid() bool {
	switch s {
	case CheckoutPending, CheckoutReady, CheckoutPayloadOnly, CheckoutUnavailable:
		return true
	}
	return false
}
