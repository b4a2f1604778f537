package domain

import "testing"

func TestCheckoutStateValid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		state CheckoutState
		valid bool
	}{
		{name: "pending", state: CheckoutPending, valid: true},
		{name: "ready", state: CheckoutReady, valid: true},
		{name: "payload_only", state: CheckoutPayloadOnly, valid: true},
		{name: "unavailable", state: CheckoutUnavailable, valid: true},
		{name: "bogus", state: CheckoutState("bogus"), valid: false},
		{name: "empty", state: CheckoutState(""), valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.state.Valid(); got != tt.valid {
				t.Errorf("CheckoutState(%q).Valid() = %v, want %v", tt.state, got, tt.valid)
			}
		})
	}
}
