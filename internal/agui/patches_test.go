package agui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
)

func TestComputePatches(t *testing.T) {
	t.Parallel()
	pending := domain.Checkout{State: domain.CheckoutPending}

	tests := []struct {
		name string
		prev domain.Checkout
		next domain.Checkout
		want []Patch
	}{
		{
			name: "pending to ready adds omitted members",
			prev: pending,
			next: domain.Checkout{State: domain.CheckoutReady, Payload: "P", CopyText: "P", QRDataURL: "data:x"},
			want: []Patch{
				{Op: "replace", Path: "/state", Value: "ready"},
				{Op: "add", Path: "/payload", Value: "P"},
				{Op: "replace", Path: "/copy_text", Value: "P"},
				{Op: "add", Path: "/qr_data_url", Value: "data:x"},
			},
		},
		{
			name: "pending to unavailable adds error",
			prev: pending,
			next: domain.Checkout{State: domain.CheckoutUnavailable, CopyText: "key", Error: "boom"},
			want: []Patch{
				{Op: "replace", Path: "/state", Value: "unavailable"},
				{Op: "replace", Path: "/copy_text", Value: "key"},
				{Op: "add", Path: "/error", Value: "boom"},
			},
		},
		{
			name: "cleared optional member is removed",
			prev: domain.Checkout{State: domain.CheckoutReady, Payload: "P", CopyText: "P", QRDataURL: "data:x"},
			next: domain.Checkout{State: domain.CheckoutPayloadOnly, Payload: "P", CopyText: "P"},
			want: []Patch{
				{Op: "replace", Path: "/state", Value: "payload_only"},
				{Op: "remove", Path: "/qr_data_url"},
			},
		},
		{
			name: "unchanged",
			prev: pending,
			next: pending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, computePatches(tt.prev, tt.next))
		})
	}
}

// Every add or remove targets a member whose presence in the serialized
// previous checkout matches what the op requires.
func TestComputePatches_MatchesSerializedMembers(t *testing.T) {
	t.Parallel()
	pending := domain.Checkout{Tier: domain.Tier{ID: "jaco"}, State: domain.CheckoutPending}
	ready := domain.Checkout{Tier: pending.Tier, State: domain.CheckoutReady, Payload: "P", CopyText: "P", QRDataURL: "data:x"}

	raw, err := json.Marshal(pending)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, p := range computePatches(pending, ready) {
		_, present := doc[p.Path[1:]]
		switch p.Op {
		case "add":
			assert.False(t, present, "add on existing member %s", p.Path)
		case "replace", "remove":
			assert.True(t, present, "%s on missing member %s", p.Op, p.Path)
		}
	}
}
