package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/uischema"
)

const stepCheckout = "checkout"

// CheckoutSource builds checkouts for the stream.
type CheckoutSource interface {
	Payee() domain.Payee
	Tier(ctx context.Context, id string) (domain.Tier, error)
	Checkout(ctx context.Context, tierID string) (domain.Checkout, error)
}

// StreamConfig controls SSE stream behavior.
type StreamConfig struct {
	// MaxDuration bounds the whole stream, checkout generation included.
	MaxDuration time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() StreamConfig {
	return StreamConfig{MaxDuration: 30 * time.Second}
}

// StreamHandler serves a tier checkout as SSE events: a pending snapshot with
// placeholders first, then a delta carrying the payload and QR code.
func StreamHandler(src CheckoutSource, cfg StreamConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID := r.PathValue("id")
		if tierID == "" {
			http.Error(w, "tier id required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx, cancel := context.WithTimeout(r.Context(), cfg.MaxDuration)
		defer cancel()

		emit := func(t EventType, data any) {
			writeSSE(w, flusher, Event{Type: t, Timestamp: time.Now().UTC(), TierID: tierID, Data: data})
		}

		emit(EventRunStarted, nil)

		tier, err := src.Tier(ctx, tierID)
		if err != nil {
			emit(EventRunError, ErrorData{Message: err.Error()})
			return
		}

		payee := src.Payee()
		pending := domain.Checkout{Tier: tier, State: domain.CheckoutPending}
		emit(EventStateSnapshot, StateSnapshotData{
			State:    string(pending.State),
			Checkout: pending,
			UISchema: uischema.Build(pending, payee),
		})

		emit(EventStepStarted, StepData{Step: stepCheckout})
		c, err := src.Checkout(ctx, tierID)
		if err != nil {
			emit(EventRunError, ErrorData{Message: err.Error()})
			return
		}
		emit(EventStepFinished, StepData{Step: stepCheckout})

		emit(EventStateDelta, StateDeltaData{
			State:    string(c.State),
			Patches:  computePatches(pending, c),
			UISchema: uischema.Build(c, payee),
		})
		emit(EventRunFinished, FinishedData{State: string(c.State)})
	}
}

// computePatches lists the checkout fields that changed between snapshots.
// Members that domain.Checkout omits when empty are absent from the previous
// document, so they are added or removed rather than replaced.
func computePatches(prev, next domain.Checkout) []Patch {
	var patches []Patch
	diff := func(path string, before, after string, omitEmpty bool) {
		switch {
		case before == after:
		case omitEmpty && before == "":
			patches = append(patches, Patch{Op: "add", Path: path, Value: after})
		case omitEmpty && after == "":
			patches = append(patches, Patch{Op: "remove", Path: path})
		default:
			patches = append(patches, Patch{Op: "replace", Path: path, Value: after})
		}
	}
	diff("/state", string(prev.State), string(next.State), false)
	diff("/payload", prev.Payload, next.Payload, true)
	diff("/copy_text", prev.CopyText, next.CopyText, false)
	diff("/qr_data_url", prev.QRDataURL, next.QRDataURL, true)
	diff("/error", prev.Error, next.Error, true)
	return patches
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
