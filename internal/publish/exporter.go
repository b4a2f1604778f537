package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
)

const (
	defaultConcurrency = 4
	ManifestName       = "manifest.json"
)

// Source is the donation service surface the exporter reads from.
type Source interface {
	Payee() domain.Payee
	QROptions() qr.RenderOptions
	Tiers(ctx context.Context) []domain.Tier
	Payload(ctx context.Context, tierID string) (string, error)
	QRCode(ctx context.Context, tierID string, opts qr.RenderOptions) ([]byte, error)
}

// Manifest describes one export run.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	PayeeName   string          `json:"payee_name,omitempty"`
	Tiers       []ManifestEntry `json:"tiers"`
}

// ManifestEntry points at the assets written for one tier.
type ManifestEntry struct {
	TierID      string          `json:"tier_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	TxID        string          `json:"txid"`
	PayloadFile string          `json:"payload_file"`
	QRFile      string          `json:"qr_file"`
	Checksum    string          `json:"checksum"`
}

// Exporter renders every tier and writes its assets to a Sink.
type Exporter struct {
	Source      Source
	Sink        Sink
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Export writes <tier>.txt and <tier>.png for every tier, then manifest.json.
// The manifest is only written when every tier succeeded.
func (e *Exporter) Export(ctx context.Context) (Manifest, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := e.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	tiers := e.Source.Tiers(ctx)
	opts := e.Source.QROptions()
	entries := make([]ManifestEntry, len(tiers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range tiers {
		g.Go(func() error {
			entry, err := e.exportTier(gctx, t, opts)
			if err != nil {
				return fmt.Errorf("publish: tier %s: %w", t.ID, err)
			}
			entries[i] = entry
			logger.Debug("tier exported", "tier", t.ID, "checksum", entry.Checksum)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		GeneratedAt: now().UTC(),
		PayeeName:   e.Source.Payee().Name,
		Tiers:       entries,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, fmt.Errorf("publish: encode manifest: %w", err)
	}
	if err := e.Sink.Put(ctx, ManifestName, "application/json", data); err != nil {
		return Manifest{}, err
	}
	logger.Info("export complete", "tiers", len(entries))
	return m, nil
}

func (e *Exporter) exportTier(ctx context.Context, t domain.Tier, opts qr.RenderOptions) (ManifestEntry, error) {
	payload, err := e.Source.Payload(ctx, t.ID)
	if err != nil {
		return ManifestEntry{}, err
	}
	png, err := e.Source.QRCode(ctx, t.ID, opts)
	if err != nil {
		return ManifestEntry{}, err
	}

	entry := ManifestEntry{
		TierID:      t.ID,
		Title:       t.Title,
		Amount:      t.Amount,
		TxID:        t.TxID,
		PayloadFile: t.ID + ".txt",
		QRFile:      t.ID + ".png",
		Checksum:    payload[len(payload)-4:],
	}
	if err := e.Sink.Put(ctx, entry.PayloadFile, "text/plain; charset=utf-8", []byte(payload)); err != nil {
		return ManifestEntry{}, err
	}
	if err := e.Sink.Put(ctx, entry.QRFile, "image/png", png); err != nil {
		return ManifestEntry{}, err
	}
	return entry, nil
}
