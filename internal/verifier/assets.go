// Package verifier checks exported donation assets after publishing: every
// manifest entry must point at a payload that still verifies and a readable
// PNG, and the manifest's amount and checksum must match the payload.
package verifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"time"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/publish"
)

// Problem is one failed check for a tier.
type Problem struct {
	TierID  string `json:"tier_id"`
	Message string `json:"message"`
}

// Report summarises a verification run.
type Report struct {
	VerifiedAt string    `json:"verified_at"`
	Checked    int       `json:"checked"`
	Problems   []Problem `json:"problems,omitempty"`
}

// OK reports whether every tier passed.
func (r Report) OK() bool { return len(r.Problems) == 0 }

// VerifyExport reads manifest.json from fsys and checks each tier's assets.
// A missing or unreadable manifest is an error; per-tier failures are
// collected in the report.
func VerifyExport(fsys fs.FS) (Report, error) {
	raw, err := fs.ReadFile(fsys, publish.ManifestName)
	if err != nil {
		return Report{}, fmt.Errorf("verifier: read manifest: %w", err)
	}
	var m publish.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return Report{}, fmt.Errorf("verifier: decode manifest: %w", err)
	}
	if len(m.Tiers) == 0 {
		return Report{}, errors.New("verifier: manifest lists no tiers")
	}

	report := Report{VerifiedAt: time.Now().UTC().Format(time.RFC3339)}
	for _, entry := range m.Tiers {
		report.Checked++
		for _, msg := range checkEntry(fsys, entry) {
			report.Problems = append(report.Problems, Problem{TierID: entry.TierID, Message: msg})
		}
	}
	return report, nil
}

func checkEntry(fsys fs.FS, entry publish.ManifestEntry) []string {
	var problems []string

	payload, err := fs.ReadFile(fsys, entry.PayloadFile)
	if err != nil {
		problems = append(problems, fmt.Sprintf("payload file: %v", err))
	} else if d, err := pix.Decode(string(payload)); err != nil {
		problems = append(problems, fmt.Sprintf("payload: %v", err))
	} else {
		if d.Checksum != entry.Checksum {
			problems = append(problems, fmt.Sprintf("checksum %s does not match manifest %s", d.Checksum, entry.Checksum))
		}
		if want := entry.Amount.StringFixed(2); d.Amount != want {
			problems = append(problems, fmt.Sprintf("amount %s does not match manifest %s", d.Amount, want))
		}
	}

	img, err := fs.ReadFile(fsys, entry.QRFile)
	if err != nil {
		problems = append(problems, fmt.Sprintf("qr file: %v", err))
	} else if cfg, err := png.DecodeConfig(bytes.NewReader(img)); err != nil {
		problems = append(problems, fmt.Sprintf("qr image: %v", err))
	} else if cfg.Width != cfg.Height {
		problems = append(problems, fmt.Sprintf("qr image is not square (%dx%d)", cfg.Width, cfg.Height))
	}

	return problems
}
