package domain

import (
	"github.com/shopspring/decimal"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
)

// Payee identifies who receives the donations.
type Payee struct {
	Key  string `json:"key" yaml:"key"`
	Name string `json:"name" yaml:"name"`
	City string `json:"city" yaml:"city"`
}

// Tier is one fixed donation option offered on the page.
type Tier struct {
	ID        string          `json:"id" yaml:"id"`
	Title     string          `json:"title" yaml:"title"`
	Subtitle  string          `json:"subtitle,omitempty" yaml:"subtitle"`
	Amount    decimal.Decimal `json:"amount" yaml:"amount"`
	TxID      string          `json:"txid" yaml:"txid"`
	Highlight bool            `json:"highlight,omitempty" yaml:"highlight"`
	Concept   string          `json:"concept,omitempty" yaml:"concept"`
	CTA       string          `json:"cta,omitempty" yaml:"cta"`
}

// PaymentRequest combines the payee with this tier. The tier title doubles as
// the payment description shown by the payer's bank.
func (t Tier) PaymentRequest(p Payee) pix.PaymentRequest {
	return pix.PaymentRequest{
		Key:         p.Key,
		Name:        p.Name,
		City:        p.City,
		Amount:      t.Amount.InexactFloat64(),
		TxID:        t.TxID,
		Description: t.Title,
	}
}

// Checkout is everything the donation modal needs for one tier.
type Checkout struct {
	Tier  Tier          `json:"tier"`
	State CheckoutState `json:"state"`
	// Payload is empty unless State is ready or payload_only.
	Payload string `json:"payload,omitempty"`
	// CopyText is what the copy button puts on the clipboard: the payload
	// when there is one, otherwise the raw key.
	CopyText  string `json:"copy_text"`
	QRDataURL string `json:"qr_data_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Ready reports whether both the payload and its QR image are available.
func (c Checkout) Ready() bool {
	return c.State == CheckoutReady
}
