package uischema

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
)

const (
	qrPlaceholder   = "Gerando QR Code PIX..."
	codePlaceholder = "Gerando código..."
	scanHint        = "Escaneie no app do seu banco para abrir o pagamento PIX com valor preenchido."
)

// tierSummary builds the always-present header with title and default amount.
func tierSummary(t domain.Tier) Component {
	return Component{
		Type:       ComponentTierSummary,
		Title:      t.Title,
		Priority:   0,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"subtitle":       t.Subtitle,
			"amount":         t.Amount.StringFixed(2),
			"amount_display": FormatBRL(t.Amount),
			"highlight":      t.Highlight,
		},
	}
}

// qrImage shows the rendered code, or a placeholder while none exists.
func qrImage(c domain.Checkout) Component {
	data := map[string]any{
		"alt":  "QR Code PIX " + c.Tier.Title,
		"hint": scanHint,
	}
	if c.QRDataURL != "" {
		data["src"] = c.QRDataURL
	} else {
		data["placeholder"] = qrPlaceholder
	}
	return Component{
		Type:       ComponentQRImage,
		Title:      "QR Code PIX",
		Priority:   10,
		Visibility: VisibilityVisible,
		Data:       data,
	}
}

func copyCode(c domain.Checkout) Component {
	code := c.Payload
	if code == "" {
		code = codePlaceholder
	}
	return Component{
		Type:       ComponentCopyCode,
		Title:      "PIX Copia e Cola (BR Code)",
		Priority:   20,
		Visibility: VisibilityVisible,
		Data: map[string]any{
			"code":      code,
			"monospace": true,
		},
	}
}

// keyFallback lists the raw key. It is the primary path when no payload
// could be built and collapsed otherwise.
func keyFallback(c domain.Checkout, p domain.Payee) Component {
	vis := VisibilityCollapsed
	if c.State == domain.CheckoutUnavailable {
		vis = VisibilityVisible
	}
	return Component{
		Type:       ComponentKeyFallback,
		Title:      "Chave PIX",
		Priority:   30,
		Visibility: vis,
		Data: map[string]any{
			"key":  p.Key,
			"name": p.Name,
		},
	}
}

// FormatBRL renders an amount the way pt-BR shows currency: R$ 1.234,56.
func FormatBRL(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(s, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString("R$ ")
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(cents)
	return b.String()
}
