package uischema

import "github.com/Victor-F-M-A-R/batismo-pix/internal/domain"

const schemaVersion = "v1"

// Build constructs the donation modal schema for a checkout.
func Build(c domain.Checkout, p domain.Payee) UISchema {
	schema := UISchema{
		Version: schemaVersion,
		TierID:  c.Tier.ID,
		State:   string(c.State),
		Components: []Component{
			tierSummary(c.Tier),
			qrImage(c),
			copyCode(c),
			keyFallback(c, p),
		},
	}

	// The copy button always works: it copies the key when there is no payload.
	if c.CopyText != "" {
		label := "Copiar código PIX"
		if c.Payload == "" {
			label = "Copiar chave PIX"
		}
		schema.Actions = append(schema.Actions, Action{
			Type:        ActionCopy,
			Label:       label,
			Value:       c.CopyText,
			SuccessText: "Código PIX copiado com sucesso!",
		})
	}

	return schema
}
