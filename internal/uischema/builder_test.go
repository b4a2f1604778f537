package uischema_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/uischema"
)

const payload = "00020101021126570014BR.GOV.BCB.PIX0114+55119650403420217A SEMENTE DE JACO52040000530398654047.775802BR5916FRATERNIDADE LUZ6009SAO PAULO62110507JACO77763042D4A"

func payee() domain.Payee {
	return domain.Payee{Key: "+5511965040342", Name: "Fraternidade Luz", City: "Sao Paulo"}
}

func jacoTier() domain.Tier {
	return domain.Tier{
		ID:       "jaco",
		Title:    "A Semente de Jacó",
		Subtitle: "O Início",
		Amount:   decimal.RequireFromString("7.77"),
		TxID:     "JACO777",
	}
}

func TestBuild_Ready(t *testing.T) {
	c := domain.Checkout{
		Tier:      jacoTier(),
		State:     domain.CheckoutReady,
		Payload:   payload,
		CopyText:  payload,
		QRDataURL: "data:image/png;base64,AAAA",
	}

	schema := uischema.Build(c, payee())
	assert.Equal(t, "v1", schema.Version)
	assert.Equal(t, "jaco", schema.TierID)
	assert.Equal(t, "ready", schema.State)
	require.Len(t, schema.Components, 4)
	assert.Equal(t, uischema.ComponentTierSummary, schema.Components[0].Type)
	assert.Equal(t, "R$ 7,77", schema.Components[0].Data["amount_display"])
	assert.Equal(t, uischema.ComponentQRImage, schema.Components[1].Type)
	assert.Equal(t, "data:image/png;base64,AAAA", schema.Components[1].Data["src"])
	assert.NotContains(t, schema.Components[1].Data, "placeholder")
	assert.Equal(t, uischema.ComponentCopyCode, schema.Components[2].Type)
	assert.Equal(t, "PIX Copia e Cola (BR Code)", schema.Components[2].Title)
	assert.Equal(t, payload, schema.Components[2].Data["code"])
	assert.Equal(t, uischema.VisibilityCollapsed, schema.Components[3].Visibility)

	require.Len(t, schema.Actions, 1)
	assert.Equal(t, uischema.ActionCopy, schema.Actions[0].Type)
	assert.Equal(t, "Copiar código PIX", schema.Actions[0].Label)
	assert.Equal(t, payload, schema.Actions[0].Value)
}

func TestBuild_PayloadOnly_ShowsQRPlaceholder(t *testing.T) {
	c := domain.Checkout{
		Tier:     jacoTier(),
		State:    domain.CheckoutPayloadOnly,
		Payload:  payload,
		CopyText: payload,
	}

	schema := uischema.Build(c, payee())
	assert.Equal(t, "Gerando QR Code PIX...", schema.Components[1].Data["placeholder"])
	assert.NotContains(t, schema.Components[1].Data, "src")
	assert.Equal(t, payload, schema.Actions[0].Value)
}

func TestBuild_Unavailable_FallsBackToKey(t *testing.T) {
	c := domain.Checkout{
		Tier:     jacoTier(),
		State:    domain.CheckoutUnavailable,
		CopyText: "+5511965040342",
	}

	schema := uischema.Build(c, payee())
	assert.Equal(t, "Gerando código...", schema.Components[2].Data["code"])
	assert.Equal(t, uischema.VisibilityVisible, schema.Components[3].Visibility)
	assert.Equal(t, "+5511965040342", schema.Components[3].Data["key"])
	require.Len(t, schema.Actions, 1)
	assert.Equal(t, "Copiar chave PIX", schema.Actions[0].Label)
	assert.Equal(t, "+5511965040342", schema.Actions[0].Value)
}

func TestBuild_NoCopyTextNoAction(t *testing.T) {
	schema := uischema.Build(domain.Checkout{Tier: jacoTier(), State: domain.CheckoutUnavailable}, domain.Payee{})
	assert.Empty(t, schema.Actions)
}

func TestBuild_JSONShape(t *testing.T) {
	c := domain.Checkout{Tier: jacoTier(), State: domain.CheckoutReady, Payload: payload, CopyText: payload}
	b, err := json.Marshal(uischema.Build(c, payee()))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, key := range []string{"ui_schema_version", "tier_id", "state", "components", "actions"} {
		assert.Contains(t, m, key)
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7.77", "R$ 7,77"},
		{"77.77", "R$ 77,77"},
		{"318", "R$ 318,00"},
		{"1234.5", "R$ 1.234,50"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"0", "R$ 0,00"},
		{"-12.3", "-R$ 12,30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, uischema.FormatBRL(decimal.RequireFromString(tt.in)), tt.in)
	}
}
