// Package mcpserver exposes donation tiers and PIX payload tooling via MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/domain"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
)

// Service is the donation behaviour the tools call into.
type Service interface {
	Tiers(ctx context.Context) []domain.Tier
	Checkout(ctx context.Context, tierID string) (domain.Checkout, error)
	Encode(ctx context.Context, req pix.PaymentRequest) (string, error)
	Verify(ctx context.Context, payload string) (*pix.Decoded, error)
}

// RegisterTools registers all PIX MCP tools on the given server.
func RegisterTools(server *mcp.Server, svc Service) {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_tiers",
			Description: "List the donation tiers with title, amount and transaction id",
		},
		listTiersHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_tier_checkout",
			Description: "Get the PIX copy-and-paste payload for a donation tier, optionally with its QR image as a data URL",
		},
		getTierCheckoutHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "build_pix_payload",
			Description: "Build a static PIX BR-Code payload for a key and amount",
		},
		buildPayloadHandler(svc),
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "verify_pix_payload",
			Description: "Check a PIX BR-Code checksum and decode its fields",
		},
		verifyPayloadHandler(svc),
	)
}

type listTiersInput struct{}

func listTiersHandler(svc Service) mcp.ToolHandlerFor[listTiersInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ listTiersInput) (*mcp.CallToolResult, any, error) {
		return textResult(svc.Tiers(ctx))
	}
}

type checkoutInput struct {
	TierID    string `json:"tier_id" jsonschema:"tier id as returned by list_tiers"`
	IncludeQR bool   `json:"include_qr,omitempty" jsonschema:"include the QR image as a base64 PNG data URL"`
}

func getTierCheckoutHandler(svc Service) mcp.ToolHandlerFor[checkoutInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input checkoutInput) (*mcp.CallToolResult, any, error) {
		if input.TierID == "" {
			return errorResult("tier_id is required"), nil, nil
		}

		c, err := svc.Checkout(ctx, input.TierID)
		if errors.Is(err, donation.ErrTierNotFound) {
			return errorResult(err.Error()), nil, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("get_tier_checkout: %w", err)
		}
		if !input.IncludeQR {
			c.QRDataURL = ""
		}
		return textResult(c)
	}
}

type buildPayloadInput struct {
	Key         string  `json:"key" jsonschema:"PIX key: phone, e-mail, CPF/CNPJ or random key"`
	Amount      float64 `json:"amount" jsonschema:"amount in BRL, rounded to cents"`
	Name        string  `json:"name,omitempty" jsonschema:"merchant name, defaults to the configured payee"`
	City        string  `json:"city,omitempty" jsonschema:"merchant city, defaults to the configured payee"`
	TxID        string  `json:"txid,omitempty"`
	Description string  `json:"description,omitempty"`
}

func buildPayloadHandler(svc Service) mcp.ToolHandlerFor[buildPayloadInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input buildPayloadInput) (*mcp.CallToolResult, any, error) {
		payload, err := svc.Encode(ctx, pix.PaymentRequest{
			Key:         input.Key,
			Name:        input.Name,
			City:        input.City,
			Amount:      input.Amount,
			TxID:        input.TxID,
			Description: input.Description,
		})
		if err != nil {
			return errorResult(fmt.Sprintf("%s (%s)", err.Error(), donation.Reason(err))), nil, nil
		}
		return textResult(map[string]string{"payload": payload})
	}
}

type verifyPayloadInput struct {
	Payload string `json:"payload"`
}

func verifyPayloadHandler(svc Service) mcp.ToolHandlerFor[verifyPayloadInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input verifyPayloadInput) (*mcp.CallToolResult, any, error) {
		if input.Payload == "" {
			return errorResult("payload is required"), nil, nil
		}
		d, err := svc.Verify(ctx, input.Payload)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(map[string]any{"valid": true, "decoded": d})
	}
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("marshal result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
