// Command mcp-pix runs the MCP tool server for donation checkouts and PIX
// payloads. Uses stdio transport for integration with AI assistants.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/catalog"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/config"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/mcpserver"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/observability"
)

var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// stdout carries the MCP protocol.
	logger := observability.InitStderrLogger(cfg.LogLevel)

	tiers, err := catalog.Load(cfg.TiersFile)
	if err != nil {
		log.Fatalf("unable to load tiers: %v", err)
	}
	svc, err := donation.New(donation.Options{
		Payee:  cfg.Payee,
		Tiers:  tiers,
		QR:     cfg.QR,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("unable to create donation service: %v", err)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "batismo-pix",
		Version: version,
	}, nil)
	mcpserver.RegisterTools(server, svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}
