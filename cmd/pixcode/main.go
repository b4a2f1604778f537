// Command pixcode builds, verifies and exports PIX donation payloads.
//
// Usage:
//
//	pixcode encode --key K --amount 7.77 [--name N] [--city C] [--txid T] [--qr out.png]
//	pixcode verify PAYLOAD
//	pixcode tiers
//	pixcode export [--dir assets]
//	pixcode check [--dir assets]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/catalog"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/config"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/donation"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/observability"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, loadConfig: config.LoadFromEnv}
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	out      io.Writer
	logLevel string
	logger   *slog.Logger
	// loadConfig is swapped in tests.
	loadConfig func() (config.Config, error)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "pixcode",
		Short:        "Build and verify PIX BR-Code donation payloads",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			c.logger = observability.InitStderrLogger(c.logLevel)
		},
	}
	root.SetOut(c.out)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.encodeCmd(),
		c.verifyCmd(),
		c.tiersCmd(),
		c.exportCmd(),
		c.checkCmd(),
	)
	return root
}

// service builds the donation service from environment configuration.
func (c *cli) service() (*donation.Service, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	tiers, err := catalog.Load(cfg.TiersFile)
	if err != nil {
		return nil, config.Config{}, err
	}
	svc, err := donation.New(donation.Options{
		Payee:  cfg.Payee,
		Tiers:  tiers,
		QR:     cfg.QR,
		Logger: c.logger,
	})
	if err != nil {
		return nil, config.Config{}, err
	}
	return svc, cfg, nil
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
