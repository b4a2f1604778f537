package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Victor-F-M-A-R/batismo-pix/internal/pix"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/publish"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/qr"
	"github.com/Victor-F-M-A-R/batismo-pix/internal/verifier"
)

func (c *cli) encodeCmd() *cobra.Command {
	var (
		req    pix.PaymentRequest
		qrPath string
		width  int
		level  string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a payment request as a PIX copy-and-paste payload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := pix.BuildPayload(req)
			if err != nil {
				return err
			}
			c.printf("%s\n", payload)

			if qrPath == "" {
				return nil
			}
			opts := qr.DefaultRenderOptions()
			opts.Width = width
			if opts.Level, err = qr.ParseLevel(level); err != nil {
				return err
			}
			png, err := qr.NewRenderer().PNG(payload, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(qrPath, png, 0o644); err != nil {
				return fmt.Errorf("write qr: %w", err)
			}
			c.logger.Info("qr written", "path", qrPath, "bytes", len(png))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Key, "key", os.Getenv("PIX_KEY"), "PIX key (defaults to $PIX_KEY)")
	f.Float64Var(&req.Amount, "amount", 0, "amount in BRL")
	f.StringVar(&req.Name, "name", os.Getenv("PIX_MERCHANT_NAME"), "merchant name")
	f.StringVar(&req.City, "city", os.Getenv("PIX_MERCHANT_CITY"), "merchant city")
	f.StringVar(&req.TxID, "txid", "", "transaction reference")
	f.StringVar(&req.Description, "description", "", "description shown by the payer's bank")
	f.StringVar(&qrPath, "qr", "", "also write a QR code PNG to this path")
	f.IntVar(&width, "width", qr.DefaultRenderOptions().Width, "QR image width in pixels")
	f.StringVar(&level, "level", string(qr.DefaultRenderOptions().Level), "QR error correction level (L, M, Q, H)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify PAYLOAD",
		Short: "Verify a payload checksum and print its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := pix.Decode(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.out)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}
}

func (c *cli) tiersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "List donation tiers with their payloads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := c.service()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAMOUNT\tTITLE\tPAYLOAD")
			for _, t := range svc.Tiers(cmd.Context()) {
				payload, err := svc.Payload(cmd.Context(), t.ID)
				if err != nil {
					payload = "error: " + err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Amount.StringFixed(2), t.Title, payload)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		dir         string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render every tier's QR code and payload to a directory or S3",
		Long: "Writes <tier>.png, <tier>.txt and manifest.json. Assets go to S3 when " +
			"PIX_PUBLISH_BUCKET is set and --dir is not given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, cfg, err := c.service()
			if err != nil {
				return err
			}

			var sink publish.Sink = publish.DirSink{Dir: dir}
			dest := dir
			if !cmd.Flags().Changed("dir") && cfg.PublishToS3() {
				awsCfg, err := publish.NewAWSConfig(ctx, cfg.AWSRegion, cfg.AWSProfile, cfg.PublishRoleARN)
				if err != nil {
					return err
				}
				sink = publish.NewS3Sink(awsCfg, cfg.PublishBucket, cfg.PublishPrefix)
				dest = "s3://" + cfg.PublishBucket + "/" + cfg.PublishPrefix
			}

			exp := &publish.Exporter{Source: svc, Sink: sink, Concurrency: concurrency, Logger: c.logger}
			m, err := exp.Export(ctx)
			if err != nil {
				return err
			}
			c.printf("exported %d tiers to %s\n", len(m.Tiers), dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "assets", "output directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "tiers rendered in parallel")
	return cmd
}

func (c *cli) checkCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a directory written by export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := verifier.VerifyExport(os.DirFS(dir))
			if err != nil {
				return err
			}
			for _, p := range report.Problems {
				c.printf("FAIL %s: %s\n", p.TierID, p.Message)
			}
			if !report.OK() {
				return fmt.Errorf("%d problem(s) in %d tiers", len(report.Problems), report.Checked)
			}
			c.printf("OK: %d tiers verified in %s\n", report.Checked, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "assets", "export directory")
	return cmd
}
