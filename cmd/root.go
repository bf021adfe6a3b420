package cmd

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/config"
	"github.com/yourusername/billing/logger"
	"github.com/yourusername/billing/mailer"
	"github.com/yourusername/billing/pdf"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Recurring invoicing service",
	Long: `Billing generates recurring invoices for clients: monthly subscription
and work-entry invoices, annual hosting renewals with payment reminders,
PDF documents and email delivery.

Run "billing serve" for the admin API or one of the generation commands
for scheduled/manual runs.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// engine wires the generator and its collaborators from configuration.
type engine struct {
	cfg *config.Config
	db  *gorm.DB
	gen *billing.Generator
}

func buildEngine() (*engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}

	vatRate, err := decimal.NewFromString(cfg.VATRate)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT_RATE %q: %w", cfg.VATRate, err)
	}

	sender := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	gen := billing.NewGenerator(db, pdf.NewRenderer(), sender, billing.Options{
		Prefix:       cfg.InvoicePrefix,
		VATRate:      vatRate,
		BCC:          cfg.InvoiceBCC,
		DocumentsDir: cfg.DocumentsDir,
	})

	return &engine{cfg: cfg, db: db, gen: gen}, nil
}

// printSummary reports a batch run and returns an error when any client
// failed, so the process exit code reflects the run.
func printSummary(summary billing.Summary) error {
	log := logger.WithComponent("cmd")

	for _, res := range summary.Results {
		event := log.Info()
		if res.Outcome == billing.OutcomeFailed {
			event = log.Error().Err(res.Err)
		}
		if res.Invoice != nil {
			event = event.Str("number", res.Invoice.Number)
		}
		event.Str("client", res.ClientName).
			Str("outcome", string(res.Outcome)).
			Strs("warnings", res.Warnings).
			Msg("generation result")
	}

	fmt.Printf("created=%d resent=%d skipped=%d failed=%d\n",
		summary.Created, summary.Resent, summary.Skipped, summary.Failed)

	if summary.Failed > 0 {
		return fmt.Errorf("%d client(s) failed", summary.Failed)
	}
	return nil
}
