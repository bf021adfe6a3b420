package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/billing/billing"
)

var (
	generateMonth      string
	generateIssuedDate string
	generateForce      bool
	generateResend     bool
	generateAllowPaid  bool
)

var generateMonthlyCmd = &cobra.Command{
	Use:   "generate-monthly",
	Short: "Generate monthly invoices for all active clients",
	Long: `Generates one monthly invoice per active client, covering the client's
active subscriptions and unbilled work entries for the period.

Without --month, a run on the 1st of a month bills the previous month and
issues with yesterday's date; on any other day the current month is billed.
A client that already has an invoice for the period is skipped unless
--force (delete and regenerate) or --resend (email the existing invoice
again) is given.`,
	Example: `  # regular scheduled run
  billing generate-monthly

  # regenerate January 2026 from scratch
  billing generate-monthly --month 2026-01 --force

  # re-email the existing invoices for the current period
  billing generate-monthly --resend`,
	RunE: runGenerateMonthly,
}

func runGenerateMonthly(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	from, to, issued, err := billing.ResolvePeriod(generateMonth, generateIssuedDate, time.Now())
	if err != nil {
		return err
	}

	summary := eng.gen.GenerateMonthly(from, to, issued, generateForce, generateResend, generateAllowPaid)
	return printSummary(summary)
}

func init() {
	generateMonthlyCmd.Flags().StringVar(&generateMonth, "month", "", "billing month as YYYY-MM (default: run-day rules)")
	generateMonthlyCmd.Flags().StringVar(&generateIssuedDate, "issued-date", "", "issue date as YYYY-MM-DD (default: run-day rules)")
	generateMonthlyCmd.Flags().BoolVar(&generateForce, "force", false, "delete an existing invoice for the period and regenerate")
	generateMonthlyCmd.Flags().BoolVar(&generateResend, "resend", false, "re-email the existing invoice without recomputation")
	generateMonthlyCmd.Flags().BoolVar(&generateAllowPaid, "allow-paid", false, "allow --force to delete an already paid invoice")
	rootCmd.AddCommand(generateMonthlyCmd)
}
