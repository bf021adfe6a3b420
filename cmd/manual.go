package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/billing/billing"
)

var (
	manualWorkLogIDs []uint
	manualIssuedDate string
)

var generateManualCmd = &cobra.Command{
	Use:   "generate-manual",
	Short: "Invoice a hand-picked set of work entries",
	Long: `Creates manual invoices from an operator-selected set of unbilled work
entries. Entries are grouped by client; each group becomes one invoice
whose period spans the earliest and latest work date in the group.`,
	Example: `  billing generate-manual --worklogs 12,15,19 --issued-date 2026-02-03`,
	RunE:    runGenerateManual,
}

func runGenerateManual(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	issued := time.Now()
	if manualIssuedDate != "" {
		issued, err = time.Parse("2006-01-02", manualIssuedDate)
		if err != nil {
			return fmt.Errorf("invalid --issued-date %q, expected YYYY-MM-DD: %w", manualIssuedDate, err)
		}
	}
	issued = billing.Date(issued.Year(), issued.Month(), issued.Day())

	summary, err := eng.gen.GenerateManual(manualWorkLogIDs, issued)
	if err != nil {
		return err
	}
	return printSummary(summary)
}

func init() {
	generateManualCmd.Flags().UintSliceVar(&manualWorkLogIDs, "worklogs", nil, "work log ids to invoice (comma separated)")
	generateManualCmd.Flags().StringVar(&manualIssuedDate, "issued-date", "", "issue date as YYYY-MM-DD (default today)")
	generateManualCmd.MarkFlagRequired("worklogs")
	rootCmd.AddCommand(generateManualCmd)
}
