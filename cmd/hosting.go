package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/billing/billing"
)

var (
	hostingToday      string
	hostingDays       int
	hostingRemindDays int
)

var checkHostingCmd = &cobra.Command{
	Use:   "check-hosting",
	Short: "Check annual hosting subscriptions and issue advance invoices",
	Long: `Evaluates every active subscription with an annual hosting fee and an
expiry date. Within the advance window an advance invoice is created and
emailed; within the reminder window an unpaid invoice is re-sent as a
payment reminder. Re-running the command on the same day is a no-op.`,
	Example: `  # regular daily run
  billing check-hosting

  # simulate a specific day (for tests)
  billing check-hosting --today 2026-03-15 --days 30 --remind-days 10`,
	RunE: runCheckHosting,
}

func runCheckHosting(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	today := time.Now()
	if hostingToday != "" {
		today, err = time.Parse("2006-01-02", hostingToday)
		if err != nil {
			return fmt.Errorf("invalid --today %q, expected YYYY-MM-DD: %w", hostingToday, err)
		}
	}

	monitor := billing.NewMonitor(eng.db, eng.gen)
	return printSummary(monitor.Run(today, hostingDays, hostingRemindDays))
}

func init() {
	checkHostingCmd.Flags().StringVar(&hostingToday, "today", "", "override today's date as YYYY-MM-DD")
	checkHostingCmd.Flags().IntVar(&hostingDays, "days", billing.DefaultAdvanceDays, "days before expiry to issue the advance invoice")
	checkHostingCmd.Flags().IntVar(&hostingRemindDays, "remind-days", billing.DefaultReminderDays, "days before expiry to send an unpaid reminder")
	rootCmd.AddCommand(checkHostingCmd)
}
