package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yourusername/billing/billing"
	"github.com/yourusername/billing/handlers"
	"github.com/yourusername/billing/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the billing admin API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	monitor := billing.NewMonitor(eng.db, eng.gen)
	router := handlers.NewRouter(eng.db, eng.cfg, eng.gen, monitor)

	port := eng.cfg.Port
	if port == "" {
		port = "8080"
	}

	log := logger.WithComponent("serve")
	log.Info().Str("port", port).Msg("starting billing API server")
	return router.Run(":" + port)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
