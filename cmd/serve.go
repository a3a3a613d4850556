package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/twir-walkthroughs/internal/api"
	"github.com/JakeFAU/twir-walkthroughs/internal/server"
)

// newServeCmd creates the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored archive and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cfg := server.Config{Port: appInstance.Config().Server.Port}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			logger := appInstance.GetLogger()
			handler := api.NewServer(appInstance.GetStore(), logger).Handler()
			logger.Info("Serving walkthrough archive", zap.Int("port", cfg.Port))
			return server.Run(cmd.Context(), cfg, handler, logger)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
