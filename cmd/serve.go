package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonder-codes/echo-repo/internal/server"
	"github.com/wonder-codes/echo-repo/internal/services"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (default from PORT or config, 5000)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := services.NewServices(ctx, cfg, services.NewKeyringService(), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.Error().Err(err).Msg("close history store")
			}
		}()

		port := cfg.Port
		if servePort > 0 {
			port = servePort
		}

		srv := server.New(svc.Readmes, server.Options{
			MaxBodyBytes: cfg.MaxBodyBytes,
			Logger:       logger,
		})
		if err := srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port)); err != nil {
			return err
		}
		logger.Info().Msg("server stopped")
		return nil
	},
}
