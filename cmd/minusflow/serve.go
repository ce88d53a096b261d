package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkrasilnikov/minusflow/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve exposes the triage engine over HTTP: analyze, wordfilter and export
endpoints plus read access to the analysis history.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := loggerFromViper()

	eng, err := buildEngine(logger)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	srv := server.New(eng, store, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down HTTP server")
		if shutdownErr := srv.Shutdown(); shutdownErr != nil {
			logger.Error("server shutdown failed", "error", shutdownErr)
		}
	}()

	return srv.Listen(viper.GetString("server.addr"))
}
