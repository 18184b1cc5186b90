package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/solatis/costrules/internal/core/api"
	"github.com/solatis/costrules/internal/core/config"
	"github.com/solatis/costrules/internal/core/server"
	"github.com/solatis/costrules/internal/logging"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC rule generator service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	def := config.DefaultServiceConfig()
	cmd.Flags().String("host", def.Host, "gRPC server host")
	cmd.Flags().Int("port", def.Port, "gRPC server port")

	return cmd
}

func runServe(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	logger := logging.GetLogger("serve")

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	var recorder api.Recorder
	if cfg.LedgerEnabled() {
		database, queries, err := openLedger(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()
		recorder = queries
	} else {
		logger.Warn().Msg("No ledger database configured; generations are only mirrored to JSONL")
	}

	service, err := api.NewRuleGeneratorService(cfg, recorder)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	authenticator, err := loadAuthenticator()
	if err != nil {
		return err
	}
	if authenticator == nil {
		logger.Warn().Msgf("No %s set; API key authentication is disabled", config.HMACSecretEnv)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info().
		Str("version", Version).
		Str("addr", cfg.Address()).
		Bool("ledger", cfg.LedgerEnabled()).
		Bool("auth", authenticator != nil).
		Msg("Starting costrules rule generator")

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info().Msg("Shutting down gracefully")
		return grpcServer.Shutdown(context.Background())
	}
}
