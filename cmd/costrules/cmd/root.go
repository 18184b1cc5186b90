package cmd

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/costrules/internal/core/auth"
	"github.com/solatis/costrules/internal/core/config"
	"github.com/solatis/costrules/internal/core/db"
	"github.com/solatis/costrules/internal/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// options holds the persistent flags shared by all subcommands.
type options struct {
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "costrules",
		Short:         "Cost category rule generator",
		Long:          `costrules expands a cost category configuration into the ordered rule list consumed by billing cost categories.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.dbURL, "db-url", "", "ledger database URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newHistoryCmd(opts),
		newKeygenCmd(),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads service config and applies the --db-url flag.
func (o *options) loadConfig() (*config.ServiceConfig, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dbURL != "" {
		cfg.DBURL = o.dbURL
	}
	return cfg, nil
}

// openDatabase opens the configured ledger database.
func openDatabase(ctx context.Context, cfg *config.ServiceConfig) (*sqlx.DB, error) {
	if !cfg.LedgerEnabled() {
		return nil, fmt.Errorf("no ledger database configured (use --db-url or %s_STORAGE_DB_URL)", config.EnvPrefix)
	}
	database, err := db.Open(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// openLedger opens the ledger database, requires all migrations to be
// applied and loads the named queries. The caller closes the database.
func openLedger(ctx context.Context, cfg *config.ServiceConfig) (*sqlx.DB, *db.Queries, error) {
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	statuses, err := db.MigrateStatus(ctx, database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			database.Close()
			return nil, nil, fmt.Errorf("migration %s not applied - run 'costrules migrate' first", s.ID)
		}
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}

	return database, queries, nil
}

// loadAuthenticator builds the API key authenticator from the environment.
// Returns nil when no signing secret is configured.
func loadAuthenticator() (*auth.Authenticator, error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return nil, nil
	}
	return auth.NewAuthenticator(secrets), nil
}
