package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/solatis/costrules/internal/core/db"
	"github.com/solatis/costrules/internal/logging"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status]",
		Short:     "Apply or list ledger database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}
			return runMigrate(cmd, opts, action)
		},
	}
}

func runMigrate(cmd *cobra.Command, opts *options, action string) error {
	ctx := cmd.Context()
	logger := logging.GetLogger("migrate")

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if action == "status" {
		statuses, err := db.MigrateStatus(ctx, database)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tSTATUS\tAPPLIED AT\tDURATION")
		for _, s := range statuses {
			state, appliedAt, duration := "pending", "-", "-"
			if s.Applied {
				state = "applied"
				duration = fmt.Sprintf("%dms", s.ExecutionMs)
				if s.AppliedAt != nil {
					appliedAt = s.AppliedAt.UTC().Format(time.RFC3339)
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, state, appliedAt, duration)
		}
		return w.Flush()
	}

	ran, err := db.MigrateUp(ctx, database)
	for _, id := range ran {
		logger.Info().Str("migration", id).Msg("Applied migration")
	}
	if err != nil {
		return err
	}

	if len(ran) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", len(ran))
	}
	return nil
}
