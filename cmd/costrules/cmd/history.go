package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/solatis/costrules/internal/types"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum entries to list (default: history.limit from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <generation-id>",
		Short: "Show one recorded generation with its rule list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, opts, args[0])
		},
	})

	return cmd
}

func runHistory(cmd *cobra.Command, opts *options, limit int) error {
	ctx := cmd.Context()

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.HistoryLimit
	}

	database, queries, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	generations, err := queries.ListGenerations(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GENERATION\tREQUEST\tSTATUS\tRULES\tCREATED AT")
	for _, g := range generations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", g.ID, g.RequestID, g.Status, g.RuleCount, g.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

// generationView is the JSON shape printed by history show.
type generationView struct {
	ID             types.GenerationID `json:"generationId"`
	RequestID      string             `json:"requestId"`
	Status         types.Status       `json:"status"`
	RuleCount      int                `json:"ruleCount"`
	ConfigChecksum string             `json:"configChecksum"`
	CreatedAt      string             `json:"createdAt"`
	ErrorMessage   string             `json:"errorMessage,omitempty"`
	Rules          json.RawMessage    `json:"rules,omitempty"`
}

func runHistoryShow(cmd *cobra.Command, opts *options, rawID string) error {
	ctx := cmd.Context()

	id, err := types.ParseGenerationID(rawID)
	if err != nil {
		return fmt.Errorf("invalid generation id %q: %w", rawID, err)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	database, queries, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	g, err := queries.GetGeneration(ctx, id)
	if err != nil {
		return err
	}

	view := generationView{
		ID:             g.ID,
		RequestID:      g.RequestID,
		Status:         g.Status,
		RuleCount:      g.RuleCount,
		ConfigChecksum: g.ConfigChecksum,
		CreatedAt:      g.CreatedAt.Format(time.RFC3339),
		ErrorMessage:   g.ErrorMessage,
	}
	if g.Fragment != "" {
		view.Rules = json.RawMessage(g.Fragment)
	}

	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal generation: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
