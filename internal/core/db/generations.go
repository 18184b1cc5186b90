package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/costrules/internal/types"
)

// generationRow mirrors the generations table. Timestamps travel as RFC3339
// text so both drivers share one code path.
type generationRow struct {
	ID             string `db:"generation_id"`
	RequestID      string `db:"request_id"`
	Status         string `db:"status"`
	RuleCount      int    `db:"rule_count"`
	Fragment       string `db:"fragment"`
	ErrorMessage   string `db:"error_message"`
	ConfigChecksum string `db:"config_checksum"`
	CreatedAt      string `db:"created_at"`
}

func (r generationRow) toGeneration() (types.Generation, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return types.Generation{}, fmt.Errorf("invalid created_at for generation %s: %w", r.ID, err)
	}
	return types.Generation{
		ID:             types.GenerationID(r.ID),
		RequestID:      r.RequestID,
		Status:         types.Status(r.Status),
		RuleCount:      r.RuleCount,
		Fragment:       r.Fragment,
		ErrorMessage:   r.ErrorMessage,
		ConfigChecksum: r.ConfigChecksum,
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// InsertGeneration records one generation. ID and CreatedAt are filled in
// when unset.
func (q *Queries) InsertGeneration(ctx context.Context, g *types.Generation) error {
	if g.ID == "" {
		g.ID = types.NewGenerationID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	// Second precision matches the RFC3339 check constraint
	g.CreatedAt = g.CreatedAt.UTC().Truncate(time.Second)

	_, err := q.Exec(ctx, "insert-generation",
		string(g.ID),
		g.RequestID,
		string(g.Status),
		g.RuleCount,
		g.Fragment,
		g.ErrorMessage,
		g.ConfigChecksum,
		g.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}
	return nil
}

// GetGeneration returns one generation by ID, or types.ErrGenerationNotFound.
func (q *Queries) GetGeneration(ctx context.Context, id types.GenerationID) (*types.Generation, error) {
	var row generationRow
	if err := q.Get(ctx, "get-generation", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", types.ErrGenerationNotFound, id)
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	g, err := row.toGeneration()
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGenerations returns up to limit generations, newest first.
func (q *Queries) ListGenerations(ctx context.Context, limit int) ([]types.Generation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var rows []generationRow
	if err := q.Select(ctx, "list-generations", &rows, limit); err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}

	generations := make([]types.Generation, 0, len(rows))
	for _, row := range rows {
		g, err := row.toGeneration()
		if err != nil {
			return nil, err
		}
		generations = append(generations, g)
	}
	return generations, nil
}

// CountGenerations returns the number of recorded generations.
func (q *Queries) CountGenerations(ctx context.Context) (int, error) {
	var n int
	if err := q.Get(ctx, "count-generations", &n); err != nil {
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}
	return n, nil
}
