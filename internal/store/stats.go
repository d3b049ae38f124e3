package store

import (
	"context"
	"fmt"

	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const statsTableName = "globalcrusade.crusade_stats"

// The stats table holds exactly one row.
const statsRowID = 1

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Stats returns the singleton row, creating it with defaults on first
// access.
func (r *StatsRepository) Stats(ctx context.Context) (*types.CrusadeStats, error) {
	query := `
		INSERT INTO globalcrusade.crusade_stats
			(id, total_raised_cents, total_donors, budgeted_amount_cents, crusades_planned, last_updated)
		VALUES ($1, 0, 0, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET id = crusade_stats.id
		RETURNING id, total_raised_cents, total_donors, budgeted_amount_cents,
			crusades_planned, countries_list, last_updated`

	var stats types.CrusadeStats
	err := pgxscan.Get(ctx, r.pool, &stats, query, statsRowID, int64(50_000*100), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create crusade stats: %w", err)
	}

	return &stats, nil
}

// Recompute rebuilds the derived totals from the full completed
// donation set. Totals are never incremented in place; a recompute
// after any status change always converges on the truth.
func (r *StatsRepository) Recompute(ctx context.Context) error {
	if _, err := r.Stats(ctx); err != nil {
		return err
	}

	query := `
		UPDATE globalcrusade.crusade_stats SET
			total_raised_cents = (
				SELECT COALESCE(SUM(amount_cents), 0)
				FROM globalcrusade.donations
				WHERE status = 'completed'
			),
			total_donors = (SELECT COUNT(*) FROM globalcrusade.donors),
			last_updated = now()
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, statsRowID)

	return utils.ErrorWrapOrNil(err, "failed to recompute crusade stats")
}

// UpdateSettings stores the admin-editable fields; the derived totals
// are untouched.
func (r *StatsRepository) UpdateSettings(ctx context.Context, budgetedAmountCents int64, crusadesPlanned int, countriesList string) error {
	if _, err := r.Stats(ctx); err != nil {
		return err
	}

	query, args, err := psql().
		Update(statsTableName).
		Set("budgeted_amount_cents", budgetedAmountCents).
		Set("crusades_planned", crusadesPlanned).
		Set("countries_list", nullable(countriesList)).
		Where("id = ?", statsRowID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate stats settings query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to update crusade stats settings")
}
