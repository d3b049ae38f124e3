package store

import (
	"context"
	"fmt"
	"time"

	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const testimonyTableName = "globalcrusade.testimonies"

var testimonyColumns = utils.StructTagValues(types.Testimony{})

type TestimonyRepository struct {
	pool *pgxpool.Pool
}

func NewTestimonyRepository(pool *pgxpool.Pool) *TestimonyRepository {
	return &TestimonyRepository{pool: pool}
}

func (r *TestimonyRepository) CreateTestimony(ctx context.Context, testimony *types.Testimony) error {
	now := time.Now()
	testimony.ID = utils.NanoID()
	testimony.CreatedAt = now
	testimony.UpdatedAt = now

	testimonyMap := utils.StructToMap(testimony)

	query, args, err := psql().Insert(testimonyTableName).SetMap(testimonyMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert testimony query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create testimony")
}

func (r *TestimonyRepository) UpdateTestimony(ctx context.Context, testimonyID string, testimony *types.Testimony) error {
	query, args, err := psql().
		Update(testimonyTableName).
		Set("name", testimony.Name).
		Set("location", testimony.Location).
		Set("testimony_text", testimony.TestimonyText).
		Set("display_order", testimony.DisplayOrder).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": testimonyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update testimony query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update testimony: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrTestimonyNotFound
	}

	return nil
}

func (r *TestimonyRepository) ToggleTestimony(ctx context.Context, testimonyID string) error {
	query := `
		UPDATE globalcrusade.testimonies
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, testimonyID)
	if err != nil {
		return fmt.Errorf("failed to toggle testimony: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrTestimonyNotFound
	}

	return nil
}

func (r *TestimonyRepository) DeleteTestimony(ctx context.Context, testimonyID string) error {
	query, args, err := psql().
		Delete(testimonyTableName).
		Where(sq.Eq{"id": testimonyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete testimony query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete testimony")
}

func (r *TestimonyRepository) ActiveTestimonies(ctx context.Context) ([]*types.Testimony, error) {
	return r.testimonies(ctx, sq.Eq{"is_active": true})
}

func (r *TestimonyRepository) Testimonies(ctx context.Context) ([]*types.Testimony, error) {
	return r.testimonies(ctx, nil)
}

func (r *TestimonyRepository) testimonies(ctx context.Context, where any) ([]*types.Testimony, error) {
	builder := psql().
		Select(testimonyColumns...).
		From(testimonyTableName).
		OrderBy("display_order", "created_at DESC")

	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate testimonies query: %w", err)
	}

	out := make([]*types.Testimony, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch testimonies: %w", err)
	}

	return out, nil
}
