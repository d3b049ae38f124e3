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

const crusadeFlyerTableName = "globalcrusade.crusade_flyers"

var crusadeFlyerColumns = utils.StructTagValues(types.CrusadeFlyer{})

type CrusadeFlyerRepository struct {
	pool *pgxpool.Pool
}

func NewCrusadeFlyerRepository(pool *pgxpool.Pool) *CrusadeFlyerRepository {
	return &CrusadeFlyerRepository{pool: pool}
}

func (r *CrusadeFlyerRepository) CreateCrusadeFlyer(ctx context.Context, flyer *types.CrusadeFlyer) error {
	flyer.ID = utils.NanoID()
	flyer.CreatedAt = time.Now()

	flyerMap := utils.StructToMap(flyer)

	query, args, err := psql().Insert(crusadeFlyerTableName).SetMap(flyerMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert crusade flyer query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create crusade flyer")
}

func (r *CrusadeFlyerRepository) CrusadeFlyer(ctx context.Context, flyerID string) (*types.CrusadeFlyer, error) {
	query, args, err := psql().
		Select(crusadeFlyerColumns...).
		From(crusadeFlyerTableName).
		Where(sq.Eq{"id": flyerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crusade flyer query: %w", err)
	}

	var flyer types.CrusadeFlyer
	if err := pgxscan.Get(ctx, r.pool, &flyer, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrFlyerNotFound
		}
		return nil, fmt.Errorf("failed to fetch crusade flyer: %w", err)
	}

	return &flyer, nil
}

func (r *CrusadeFlyerRepository) ToggleCrusadeFlyer(ctx context.Context, flyerID string) error {
	query := `
		UPDATE globalcrusade.crusade_flyers
		SET is_active = NOT is_active
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, flyerID)
	if err != nil {
		return fmt.Errorf("failed to toggle crusade flyer: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrFlyerNotFound
	}

	return nil
}

func (r *CrusadeFlyerRepository) DeleteCrusadeFlyer(ctx context.Context, flyerID string) error {
	query, args, err := psql().
		Delete(crusadeFlyerTableName).
		Where(sq.Eq{"id": flyerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete crusade flyer query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete crusade flyer")
}

func (r *CrusadeFlyerRepository) ActiveCrusadeFlyers(ctx context.Context) ([]*types.CrusadeFlyer, error) {
	return r.crusadeFlyers(ctx, sq.Eq{"is_active": true})
}

func (r *CrusadeFlyerRepository) CrusadeFlyers(ctx context.Context) ([]*types.CrusadeFlyer, error) {
	return r.crusadeFlyers(ctx, nil)
}

func (r *CrusadeFlyerRepository) crusadeFlyers(ctx context.Context, where any) ([]*types.CrusadeFlyer, error) {
	builder := psql().
		Select(crusadeFlyerColumns...).
		From(crusadeFlyerTableName).
		OrderBy("display_order", "created_at DESC")

	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crusade flyers query: %w", err)
	}

	out := make([]*types.CrusadeFlyer, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch crusade flyers: %w", err)
	}

	return out, nil
}
