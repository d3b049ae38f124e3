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

const ministryImageTableName = "globalcrusade.ministry_images"

var ministryImageColumns = utils.StructTagValues(types.MinistryImage{})

type MinistryImageRepository struct {
	pool *pgxpool.Pool
}

func NewMinistryImageRepository(pool *pgxpool.Pool) *MinistryImageRepository {
	return &MinistryImageRepository{pool: pool}
}

func (r *MinistryImageRepository) CreateMinistryImage(ctx context.Context, image *types.MinistryImage) error {
	now := time.Now()
	image.ID = utils.NanoID()
	image.CreatedAt = now
	image.UpdatedAt = now

	imageMap := utils.StructToMap(image)

	query, args, err := psql().Insert(ministryImageTableName).SetMap(imageMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert ministry image query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create ministry image")
}

func (r *MinistryImageRepository) MinistryImage(ctx context.Context, imageID string) (*types.MinistryImage, error) {
	query, args, err := psql().
		Select(ministryImageColumns...).
		From(ministryImageTableName).
		Where(sq.Eq{"id": imageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ministry image query: %w", err)
	}

	var image types.MinistryImage
	if err := pgxscan.Get(ctx, r.pool, &image, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to fetch ministry image: %w", err)
	}

	return &image, nil
}

func (r *MinistryImageRepository) ToggleMinistryImage(ctx context.Context, imageID string) error {
	query := `
		UPDATE globalcrusade.ministry_images
		SET is_active = NOT is_active, updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, imageID)
	if err != nil {
		return fmt.Errorf("failed to toggle ministry image: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrImageNotFound
	}

	return nil
}

func (r *MinistryImageRepository) DeleteMinistryImage(ctx context.Context, imageID string) error {
	query, args, err := psql().
		Delete(ministryImageTableName).
		Where(sq.Eq{"id": imageID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete ministry image query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete ministry image")
}

// ActiveMinistryImages returns active images, optionally limited to one type.
// An empty imageType returns all active images.
func (r *MinistryImageRepository) ActiveMinistryImages(ctx context.Context, imageType types.ImageType) ([]*types.MinistryImage, error) {
	where := sq.And{sq.Eq{"is_active": true}}
	if imageType != "" {
		where = append(where, sq.Eq{"image_type": imageType})
	}

	return r.ministryImages(ctx, where)
}

func (r *MinistryImageRepository) MinistryImages(ctx context.Context) ([]*types.MinistryImage, error) {
	return r.ministryImages(ctx, nil)
}

func (r *MinistryImageRepository) ministryImages(ctx context.Context, where any) ([]*types.MinistryImage, error) {
	builder := psql().
		Select(ministryImageColumns...).
		From(ministryImageTableName).
		OrderBy("display_order", "created_at DESC")

	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ministry images query: %w", err)
	}

	out := make([]*types.MinistryImage, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch ministry images: %w", err)
	}

	return out, nil
}
