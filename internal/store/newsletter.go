package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const newsletterTableName = "globalcrusade.newsletter_signups"

var newsletterColumns = utils.StructTagValues(types.NewsletterSignup{})

type NewsletterRepository struct {
	pool *pgxpool.Pool
}

func NewNewsletterRepository(pool *pgxpool.Pool) *NewsletterRepository {
	return &NewsletterRepository{pool: pool}
}

// Subscribe records a newsletter signup. Re-subscribing an address that
// previously unsubscribed reactivates it.
func (r *NewsletterRepository) Subscribe(ctx context.Context, email string) error {
	query := `
		INSERT INTO globalcrusade.newsletter_signups (email, is_active, subscribed_at)
		VALUES ($1, true, $2)
		ON CONFLICT (email) DO UPDATE SET
			is_active = true`

	_, err := r.pool.Exec(ctx, query, strings.ToLower(strings.TrimSpace(email)), time.Now())

	return utils.ErrorWrapOrNil(err, "failed to subscribe to newsletter")
}

func (r *NewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	query := `
		UPDATE globalcrusade.newsletter_signups
		SET is_active = false
		WHERE email = $1`

	_, err := r.pool.Exec(ctx, query, strings.ToLower(strings.TrimSpace(email)))

	return utils.ErrorWrapOrNil(err, "failed to unsubscribe from newsletter")
}

func (r *NewsletterRepository) ActiveSignups(ctx context.Context) ([]*types.NewsletterSignup, error) {
	query, args, err := psql().
		Select(newsletterColumns...).
		From(newsletterTableName).
		Where("is_active = true").
		OrderBy("subscribed_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate newsletter signups query: %w", err)
	}

	out := make([]*types.NewsletterSignup, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch newsletter signups: %w", err)
	}

	return out, nil
}

func (r *NewsletterRepository) CountActive(ctx context.Context) (int64, error) {
	query, args, err := psql().
		Select("COUNT(1)").
		From(newsletterTableName).
		Where("is_active = true").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate newsletter count query: %w", err)
	}

	var count int64
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count newsletter signups: %w", err)
	}

	return count, nil
}
