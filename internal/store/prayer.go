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

const prayerTableName = "globalcrusade.prayer_requests"

var prayerColumns = utils.StructTagValues(types.PrayerRequest{})

type PrayerRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPrayerRequestRepository(pool *pgxpool.Pool) *PrayerRequestRepository {
	return &PrayerRequestRepository{pool: pool}
}

func (r *PrayerRequestRepository) CreatePrayerRequest(ctx context.Context, prayer *types.PrayerRequest) error {
	prayer.ID = utils.NanoID()
	prayer.CreatedAt = time.Now()

	prayerMap := utils.StructToMap(prayer)

	query, args, err := psql().Insert(prayerTableName).SetMap(prayerMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert prayer query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create prayer request")
}

func (r *PrayerRequestRepository) ForDonation(ctx context.Context, donationID string) (*types.PrayerRequest, error) {
	query, args, err := psql().
		Select(prayerColumns...).
		From(prayerTableName).
		Where(sq.Eq{"donation_id": donationID}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate prayer query: %w", err)
	}

	var prayer types.PrayerRequest
	err = pgxscan.Get(ctx, r.pool, &prayer, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrPrayerNotFound
		}
		return nil, fmt.Errorf("failed to fetch prayer request: %w", err)
	}

	return &prayer, nil
}

func (r *PrayerRequestRepository) PrayerRequests(ctx context.Context) ([]*types.PrayerRequestWithDonor, error) {
	query := `
		SELECT p.id, p.donor_id, p.donation_id, p.request_text, p.is_answered, p.created_at, p.answered_at,
			d.full_name AS donor_name, d.email AS donor_email,
			dn.amount_cents AS donation_amount_cents, dn.currency AS donation_currency
		FROM globalcrusade.prayer_requests p
		JOIN globalcrusade.donors d ON d.id = p.donor_id
		LEFT JOIN globalcrusade.donations dn ON dn.id = p.donation_id
		ORDER BY p.created_at DESC`

	out := make([]*types.PrayerRequestWithDonor, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query); err != nil {
		return nil, fmt.Errorf("failed to fetch prayer requests: %w", err)
	}

	return out, nil
}

func (r *PrayerRequestRepository) RecentPrayerRequests(ctx context.Context, limit uint64) ([]*types.PrayerRequestWithDonor, error) {
	query := `
		SELECT p.id, p.donor_id, p.donation_id, p.request_text, p.is_answered, p.created_at, p.answered_at,
			d.full_name AS donor_name, d.email AS donor_email,
			dn.amount_cents AS donation_amount_cents, dn.currency AS donation_currency
		FROM globalcrusade.prayer_requests p
		JOIN globalcrusade.donors d ON d.id = p.donor_id
		LEFT JOIN globalcrusade.donations dn ON dn.id = p.donation_id
		ORDER BY p.created_at DESC
		LIMIT $1`

	out := make([]*types.PrayerRequestWithDonor, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch recent prayer requests: %w", err)
	}

	return out, nil
}

// ToggleAnswered flips the answered flag, stamping answered_at when the
// flag turns on and clearing it when turned off.
func (r *PrayerRequestRepository) ToggleAnswered(ctx context.Context, prayerID string) error {
	query := `
		UPDATE globalcrusade.prayer_requests SET
			is_answered = NOT is_answered,
			answered_at = CASE WHEN is_answered THEN NULL ELSE now() END
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, prayerID)
	if err != nil {
		return fmt.Errorf("failed to toggle prayer request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrPrayerNotFound
	}

	return nil
}

func (r *PrayerRequestRepository) CountUnanswered(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(prayerTableName).
		Where(sq.Eq{"is_answered": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unanswered count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count unanswered prayers: %w", err)
	}

	return count, nil
}
