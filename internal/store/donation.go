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

const donationTableName = "globalcrusade.donations"

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func (r *DonationRepository) CreateDonation(ctx context.Context, donation *types.Donation) error {
	donation.ID = utils.NanoID()
	donation.CreatedAt = time.Now()

	donationMap := utils.StructToMap(donation)

	query, args, err := psql().Insert(donationTableName).SetMap(donationMap).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation")
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

func (r *DonationRepository) DonationByReference(ctx context.Context, reference string) (*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"payment_reference": reference}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation by reference query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation by reference: %w", err)
	}

	return &donation, nil
}

func (r *DonationRepository) SetPaymentReference(ctx context.Context, donationID, reference string, gateway types.PaymentGateway) error {
	query, args, err := psql().
		Update(donationTableName).
		Set("payment_reference", reference).
		Set("payment_gateway", gateway).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set reference query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to set payment reference")
}

// MarkCompleted is the only path into the completed state. The guard on
// status makes the transition atomic: of any number of concurrent
// verifications for the same donation, exactly one observes true, and
// completed_at is stamped exactly once.
func (r *DonationRepository) MarkCompleted(ctx context.Context, donationID string, completedAt time.Time) (bool, error) {
	query, args, err := psql().
		Update(donationTableName).
		Set("status", types.DonationStatusCompleted).
		Set("completed_at", completedAt).
		Where(sq.Eq{"id": donationID}).
		Where(sq.NotEq{"status": []types.DonationStatus{
			types.DonationStatusCompleted,
			types.DonationStatusRefunded,
		}}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate complete donation query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to complete donation: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkFailed transitions a pending donation to failed. Completed and
// refunded donations are never demoted.
func (r *DonationRepository) MarkFailed(ctx context.Context, donationID string) error {
	query, args, err := psql().
		Update(donationTableName).
		Set("status", types.DonationStatusFailed).
		Where(sq.Eq{"id": donationID, "status": types.DonationStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate fail donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to mark donation failed")
}

func (r *DonationRepository) MarkRefunded(ctx context.Context, donationID string) (bool, error) {
	query, args, err := psql().
		Update(donationTableName).
		Set("status", types.DonationStatusRefunded).
		Where(sq.Eq{"id": donationID, "status": types.DonationStatusCompleted}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to generate refund donation query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark donation refunded: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *DonationRepository) FlagNeedsReview(ctx context.Context, donationID string) error {
	query, args, err := psql().
		Update(donationTableName).
		Set("needs_review", true).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate needs-review query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to flag donation for review")
}

func (r *DonationRepository) CompletedCountForDonor(ctx context.Context, donorID string) (int, error) {
	return r.countForDonor(ctx, sq.Eq{"donor_id": donorID, "status": types.DonationStatusCompleted})
}

func (r *DonationRepository) CountForDonor(ctx context.Context, donorID string) (int, error) {
	return r.countForDonor(ctx, sq.Eq{"donor_id": donorID})
}

func (r *DonationRepository) countForDonor(ctx context.Context, where sq.Eq) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(donationTableName).
		Where(where).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate donation count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count donations: %w", err)
	}

	return count, nil
}

func (r *DonationRepository) CountByStatus(ctx context.Context, status types.DonationStatus) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(donationTableName).
		Where(sq.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate status count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count donations by status: %w", err)
	}

	return count, nil
}

// Donations lists donations joined with donor identity, newest first.
// An empty status lists everything.
func (r *DonationRepository) Donations(ctx context.Context, status types.DonationStatus) ([]*types.DonationWithDonor, error) {
	builder := psql().
		Select(utils.PrefixSliceOfStrings("dn", donationColumns)...).
		Columns("d.full_name AS donor_name", "d.email AS donor_email").
		From(donationTableName + " dn").
		Join(donorTableName + " d ON d.id = dn.donor_id").
		OrderBy("dn.created_at DESC")

	if status != "" {
		builder = builder.Where(sq.Eq{"dn.status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	out := make([]*types.DonationWithDonor, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return out, nil
}

func (r *DonationRepository) RecentDonations(ctx context.Context, limit uint64) ([]*types.DonationWithDonor, error) {
	query, args, err := psql().
		Select(utils.PrefixSliceOfStrings("dn", donationColumns)...).
		Columns("d.full_name AS donor_name", "d.email AS donor_email").
		From(donationTableName + " dn").
		Join(donorTableName + " d ON d.id = dn.donor_id").
		OrderBy("dn.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recent donations query: %w", err)
	}

	out := make([]*types.DonationWithDonor, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch recent donations: %w", err)
	}

	return out, nil
}

// CurrencyTotals aggregates completed donations per currency for the
// dashboard breakdown.
func (r *DonationRepository) CurrencyTotals(ctx context.Context) ([]*types.CurrencyTotal, error) {
	query, args, err := psql().
		Select("currency", "SUM(amount_cents) AS total_cents", "COUNT(*) AS count").
		From(donationTableName).
		Where(sq.Eq{"status": types.DonationStatusCompleted}).
		GroupBy("currency").
		OrderBy("total_cents DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate currency totals query: %w", err)
	}

	out := make([]*types.CurrencyTotal, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch currency totals: %w", err)
	}

	return out, nil
}

func (r *DonationRepository) DeleteDonation(ctx context.Context, donationID string) error {
	query, args, err := psql().
		Delete(donationTableName).
		Where(sq.Eq{"id": donationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete donation")
}
