package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"globalcrusade/internal/utils"
	"globalcrusade/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donorTableName = "globalcrusade.donors"

var donorColumns = utils.StructTagValues(types.Donor{})

type DonorRepository struct {
	pool *pgxpool.Pool
}

func NewDonorRepository(pool *pgxpool.Pool) *DonorRepository {
	return &DonorRepository{pool: pool}
}

func (r *DonorRepository) Donor(ctx context.Context, donorID string) (*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"id": donorID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor query: %w", err)
	}

	var donor types.Donor
	err = pgxscan.Get(ctx, r.pool, &donor, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to fetch donor: %w", err)
	}

	return &donor, nil
}

func (r *DonorRepository) DonorByEmail(ctx context.Context, email string) (*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		Where(sq.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donor query: %w", err)
	}

	var donor types.Donor
	err = pgxscan.Get(ctx, r.pool, &donor, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to fetch donor by email: %w", err)
	}

	return &donor, nil
}

// UpsertDonor creates the donor on first contact keyed by email, and on
// later donations refreshes the name plus any newly supplied phone or
// country. One donor row exists per email.
func (r *DonorRepository) UpsertDonor(ctx context.Context, donor *types.Donor) (*types.Donor, error) {
	donor.ID = utils.NanoID()
	donor.Email = strings.ToLower(donor.Email)
	donor.CreatedAt = time.Now()

	query := `
		INSERT INTO globalcrusade.donors (id, full_name, email, phone, country, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = COALESCE(EXCLUDED.phone, donors.phone),
			country = CASE
				WHEN EXCLUDED.country <> '' AND EXCLUDED.country <> 'Other' THEN EXCLUDED.country
				ELSE donors.country
			END
		RETURNING id, full_name, email, phone, country, created_at`

	var out types.Donor
	err := pgxscan.Get(ctx, r.pool, &out, query,
		donor.ID, donor.FullName, donor.Email, donor.Phone, donor.Country, donor.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert donor: %w", err)
	}

	return &out, nil
}

func (r *DonorRepository) Donors(ctx context.Context) ([]*types.Donor, error) {
	query, args, err := psql().
		Select(donorColumns...).
		From(donorTableName).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors query: %w", err)
	}

	donors := make([]*types.Donor, 0)
	if err := pgxscan.Select(ctx, r.pool, &donors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch donors: %w", err)
	}

	return donors, nil
}

// DonorTotals returns every donor joined with completed-donation
// aggregates, ordered by total donated. Sums mix currencies the same
// way the headline total does.
func (r *DonorRepository) DonorTotals(ctx context.Context) ([]*types.DonorTotals, error) {
	query := `
		SELECT d.id, d.full_name, d.email, d.phone, d.country, d.created_at,
			COALESCE(SUM(dn.amount_cents) FILTER (WHERE dn.status = 'completed'), 0) AS total_donated_cents,
			COUNT(dn.id) FILTER (WHERE dn.status = 'completed') AS donations_count
		FROM globalcrusade.donors d
		LEFT JOIN globalcrusade.donations dn ON dn.donor_id = d.id
		GROUP BY d.id
		ORDER BY total_donated_cents DESC, d.created_at DESC`

	out := make([]*types.DonorTotals, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query); err != nil {
		return nil, fmt.Errorf("failed to fetch donor totals: %w", err)
	}

	return out, nil
}

func (r *DonorRepository) Count(ctx context.Context) (int, error) {
	query, args, err := psql().
		Select("COUNT(*)").
		From(donorTableName).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate donor count query: %w", err)
	}

	var count int
	if err := pgxscan.Get(ctx, r.pool, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count donors: %w", err)
	}

	return count, nil
}

func (r *DonorRepository) DeleteDonor(ctx context.Context, donorID string) error {
	query, args, err := psql().
		Delete(donorTableName).
		Where(sq.Eq{"id": donorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donor query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return utils.ErrorWrapOrNil(err, "failed to delete donor")
}
