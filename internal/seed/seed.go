// Package seed loads initial content so a fresh deployment has a
// working donation page before the admin has uploaded anything.
package seed

import (
	"context"
	"fmt"

	"globalcrusade/internal/store"
	"globalcrusade/pkg/types"
)

// SeedStats creates the singleton stats row with its defaults.
func SeedStats(ctx context.Context, repo *store.StatsRepository) (*types.CrusadeStats, error) {
	stats, err := repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed crusade stats: %w", err)
	}

	return stats, nil
}

// SeedTestimonies loads a starter set of testimonies. Existing rows are
// left alone; seeding an already-populated table is a no-op.
func SeedTestimonies(ctx context.Context, repo *store.TestimonyRepository) (int, error) {
	existing, err := repo.Testimonies(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing testimonies: %w", err)
	}

	if len(existing) > 0 {
		return 0, nil
	}

	testimonies := []*types.Testimony{
		{
			Name:          "Chinyere A.",
			Location:      "Port Harcourt, Nigeria",
			TestimonyText: "I came to the crusade ground with a tumor the doctors could not operate on. I went home healed. All glory to Jesus!",
			IsActive:      true,
			DisplayOrder:  1,
		},
		{
			Name:          "Emmanuel K.",
			Location:      "Accra, Ghana",
			TestimonyText: "My whole family gave their lives to Christ at the crusade. We now serve together in our local church.",
			IsActive:      true,
			DisplayOrder:  2,
		},
		{
			Name:          "Grace M.",
			Location:      "Nairobi, Kenya",
			TestimonyText: "After years of barrenness, we received prayer at the crusade. Today we hold our baby girl.",
			IsActive:      true,
			DisplayOrder:  3,
		},
	}

	for _, t := range testimonies {
		if err := repo.CreateTestimony(ctx, t); err != nil {
			return 0, fmt.Errorf("failed to seed testimony for %s: %w", t.Name, err)
		}
	}

	return len(testimonies), nil
}
