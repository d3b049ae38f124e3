package main

import (
	"context"
	"fmt"

	"globalcrusade/internal/db"
	"globalcrusade/internal/seed"
	"globalcrusade/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Seeding crusade stats...")
		stats, err := seed.SeedStats(ctx, store.NewStatsRepository(pool))
		if err != nil {
			return fmt.Errorf("failed to seed stats: %w", err)
		}
		pp.Println(stats)

		logrus.Info("Seeding testimonies...")
		count, err := seed.SeedTestimonies(ctx, store.NewTestimonyRepository(pool))
		if err != nil {
			return fmt.Errorf("failed to seed testimonies: %w", err)
		}

		logrus.WithField("created", count).Info("Seed complete")

		return nil
	},
}
