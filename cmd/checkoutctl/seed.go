package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"checkout-service/internal/database"
	"checkout-service/internal/redisclient"
	"checkout-service/internal/seed"
	"checkout-service/internal/service"
	"checkout-service/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func seedCmd() *cobra.Command {
	var (
		products   int
		payments   int
		randomSeed int64
		migrate    bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo products and payments",
		Long: `Insert randomly generated products and payments.

Payments are spread over the new products with random methods and statuses.
The cached product listing is dropped afterwards so the new catalog shows up at once.

Examples:
  checkoutctl seed
  checkoutctl seed --products 10 --payments 20 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			defer util.SyncLogger()
			logger := util.GetLogger()

			if migrate {
				if err := database.RunMigrations(db.GetDB().DB, logger); err != nil {
					return err
				}
			}

			if randomSeed == 0 {
				randomSeed = time.Now().UnixNano()
			}

			ctx := cmd.Context()
			result, err := seed.New(db, rand.New(rand.NewSource(randomSeed))).Run(ctx, products, payments)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d products and %d payments (seed %d)\n", result.Products, result.Payments, randomSeed)

			dropProductCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
			return nil
		},
	}

	cmd.Flags().IntVar(&products, "products", seed.DefaultProducts, "number of products to insert")
	cmd.Flags().IntVar(&payments, "payments", seed.DefaultPayments, "number of payments to insert")
	cmd.Flags().Int64Var(&randomSeed, "seed", 0, "random seed, 0 picks one from the clock")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply pending migrations first")

	return cmd
}

// dropProductCache is best effort; a stale listing expires on its own
func dropProductCache(ctx context.Context, addr, password string, db int, logger *zap.Logger) {
	client, err := redisclient.NewClient(addr, password, db)
	if err != nil {
		logger.Warn("Skipping product cache invalidation", zap.Error(err))
		return
	}
	defer client.Close()

	if err := client.Delete(ctx, service.AllProductsCacheKey); err != nil {
		logger.Warn("Failed to drop cached product listing", zap.Error(err))
	}
}
