package main

import (
	"fmt"
	"log"
	"os"

	"checkout-service/config"
	"checkout-service/internal/store"
	"checkout-service/internal/util"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "checkoutctl",
		Short:         "Operator tasks for the checkout service database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and logging and opens the database
func setup() (*config.Config, *store.Store, error) {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Printf("Failed to initialize logger: %v", err)
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
