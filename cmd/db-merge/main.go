package main

import (
	"context"
	"fmt"
	"os"

	"github.com/guestflow/platform/pkg/common/config"
	"github.com/guestflow/platform/pkg/common/database"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/merge"
)

// db-merge is a one-shot, re-runnable reconciliation: it copies rows that
// exist in the legacy database but are missing from the canonical one.
// Running it twice against an unchanged legacy database inserts nothing
// on the second run.
func main() {
	os.Exit(run())
}

func run() int {
	logger.Init()
	cfg := config.Load()

	src, err := database.OpenSQLiteFile(cfg.LegacyDBPath)
	if err != nil {
		logger.Log.WithError(err).Error("cannot open legacy database")
		fmt.Fprintf(os.Stderr, "cannot open legacy database %s: %v\n", cfg.LegacyDBPath, err)
		return 1
	}
	defer database.Close(src)

	dst, err := database.ConnectPostgres(cfg)
	if err != nil {
		logger.Log.WithError(err).Error("cannot open canonical database")
		fmt.Fprintf(os.Stderr, "cannot open canonical database: %v\n", err)
		return 1
	}
	defer database.Close(dst)

	result, err := merge.New(src, dst).Run(context.Background())
	if err != nil {
		logger.Log.WithError(err).Error("merge failed")
		fmt.Fprintf(os.Stderr, "merge failed: %v\n", err)
		return 1
	}

	fmt.Printf("Inserted per table: leads=%d, bookings=%d, costs=%d\n",
		result.Leads, result.Bookings, result.Costs)
	return 0
}
