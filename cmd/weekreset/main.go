// Command weekreset pre-creates the current week's record for every
// user. Run from cron early on Monday so users start the week with a
// fresh empty record instead of waiting for their first request to
// create it lazily.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pcrawford/timeclock/internal/database"
	"github.com/pcrawford/timeclock/internal/logging"
	"github.com/pcrawford/timeclock/internal/store"
	"github.com/pcrawford/timeclock/internal/week"
)

func main() {
	dbPath := flag.String("db", "timeclock.db", "path to the SQLite database")
	force := flag.Bool("force", false, "run even if today is not Monday")
	flag.Parse()

	logger := logging.Setup(os.Getenv("TIMECLOCK_LOG_LEVEL"))

	today := time.Now()
	if today.Weekday() != time.Monday && !*force {
		logger.Warn("today is not Monday, nothing to do", "weekday", today.Weekday().String())
		return
	}
	monday := week.Monday(today)

	db, err := database.Open(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := store.NewUserStore(db)
	records := store.NewWeeklyRecordStore(db)

	all, err := users.List()
	if err != nil {
		logger.Error("list users", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var createdCount, skippedCount, failedCount int

	for _, u := range all {
		// Reruns are common (cron retries, -force backfills); a plain
		// read first avoids taking write locks for weeks that exist.
		existing, err := records.Get(u.ID, monday)
		if err != nil {
			logger.Error("check week", "user", u.Username, "error", err)
			failedCount++
			continue
		}
		if existing != nil {
			skippedCount++
			continue
		}

		var created bool
		// The live server shares this database; retry briefly when a
		// write hits a busy lock.
		backoff := retry.WithMaxRetries(3, retry.NewFibonacci(100*time.Millisecond))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			var err error
			_, created, err = records.GetOrCreate(u.ID, monday)
			if err != nil && isBusy(err) {
				return retry.RetryableError(err)
			}
			return err
		})
		if err != nil {
			logger.Error("create week", "user", u.Username, "error", err)
			failedCount++
			continue
		}
		if created {
			logger.Info("created week", "user", u.Username, "week_start", monday.Format("2006-01-02"))
			createdCount++
		} else {
			skippedCount++
		}
	}

	logger.Info("week reset complete",
		"created", createdCount,
		"already_existed", skippedCount,
		"failed", failedCount,
	)
	if failedCount > 0 {
		os.Exit(1)
	}
}

func isBusy(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database is locked")
}
