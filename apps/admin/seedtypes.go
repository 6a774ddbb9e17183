package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core/activity"
	sqlxrepos "github.com/nickmarkin/AAA-Summarizer/storage/database/sqlx"
)

// seedTypes registers the stock activity type schedule, skipping keys that
// already exist so the command can be re-run safely.
func (cli *commandLine) seedTypes() error {
	ctx := context.Background()
	reg := activity.NewRegistry(sqlxrepos.NewActivityTypeRepository(cli.db))

	created, skipped := 0, 0
	for _, nat := range activity.DefaultSchedule() {
		if _, err := reg.Lookup(ctx, nat.Key); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, activity.ErrNotFound) {
			return err
		}
		if _, err := reg.Create(ctx, nat); err != nil {
			return errors.Wrapf(err, "registering %s", nat.Key)
		}
		created++
	}
	logger.Printf("activity types: %d created, %d skipped", created, skipped)
	return nil
}
