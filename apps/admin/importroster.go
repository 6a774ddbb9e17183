package main

import (
	"context"
	"os"

	"github.com/nickmarkin/AAA-Summarizer/core"
	"github.com/nickmarkin/AAA-Summarizer/core/faculty"
	logsvc "github.com/nickmarkin/AAA-Summarizer/services/logger"
	sqlxrepos "github.com/nickmarkin/AAA-Summarizer/storage/database/sqlx"
)

func (cli *commandLine) importRoster(path string, updateExisting bool) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck

	validate, _ := core.NewValidator()
	svc := faculty.NewService(sqlxrepos.NewFacultyRepository(cli.db), logsvc.NewStdLogger(logger), validate)

	stats, err := svc.ImportRoster(context.Background(), file, updateExisting)
	if err != nil {
		return err
	}
	logger.Printf(
		"roster import: %d created, %d updated, %d skipped, %d errors",
		stats.Created, stats.Updated, stats.Skipped, len(stats.Errors),
	)
	for _, rowErr := range stats.Errors {
		logger.Printf("  %s", rowErr)
	}
	return nil
}
