package main

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	appfs "github.com/nickmarkin/AAA-Summarizer/fs"
)

// substituted in tests
var gooseRunFunc func(command string, db *sql.DB, dir string, args ...string) error = goose.Run

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db.DB, "migrations", args[1:]...)
}
