package main

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_run(t *testing.T) {
	cli := &commandLine{db: &sqlx.DB{}}

	var gotCommand string
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand = command
		return nil
	}

	tests := []cliTest{
		{name: "no command prints usage", args: []string{"admin"}, wantErr: errHelp},
		{name: "unknown command prints usage", args: []string{"admin", "frobnicate"}, wantErr: errHelp},
		{name: "migrate without subcommand prints usage", args: []string{"admin", "migrate"}, wantErr: errHelp},
		{name: "migrate dispatches to goose", args: []string{"admin", "migrate", "status"}},
		{name: "importroster without file prints usage", args: []string{"admin", "importroster"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if gotCommand != "status" {
		t.Errorf("goose command = %q, want status", gotCommand)
	}
}
