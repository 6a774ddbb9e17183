package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	db   *sqlx.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]                       - run database migrations (up, down, status, ...)")
	fmt.Println("  seedtypes                                    - register the stock activity type schedule")
	fmt.Println("  importroster -file FILE [-update]            - import a faculty roster CSV")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importRosterCmd := flag.NewFlagSet("importroster", flag.ExitOnError)
	importRosterFile := importRosterCmd.String("file", "", "Path to the roster CSV file.")
	importRosterUpdate := importRosterCmd.Bool("update", false, "Update members already on the roster.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedtypes":
		return cli.seedTypes()
	case "importroster":
		if err := importRosterCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importRosterFile == "" {
			importRosterCmd.Usage()
			return errHelp
		}
		return cli.importRoster(*importRosterFile, *importRosterUpdate)
	default:
		cli.printUsage()
		return errHelp
	}
}
