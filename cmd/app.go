package cmd

import (
	"os"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/keccers/apod-frame/conf"
	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/migrations"
)

// Execute runs the worker CLI
func Execute() {
	err := App().Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// App builds the CLI
func App() *cli.App {
	return &cli.App{
		Name:  "apod-frame-worker",
		Usage: "Mirror the astronomy picture of the day feed and notify subscribers",
		Description: `Ingests a single astronomy-photo-of-the-day RSS feed into a
		normalized store, derives share media for each entry, and announces new
		entries to opted-in subscribers at most once each.

		The worker is meant to be invoked on a schedule (cron), one command per
		run. Configuration is read from apod-config.yaml or APOD_-prefixed
		environment variables, e.g.:

		feed_url => APOD_FEED_URL
		db_path  => APOD_DB_PATH
		`,
		Commands: []*cli.Command{
			fetchCmd(),
			backfillCmd(),
			notifyCmd(),
			renderShareCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// Shared startup sequence: config, database connection, schema
func setup() *sqlx.DB {
	conf.LoadConfig()
	dbc := db.ConnectDB()
	migrations.Migrate()
	return dbc
}

func forceFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "force",
		Usage: "announce the latest entry even when it isn't dated today",
	}
}
