package cmd

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/keccers/apod-frame/assets"
	"github.com/keccers/apod-frame/feed"
	"github.com/keccers/apod-frame/queue"
)

func backfillCmd() *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Ingest the whole feed history, oldest entry first",
		Description: `Stores every feed item that isn't in the database yet,
		processing from the oldest to the newest so stored order matches
		publication order. Media for the new entries is mirrored into object
		storage through a rate-limited queue.

		Backfill never sends notifications.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "upload-interval",
				Value: 500 * time.Millisecond,
				Usage: "minimum delay between media uploads",
			},
		},
		Action: func(c *cli.Context) error {
			dbc := setup()
			defer dbc.Close()
			ctx := c.Context

			f := &feed.Feed{}
			err := f.Init(ctx)
			if err != nil {
				return err
			}

			// Mirroring is optional: without storage credentials the backfill
			// still ingests entries, just without share images
			var mirror feed.Mirrorer
			var q *queue.Queue
			up := &assets.Uploader{}
			err = up.Init(ctx)
			if err != nil {
				log.WithError(err).Warn("Object storage unavailable, skipping media mirroring")
			} else {
				mirror = up
				q = queue.New(4096, c.Duration("upload-interval"), 3)
			}

			return f.Backfill(mirror, q)
		},
	}
}
