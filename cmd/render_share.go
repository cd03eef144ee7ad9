package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/keccers/apod-frame/assets"
	"github.com/keccers/apod-frame/feed"
)

func renderShareCmd() *cli.Command {
	return &cli.Command{
		Name:  "render-share",
		Usage: "Render and upload the share composition for the latest entry",
		Description: `Captures a headless-browser screenshot of the share page,
		uploads it to object storage and records the resulting URL on the
		latest entry. Useful to regenerate the composition after the share
		page template changes.`,
		Action: func(c *cli.Context) error {
			dbc := setup()
			defer dbc.Close()
			ctx := c.Context

			f := &feed.Feed{}
			err := f.Init(ctx)
			if err != nil {
				return err
			}

			entry, err := f.LatestEntry()
			if err != nil {
				return err
			}
			if entry == nil {
				log.Warn("The store has no entries")
				return nil
			}

			up := &assets.Uploader{}
			err = up.Init(ctx)
			if err != nil {
				return err
			}
			return up.RenderShare(ctx, entry)
		},
	}
}
