package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/keccers/apod-frame/feed"
	"github.com/keccers/apod-frame/notify"
)

func notifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Announce the latest stored entry to subscribers",
		Description: `Runs the notification fan-out for the newest entry in the
		store. An entry that has already been announced, or that isn't dated
		today, is skipped; pass --force to announce a stale entry anyway.`,
		Flags: []cli.Flag{
			forceFlag(),
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

			entry, err := f.LatestEntry()
			if err != nil {
				return err
			}
			if entry == nil {
				log.Warn("The store has no entries to announce")
				return nil
			}

			n := &notify.Notifier{Force: c.Bool("force")}
			err = n.Init(ctx)
			if err != nil {
				return err
			}
			res, err := n.NotifyNewEntry(entry)
			if err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"delivered": res.Delivered,
				"pruned":    res.Pruned,
			}).Info("Fan-out complete")
			return nil
		},
	}
}
