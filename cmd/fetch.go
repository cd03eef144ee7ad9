package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/keccers/apod-frame/assets"
	"github.com/keccers/apod-frame/feed"
	"github.com/keccers/apod-frame/notify"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Ingest the newest feed entry and announce it",
		Description: `Fetches the feed and stores its newest entry. When the entry
		was already stored the run stops there; when it's new, the asset
		pipeline and the notification fan-out run after it, each best-effort.

		A failed stage degrades to a no-op for this run: the next scheduled
		invocation is the retry.`,
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

			entry, err := f.IngestLatest()
			if err != nil {
				return err
			}
			if entry == nil {
				// Nothing new: skip assets and notifications
				return nil
			}

			// Asset pipeline and fan-out are independent and tolerant of each
			// other's failure
			up := &assets.Uploader{}
			err = up.Init(ctx)
			if err != nil {
				log.WithError(err).Warn("Asset pipeline unavailable, skipping")
			} else {
				if err := up.MirrorMedia(ctx, entry); err != nil {
					log.WithError(err).Warn("Media mirroring failed")
				}
				if err := up.RenderShare(ctx, entry); err != nil {
					log.WithError(err).Warn("Share composition failed")
				}
			}

			n := &notify.Notifier{Force: c.Bool("force")}
			err = n.Init(ctx)
			if err != nil {
				return err
			}
			res, err := n.NotifyNewEntry(entry)
			if err != nil {
				log.WithError(err).Warn("Notification fan-out failed")
				return nil
			}
			log.WithFields(log.Fields{
				"delivered": res.Delivered,
				"pruned":    res.Pruned,
			}).Info("Fan-out complete")
			return nil
		},
	}
}
