package feed

import (
	"context"
	"sort"

	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/queue"
)

// Mirrorer copies an entry's media into owned object storage
type Mirrorer interface {
	MirrorMedia(ctx context.Context, entry *models.Entry) error
}

// IngestLatest fetches the feed and stores its newest item
// Returns the inserted entry, or nil when the item was already stored
func (f *Feed) IngestLatest() (*models.Entry, error) {
	f.log.Println("Fetching latest feed entry")

	doc, err := f.FetchDocument()
	if err != nil {
		f.log.Println("Error fetching the feed:", err)
		return nil, err
	}
	items, err := f.ParseItems(doc)
	if err != nil {
		f.log.Println("Error parsing the feed:", err)
		return nil, err
	}
	if len(items) == 0 {
		f.log.Println("No entries found in the feed")
		return nil, nil
	}

	entry, err := f.UpsertEntry(Normalize(items[0]))
	if err != nil {
		return nil, err
	}
	if entry == nil {
		f.log.Println("No new post detected")
		return nil, nil
	}

	f.log.Println("New post detected and saved:", entry.Title)
	return entry, nil
}

// Backfill ingests the whole feed from the oldest item to the newest, so
// insertion order in the store matches publication order
// Media mirroring for the new rows is paced through the queue; a failed mirror
// never fails the backfill
func (f *Feed) Backfill(mirror Mirrorer, q *queue.Queue) error {
	f.log.Println("Starting full feed backfill (oldest to newest)")

	doc, err := f.FetchDocument()
	if err != nil {
		f.log.Println("Error fetching the feed:", err)
		return err
	}
	items, err := f.ParseItems(doc)
	if err != nil {
		f.log.Println("Error parsing the feed:", err)
		return err
	}

	// Oldest first
	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})

	inserted := 0
	for _, item := range items {
		if err := f.ctx.Err(); err != nil {
			return err
		}

		entry, err := f.UpsertEntry(Normalize(item))
		if err != nil {
			// Error was already logged; move on to the next item
			continue
		}
		if entry == nil {
			f.log.Println("Skipping", item.Title, "(already exists)")
			continue
		}
		inserted++

		if mirror != nil && q != nil && entry.Media != "" {
			entry := entry
			err = q.Submit(func(ctx context.Context) error {
				return mirror.MirrorMedia(ctx, entry)
			})
			if err != nil {
				f.log.Println("Could not queue media mirror for", entry.Title, ":", err)
			}
		}
	}

	f.log.Printf("Backfill stored %d new entries out of %d feed items\n", inserted, len(items))

	if q != nil {
		return q.Run(f.ctx)
	}
	return nil
}
