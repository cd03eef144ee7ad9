package feed

import (
	"database/sql"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/models"
)

// UpsertEntry inserts an entry keyed on its link
// On conflict the insert is a no-op and the method returns nil: callers must
// treat nil as "no new entry" and skip downstream asset and notification work.
// The unique index on link is the only concurrency guard, so two runs racing
// on the same link can't both see an inserted row.
func (f *Feed) UpsertEntry(entry *models.Entry) (*models.Entry, error) {
	res, err := db.GetDB().Exec(
		"INSERT INTO entries (title, link, content, date, media) VALUES (?, ?, ?, ?, ?) ON CONFLICT (link) DO NOTHING",
		entry.Title, entry.Link, entry.Content, entry.Date, entry.Media,
	)
	if err != nil {
		f.log.Println("Error querying the database:", err)
		return nil, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Conflict: the link is already stored
		return nil, nil
	}

	entry.ID, err = res.LastInsertId()
	if err != nil {
		f.log.Println("Error getting the last rowid:", err)
		return nil, err
	}
	return entry, nil
}

// LatestEntry returns the newest stored entry, or nil when the store is empty
// Insertion order is publication order (backfill runs oldest-first), so the
// highest id is the newest entry
func (f *Feed) LatestEntry() (*models.Entry, error) {
	entry := &models.Entry{}
	err := db.GetDB().Get(entry, "SELECT * FROM entries ORDER BY id DESC LIMIT 1")
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		f.log.Println("Error querying the database:", err)
		return nil, err
	}
	return entry, nil
}

// EntryByID returns a single entry, or nil if it doesn't exist
func (f *Feed) EntryByID(id int64) (*models.Entry, error) {
	entry := &models.Entry{}
	err := db.GetDB().Get(entry, "SELECT * FROM entries WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		f.log.Println("Error querying the database:", err)
		return nil, err
	}
	return entry, nil
}
