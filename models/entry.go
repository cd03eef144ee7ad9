package models

import "database/sql"

// Model for the entries table
// Date holds the pre-formatted display date (long form, UTC), not a raw timestamp
type Entry struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	Link           string         `db:"link"`
	Content        string         `db:"content"`
	Date           string         `db:"date"`
	Media          string         `db:"media"`
	ShareImage     sql.NullString `db:"share_image"`
	ShareImageEdit sql.NullString `db:"share_image_edit"`
}
