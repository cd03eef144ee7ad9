package models

import "time"

// Model for the deliveries table
// The existence of a row is the sole gate preventing re-delivery for an entry
type Delivery struct {
	ID      int64     `db:"id"`
	EntryID int64     `db:"entry_id"`
	SentAt  time.Time `db:"sent_at"`
}
