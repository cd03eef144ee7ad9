package models

import "database/sql"

// Model for the subscribers table
// NotificationToken and NotificationURL are set once the subscriber opts in to
// notifications; both absent is a legitimate state, not an error
type Subscriber struct {
	ID                int64          `db:"id"`
	Fid               int64          `db:"fid"`
	Username          string         `db:"username"`
	NotificationToken sql.NullString `db:"notification_token"`
	NotificationURL   sql.NullString `db:"notification_url"`
	FirstTime         bool           `db:"first_time"`
}
