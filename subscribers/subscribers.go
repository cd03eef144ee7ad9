// Package subscribers implements the subscriber registry: fid-keyed profiles
// with optional notification delivery details
package subscribers

import (
	"database/sql"

	log "github.com/sirupsen/logrus"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/models"
)

// WithToken returns every subscriber that has opted in to notifications
func WithToken() ([]models.Subscriber, error) {
	rows := []models.Subscriber{}
	err := db.GetDB().Select(&rows, "SELECT * FROM subscribers WHERE notification_token IS NOT NULL")
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error("Error querying the database: ", err)
		return nil, err
	}
	return rows, nil
}

// Upsert creates a subscriber on first contact, or refreshes the username of
// an existing one
// The merge is field-wise: notification token and URL are never touched here,
// so an incoming profile without delivery details can't clobber stored ones
func Upsert(fid int64, username string) (*models.Subscriber, error) {
	_, err := db.GetDB().Exec(
		"INSERT INTO subscribers (fid, username) VALUES (?, ?) ON CONFLICT (fid) DO UPDATE SET username = excluded.username",
		fid, username,
	)
	if err != nil {
		log.Error("Error querying the database: ", err)
		return nil, err
	}
	return ByFid(fid)
}

// Register creates or refreshes a subscriber from the frame-host context
func Register(fc models.FrameContext) (*models.Subscriber, error) {
	if fc.User.Fid == 0 {
		return nil, ErrInvalidEvent
	}
	return Upsert(fc.User.Fid, fc.User.Username)
}

// ByFid returns a single subscriber, or nil if it doesn't exist
func ByFid(fid int64) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := db.GetDB().Get(sub, "SELECT * FROM subscribers WHERE fid = ?", fid)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.Error("Error querying the database: ", err)
		return nil, err
	}
	return sub, nil
}

// Exists reports whether a subscriber with this fid is already registered
func Exists(fid int64) (bool, error) {
	sub, err := ByFid(fid)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}

// SaveNotificationDetails records the delivery endpoint and token a subscriber
// opted in with
func SaveNotificationDetails(fid int64, url string, token string) error {
	res, err := db.GetDB().Exec(
		"UPDATE subscribers SET notification_url = ?, notification_token = ? WHERE fid = ?",
		url, token, fid,
	)
	if err != nil {
		log.Error("Error querying the database: ", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearToken removes a notification token the delivery endpoint reported as
// invalid, which stops future delivery attempts to that subscriber
func ClearToken(token string) error {
	_, err := db.GetDB().Exec(
		"UPDATE subscribers SET notification_token = NULL WHERE notification_token = ?",
		token,
	)
	if err != nil {
		log.Error("Error querying the database: ", err)
	}
	return err
}

// DisableNotifications drops a subscriber's delivery details, which removes
// them from every future fan-out
func DisableNotifications(fid int64) error {
	_, err := db.GetDB().Exec(
		"UPDATE subscribers SET notification_url = NULL, notification_token = NULL WHERE fid = ?",
		fid,
	)
	if err != nil {
		log.Error("Error querying the database: ", err)
	}
	return err
}

// SetSeen marks that a subscriber has opened the frame at least once
func SetSeen(fid int64) error {
	_, err := db.GetDB().Exec("UPDATE subscribers SET first_time = 0 WHERE fid = ?", fid)
	if err != nil {
		log.Error("Error querying the database: ", err)
	}
	return err
}
