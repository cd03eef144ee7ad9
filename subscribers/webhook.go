package subscribers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/keccers/apod-frame/db"
)

// ErrInvalidEvent is returned when a frame-host event can't be decoded or
// names no subscriber
var ErrInvalidEvent = errors.New("invalid frame-host event")

// WebhookEvent is the envelope a frame host posts on opt-in and opt-out:
// two base64-encoded JSON segments
type WebhookEvent struct {
	Header  string `json:"header"`
	Payload string `json:"payload"`
}

type webhookHeader struct {
	Fid int64 `json:"fid"`
}

type notificationDetails struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

type webhookPayload struct {
	Event               string               `json:"event"`
	NotificationDetails *notificationDetails `json:"notificationDetails"`
}

// HandleWebhookEvent records or clears the delivery details carried by a
// frame-host event for the subscriber identified in its header
// A payload without delivery details means the subscriber turned
// notifications off
func HandleWebhookEvent(ev WebhookEvent) error {
	if ev.Header == "" || ev.Payload == "" {
		return fmt.Errorf("%w: missing header or payload", ErrInvalidEvent)
	}

	h := webhookHeader{}
	raw, err := decodeSegment(ev.Header)
	if err == nil {
		err = json.Unmarshal(raw, &h)
	}
	if err != nil {
		return fmt.Errorf("%w: bad header: %v", ErrInvalidEvent, err)
	}
	if h.Fid == 0 {
		return fmt.Errorf("%w: header names no fid", ErrInvalidEvent)
	}

	p := webhookPayload{}
	raw, err = decodeSegment(ev.Payload)
	if err == nil {
		err = json.Unmarshal(raw, &p)
	}
	if err != nil {
		return fmt.Errorf("%w: bad payload: %v", ErrInvalidEvent, err)
	}

	if p.NotificationDetails == nil {
		return DisableNotifications(h.Fid)
	}
	if p.NotificationDetails.URL == "" || p.NotificationDetails.Token == "" {
		return fmt.Errorf("%w: incomplete notification details", ErrInvalidEvent)
	}

	// The event may arrive before the subscriber ever opened the frame
	_, err = db.GetDB().Exec(
		"INSERT INTO subscribers (fid, username) VALUES (?, '') ON CONFLICT (fid) DO NOTHING",
		h.Fid,
	)
	if err != nil {
		return err
	}
	return SaveNotificationDetails(h.Fid, p.NotificationDetails.URL, p.NotificationDetails.Token)
}

// Frame hosts sign with base64url, but some relays re-encode with the
// standard alphabet
func decodeSegment(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
