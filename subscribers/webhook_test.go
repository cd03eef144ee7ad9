package subscribers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/keccers/apod-frame/models"
)

func frameContextWith(fid int64, username string) models.FrameContext {
	return models.FrameContext{User: models.FrameUser{Fid: fid, Username: username}}
}

func encodeSegment(t *testing.T, v interface{}) string {
	t.Helper()

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func TestHandleWebhookEventSavesDetails(t *testing.T) {
	setupTestDB(t)

	ev := WebhookEvent{
		Header: encodeSegment(t, webhookHeader{Fid: 99}),
		Payload: encodeSegment(t, webhookPayload{
			Event: "notifications_enabled",
			NotificationDetails: &notificationDetails{
				URL:   "https://notify.example.com",
				Token: "tok-99",
			},
		}),
	}
	err := HandleWebhookEvent(ev)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	sub, err := ByFid(99)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if sub == nil {
		t.Fatal("Expected the event to create the subscriber row")
	}
	if !sub.NotificationToken.Valid || sub.NotificationToken.String != "tok-99" {
		t.Fatalf("Expected the token to be stored, but got %+v", sub.NotificationToken)
	}
	if !sub.NotificationURL.Valid || sub.NotificationURL.String != "https://notify.example.com" {
		t.Fatalf("Expected the URL to be stored, but got %+v", sub.NotificationURL)
	}
}

func TestHandleWebhookEventDisables(t *testing.T) {
	setupTestDB(t)

	_, err := Upsert(7, "lurker")
	if err != nil {
		t.Fatal(err)
	}
	err = SaveNotificationDetails(7, "https://notify.example.com", "tok-7")
	if err != nil {
		t.Fatal(err)
	}

	ev := WebhookEvent{
		Header:  encodeSegment(t, webhookHeader{Fid: 7}),
		Payload: encodeSegment(t, webhookPayload{Event: "notifications_disabled"}),
	}
	err = HandleWebhookEvent(ev)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	sub, err := ByFid(7)
	if err != nil {
		t.Fatal(err)
	}
	if sub.NotificationToken.Valid || sub.NotificationURL.Valid {
		t.Fatalf("Expected delivery details to be cleared, but got %+v", sub)
	}
}

func TestHandleWebhookEventRejectsGarbage(t *testing.T) {
	setupTestDB(t)

	tt := []struct {
		name string
		ev   WebhookEvent
	}{
		{"empty", WebhookEvent{}},
		{"not base64", WebhookEvent{Header: "~~~", Payload: "~~~"}},
		{"no fid", WebhookEvent{
			Header:  encodeSegment(t, webhookHeader{}),
			Payload: encodeSegment(t, webhookPayload{Event: "frame_added"}),
		}},
		{"incomplete details", WebhookEvent{
			Header: encodeSegment(t, webhookHeader{Fid: 3}),
			Payload: encodeSegment(t, webhookPayload{
				Event:               "frame_added",
				NotificationDetails: &notificationDetails{URL: "https://notify.example.com"},
			}),
		}},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			err := HandleWebhookEvent(tc.ev)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("Expected ErrInvalidEvent, but got %v", err)
			}
		})
	}
}

func TestRegisterRequiresFid(t *testing.T) {
	setupTestDB(t)

	_, err := Register(frameContextWith(0, "nobody"))
	if !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("Expected ErrInvalidEvent, but got %v", err)
	}

	sub, err := Register(frameContextWith(12, "astrid"))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	if sub == nil || sub.Fid != 12 || sub.Username != "astrid" {
		t.Fatalf("Expected a registered subscriber, but got %+v", sub)
	}
}
