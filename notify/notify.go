// Package notify implements the notification fan-out engine: it announces a
// new entry to every opted-in subscriber at most once per entry
package notify

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/feed"
	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/subscribers"
	"github.com/keccers/apod-frame/utils"
)

// The delivery endpoint accepts at most 100 tokens per request
const batchSize = 100

// The delivery endpoint truncates titles beyond 32 characters
const titleMaxLen = 32

// Timeout for notification POSTs
const requestTimeout = 20 * time.Second

// Error returned when a notification endpoint is unreachable or rejects a batch
var ErrDelivery = errors.New("notification delivery failed")

// Result reports the outcome of a fan-out
type Result struct {
	Delivered int
	Pruned    int
}

type payload struct {
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	TargetURL      string   `json:"targetUrl"`
	Tokens         []string `json:"tokens"`
}

type endpointResponse struct {
	InvalidTokens []string `json:"invalidTokens"`
}

// Notifier is the object that fans a new entry out to subscribers
type Notifier struct {
	// Force skips the freshness gate, for manual re-announcements
	Force bool

	ctx       context.Context
	log       *log.Logger
	client    *http.Client
	rng       *rand.Rand
	targetURL string
}

// Init the object
func (n *Notifier) Init(ctx context.Context) error {
	n.ctx = ctx

	// Init the logger
	n.log = log.New(os.Stdout, "notify: ", log.Ldate|log.Ltime|log.LUTC)

	// Init the HTTP client
	n.client = &http.Client{
		Timeout: requestTimeout,
	}

	n.rng = rand.New(rand.NewSource(time.Now().UnixNano()))

	// Notifications open the app itself unless a dedicated target is configured
	n.targetURL = viper.GetString("notifications.target_url")
	if n.targetURL == "" {
		n.targetURL = viper.GetString("base_url")
	}

	return nil
}

// SetRand replaces the random source used to pick message bodies
func (n *Notifier) SetRand(rng *rand.Rand) {
	n.rng = rng
}

// NotifyNewEntry announces an entry to every subscriber with a notification
// token, batching per delivery endpoint
// The delivery record is the idempotence gate: once it exists the entry is
// never announced again. The record is written only after the whole attempt
// completes, so a crash mid-fan-out leaves the entry observably unsent and the
// next scheduled run retries it.
func (n *Notifier) NotifyNewEntry(entry *models.Entry) (Result, error) {
	res := Result{}
	if entry == nil {
		return res, nil
	}

	// Idempotence gate
	sent, err := n.delivered(entry.ID)
	if err != nil {
		return res, err
	}
	if sent {
		n.log.Printf("Entry %d was already announced, skipping\n", entry.ID)
		return res, nil
	}

	// Freshness gate: a stale latest entry is not re-announced
	if !n.Force && entry.Date != feed.FormatDate(time.Now()) {
		n.log.Println("No new entry for today, skipping notifications")
		return res, nil
	}

	subs, err := subscribers.WithToken()
	if err != nil {
		return res, err
	}
	if len(subs) == 0 {
		n.log.Println("No opted-in subscribers found")
		return res, nil
	}

	// A subscriber trusts exactly one delivery endpoint at a time
	groups := lo.GroupBy(subs, func(s models.Subscriber) string {
		return s.NotificationURL.String
	})

	title := defaultTitle
	if entry.Title != "" {
		title = utils.Truncate(entry.Title, titleMaxLen)
	}

	for url, group := range groups {
		if url == "" {
			// A token without an endpoint can't be delivered to
			continue
		}

		tokens := lo.Map(group, func(s models.Subscriber, _ int) string {
			return s.NotificationToken.String
		})
		batches := lo.Chunk(tokens, batchSize)
		n.log.Printf("Sending notifications to %d subscribers at %s in %d batches\n", len(tokens), url, len(batches))

		for i, batch := range batches {
			invalid, err := n.sendBatch(url, payload{
				NotificationID: uuid.NewString(),
				Title:          title,
				Body:           pickBody(n.rng),
				TargetURL:      n.targetURL,
				Tokens:         batch,
			})
			if err != nil {
				// One unreachable recipient group must not abort the fan-out
				n.log.Printf("Error sending batch %d to %s: %s\n", i+1, url, err)
				continue
			}
			res.Delivered += len(batch) - len(invalid)

			// Tokens the endpoint rejected are expected steady-state cleanup,
			// not an error
			for _, tok := range invalid {
				if err := subscribers.ClearToken(tok); err == nil {
					res.Pruned++
				}
			}
		}
	}

	err = n.markDelivered(entry.ID)
	if err != nil {
		return res, err
	}

	n.log.Printf("Fan-out for entry %d done: %d delivered, %d pruned\n", entry.ID, res.Delivered, res.Pruned)
	return res, nil
}

// Sends one batch and returns the tokens the endpoint rejected
func (n *Notifier) sendBatch(url string, p payload) ([]string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(n.ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrDelivery, resp.Status)
	}

	out := endpointResponse{}
	err = json.NewDecoder(resp.Body).Decode(&out)
	if err != nil {
		// A 2xx without a parseable body still counts as delivered
		return nil, nil
	}
	return out.InvalidTokens, nil
}

// Checks the idempotence gate for an entry
func (n *Notifier) delivered(entryID int64) (bool, error) {
	d := &models.Delivery{}
	err := db.GetDB().Get(d, "SELECT * FROM deliveries WHERE entry_id = ?", entryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		n.log.Println("Error querying the database:", err)
		return false, err
	}
	return true, nil
}

// Writes the delivery record; the unique index on entry_id makes this safe
// against a concurrent run racing on the same entry
func (n *Notifier) markDelivered(entryID int64) error {
	_, err := db.GetDB().Exec(
		"INSERT INTO deliveries (entry_id, sent_at) VALUES (?, ?) ON CONFLICT (entry_id) DO NOTHING",
		entryID, time.Now(),
	)
	if err != nil {
		n.log.Println("Error querying the database:", err)
	}
	return err
}
