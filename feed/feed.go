package feed

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Timeout for HTTP requests
const requestTimeout = 20 * time.Second

// Error returned when the feed is unreachable or malformed
// The caller doesn't retry; the next scheduled run is the retry
var ErrFetch = errors.New("feed fetch failed")

// Item is a parsed feed entry before normalization
type Item struct {
	Title   string
	Link    string
	Date    time.Time
	Content string
}

// Feed is the object that manages fetching and ingesting the feed
type Feed struct {
	ctx    context.Context
	log    *log.Logger
	client *http.Client
	url    string
}

// Init the object
func (f *Feed) Init(ctx context.Context) error {
	f.ctx = ctx

	// Init the logger
	f.log = log.New(os.Stdout, "feed: ", log.Ldate|log.Ltime|log.LUTC)

	// Init the HTTP client
	f.client = &http.Client{
		Timeout: requestTimeout,
	}

	f.url = viper.GetString("feed_url")

	return nil
}
