package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/viper"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/queue"
)

// A feed document with items deliberately out of publication order
const backfillFeedDoc = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Astronomy Picture of the Day</title>
<link>https://apod.nasa.gov/</link>
<item>
<title>Middle Entry</title>
<link>https://apod.nasa.gov/apod/ap250102.html</link>
<pubDate>Thu, 02 Jan 2025 06:00:00 GMT</pubDate>
<description><![CDATA[Explanation: Day two.<img src="https://x/2.jpg">]]></description>
</item>
<item>
<title>Newest Entry</title>
<link>https://apod.nasa.gov/apod/ap250103.html</link>
<pubDate>Fri, 03 Jan 2025 06:00:00 GMT</pubDate>
<description><![CDATA[Explanation: Day three.<img src="https://x/3.jpg">]]></description>
</item>
<item>
<title>Oldest Entry</title>
<link>https://apod.nasa.gov/apod/ap250101.html</link>
<pubDate>Wed, 01 Jan 2025 06:00:00 GMT</pubDate>
<description><![CDATA[Explanation: Day one.<img src="https://x/1.jpg">]]></description>
</item>
</channel>
</rss>`

// Test double for the asset mirror, optionally refusing every upload
type mirrorStub struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (m *mirrorStub) MirrorMedia(ctx context.Context, entry *models.Entry) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fail {
		return errors.New("storage offline")
	}
	return nil
}

func newFeedServer(t *testing.T, doc string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(doc))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBackfillStoresOldestFirst(t *testing.T) {
	srv := newFeedServer(t, backfillFeedDoc)
	viper.Set("feed_url", srv.URL)
	defer viper.Set("feed_url", "")
	f := setupTestDB(t)

	mirror := &mirrorStub{}
	err := f.Backfill(mirror, queue.New(16, 0, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	// Insertion order must match publication order regardless of document order
	titles := []string{}
	err = db.GetDB().Select(&titles, "SELECT title FROM entries ORDER BY id")
	if err != nil {
		t.Fatal(err)
	}
	expect := []string{"Oldest Entry", "Middle Entry", "Newest Entry"}
	if len(titles) != len(expect) {
		t.Fatalf("Expected %d entries, but got %d", len(expect), len(titles))
	}
	for i := range expect {
		if titles[i] != expect[i] {
			t.Fatalf("Expected entry %d to be %q, but got %q", i, expect[i], titles[i])
		}
	}

	if mirror.calls != 3 {
		t.Fatalf("Expected the mirror to run for all 3 new entries, but it ran %d times", mirror.calls)
	}
}

func TestBackfillSkipsExistingEntries(t *testing.T) {
	srv := newFeedServer(t, backfillFeedDoc)
	viper.Set("feed_url", srv.URL)
	defer viper.Set("feed_url", "")
	f := setupTestDB(t)

	err := f.Backfill(nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	// A second run over the same document must not duplicate anything
	err = f.Backfill(nil, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	var count int
	err = db.GetDB().Get(&count, "SELECT COUNT(*) FROM entries")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("Expected 3 entries after two runs, but got %d", count)
	}
}

func TestBackfillToleratesFailingMirror(t *testing.T) {
	srv := newFeedServer(t, backfillFeedDoc)
	viper.Set("feed_url", srv.URL)
	defer viper.Set("feed_url", "")
	f := setupTestDB(t)

	mirror := &mirrorStub{fail: true}
	err := f.Backfill(mirror, queue.New(16, 0, 0))
	if err != nil {
		t.Fatalf("Expected mirror failures to be swallowed, but got %s", err)
	}

	var count int
	err = db.GetDB().Get(&count, "SELECT COUNT(*) FROM entries")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("Expected every entry stored despite mirror failures, but got %d", count)
	}
	if mirror.calls == 0 {
		t.Fatal("Expected the mirror to have been attempted")
	}
}
