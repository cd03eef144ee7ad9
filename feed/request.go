package feed

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Songmu/go-httpdate"
	"github.com/mmcdole/gofeed"
)

// FetchDocument retrieves the raw feed document
// Any transport failure or non-2xx status is wrapped in ErrFetch
func (f *Feed) FetchDocument() ([]byte, error) {
	if f.url == "" {
		return nil, fmt.Errorf("%w: empty feed URL", ErrFetch)
	}

	// Create the request
	req, err := http.NewRequest("GET", f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req = req.WithContext(f.ctx)
	req.Header.Set("User-Agent", "apod-frame-worker/1.0")

	// Send the request and read the data
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return data, nil
}

// ParseItems parses a raw feed document into items, preserving document order
// (newest first in this feed)
// Items with an empty title are skipped; a missing publish date falls back to
// the current time
func (f *Feed) ParseItems(doc []byte) ([]Item, error) {
	fp := gofeed.NewParser()
	parsed, err := fp.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, el := range parsed.Items {
		if el == nil {
			continue
		}

		// Skip items with an empty title
		if el.Title == "" {
			f.log.Println("Skipping entry with empty title")
			continue
		}

		date := time.Now()
		if el.PublishedParsed != nil && !el.PublishedParsed.IsZero() {
			date = *el.PublishedParsed
		} else if el.Published != "" {
			// gofeed couldn't parse the date; try a more lenient parser before
			// falling back to the current time
			if d, derr := httpdate.Str2Time(el.Published, nil); derr == nil && !d.IsZero() {
				date = d
			}
		}

		// The HTML body lives in content:encoded; some feed variants put it in
		// the description instead
		content := el.Content
		if content == "" {
			content = el.Description
		}

		items = append(items, Item{
			Title:   el.Title,
			Link:    el.Link,
			Date:    date,
			Content: content,
		})
	}

	return items, nil
}
