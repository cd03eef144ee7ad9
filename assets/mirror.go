package assets

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/feed"
	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/utils"
)

// MirrorMedia downloads the entry's media and uploads a copy under the
// rss-images/ namespace, recording the public URL on the entry
// A video reference is mirrored through its canonical thumbnail image since
// the persisted copy needs to be an image. Empty media is skipped silently.
func (u *Uploader) MirrorMedia(ctx context.Context, entry *models.Entry) error {
	media := entry.Media
	if media == "" {
		return nil
	}
	if thumb := feed.YouTubeThumbnail(media); thumb != "" {
		media = thumb
	}

	u.log.Println("Mirroring media for", entry.Title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %s fetching media", ErrUpload, resp.Status)
	}

	key := "rss-images/" + utils.Slugify(entry.Title) + ".jpg"
	url, err := u.Upload(ctx, key, resp.Body, "image/jpeg")
	if err != nil {
		return err
	}

	_, err = db.GetDB().Exec("UPDATE entries SET share_image = ? WHERE id = ?", url, entry.ID)
	if err != nil {
		u.log.Println("Error querying the database:", err)
		return err
	}
	entry.ShareImage = sql.NullString{String: url, Valid: true}

	u.log.Println("Mirrored media to", url)
	return nil
}
