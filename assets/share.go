package assets

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/spf13/viper"

	"github.com/keccers/apod-frame/db"
	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/utils"
)

// Watchdog for a stuck browser; the render is killed when it trips
const renderTimeout = 90 * time.Second

// RenderShare renders the share page in a headless browser, captures a
// full-page screenshot and uploads it under the share_images/ namespace,
// recording the public URL as the entry's share composition
// The screenshot goes through a temporary local file that is removed on every
// exit path
func (u *Uploader) RenderShare(ctx context.Context, entry *models.Entry) error {
	pageURL := viper.GetString("share_page_url")
	if pageURL == "" {
		return fmt.Errorf("%w: share_page_url is not configured", ErrRender)
	}

	tmp, err := os.CreateTemp("", "share-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	renderCtx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()
	browserCtx, cancelBrowser := chromedp.NewContext(renderCtx)
	defer cancelBrowser()

	u.log.Println("Rendering share page", pageURL)

	var shot []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.FullScreenshot(&shot, 90),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	err = os.WriteFile(tmpPath, shot, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}

	file, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	defer file.Close()

	key := "share_images/" + utils.Slugify(entry.Title) + ".png"
	url, err := u.Upload(ctx, key, file, "image/png")
	if err != nil {
		return err
	}

	_, err = db.GetDB().Exec("UPDATE entries SET share_image_edit = ? WHERE id = ?", url, entry.ID)
	if err != nil {
		u.log.Println("Error querying the database:", err)
		return err
	}
	entry.ShareImageEdit = sql.NullString{String: url, Valid: true}

	u.log.Println("Share composition uploaded to", url)
	return nil
}
