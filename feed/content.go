package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/keccers/apod-frame/models"
	"github.com/keccers/apod-frame/utils"
)

var (
	youtubeID   = regexp.MustCompile(`embed/([a-zA-Z0-9_-]+)`)
	newlineRuns = regexp.MustCompile(`\n+`)
	spaceRuns   = regexp.MustCompile(`\s+`)
	stuckPeriod = regexp.MustCompile(`\.(\S)`)
)

// ExtractMedia picks the presentation media URL for an entry body
// An embedded video player wins over the first image; when neither is present
// the result is empty, which is a legitimate state and not an error
// Whether the reference is a player or a still image is re-derived where it
// matters, from the URL itself (see YouTubeThumbnail)
func ExtractMedia(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	if src, ok := doc.Find("iframe").First().Attr("src"); ok && src != "" {
		return src
	}
	if src, ok := doc.Find("img").First().Attr("src"); ok && src != "" {
		return src
	}
	return ""
}

// YouTubeThumbnail derives a canonical still-image URL from a YouTube player
// URL, for the cases where persisted media needs to be an image
// Returns an empty string when src is not a YouTube embed
func YouTubeThumbnail(src string) string {
	if !strings.Contains(src, "youtube.com") {
		return ""
	}
	m := youtubeID.FindStringSubmatch(src)
	if m == nil {
		return ""
	}
	return "https://img.youtube.com/vi/" + m[1] + "/hqdefault.jpg"
}

// CleanContent sanitizes an entry body down to a single HTML fragment
// containing only text and bold markup: anchors are replaced with their plain
// text, the media element and every other embed or line break is removed, and
// whitespace is normalized
func CleanContent(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	// Replace links with their plain-text content
	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(utils.EscapeHTMLEntities(s.Text()))
	})

	// The chosen media element goes too, along with every other embed and line break
	doc.Find("img, iframe, br").Remove()

	// Unwrap everything that isn't bold markup, keeping just the text
	doc.Find("body *").Not("b").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml(utils.EscapeHTMLEntities(s.Text()))
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return ""
	}

	body = newlineRuns.ReplaceAllString(body, " ")
	body = spaceRuns.ReplaceAllString(body, " ")
	// The feed often glues the next sentence onto a period
	body = stuckPeriod.ReplaceAllString(body, ". $1")
	body = strings.TrimSpace(body)

	if strings.HasPrefix(body, "Explanation:") {
		body = "<b>Explanation:</b>" + strings.TrimPrefix(body, "Explanation:")
	}

	return body
}

// FormatDate renders a timestamp as the long-form calendar date stored and
// compared across the system, always in UTC
func FormatDate(t time.Time) string {
	return t.UTC().Format("Monday, January 2, 2006")
}

// Normalize converts a parsed item into its stored form
func Normalize(item Item) *models.Entry {
	return &models.Entry{
		Title:   item.Title,
		Link:    item.Link,
		Content: CleanContent(item.Content),
		Date:    FormatDate(item.Date),
		Media:   ExtractMedia(item.Content),
	}
}
