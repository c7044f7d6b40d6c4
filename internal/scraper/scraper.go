package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"radiosync/internal/logger"

	"golang.org/x/net/html"
)

// Scraper fetches the station's playing-now page and extracts songs.
type Scraper struct {
	url        string
	httpClient *http.Client
	logger     *logger.Logger

	// Overridable for testing
	now func() time.Time
}

// New creates a new Scraper for the given station URL.
func New(url string, log *logger.Logger) *Scraper {
	return &Scraper{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log,
		now:        time.Now,
	}
}

// Fetch downloads the playing-now page and returns the songs it lists,
// most recent first, in page order.
func (s *Scraper) Fetch(ctx context.Context) ([]Song, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "radiosync/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("station page returned %d", resp.StatusCode)
	}

	songs, err := Parse(resp.Body, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to parse station page: %w", err)
	}

	s.logger.Debug("Scraped %d songs from %s", len(songs), s.url)
	return songs, nil
}

// Parse extracts songs from a playing-now HTML document. Song fields are
// taken from elements carrying the CSS classes "artist", "title", "album"
// and "time"; a new song starts at each artist cell. The time cell, when
// present, is an HH:MM clock combined with now's date; otherwise ScrapedAt
// falls back to now.
func Parse(r io.Reader, now time.Time) ([]Song, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var songs []Song
	var cur *Song

	flush := func() {
		if cur != nil && cur.Artist != "" && cur.Title != "" {
			songs = append(songs, *cur)
		}
		cur = nil
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch fieldClass(n) {
			case "artist":
				flush()
				cur = &Song{Artist: nodeText(n), ScrapedAt: now}
			case "title":
				if cur != nil {
					cur.Title = nodeText(n)
				}
			case "album":
				if cur != nil {
					cur.Album = nodeText(n)
				}
			case "time":
				if cur != nil {
					cur.ScrapedAt = combineClock(now, nodeText(n))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return songs, nil
}

// fieldClass returns which song field an element's class list maps to,
// or "" if none.
func fieldClass(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			switch class {
			case "artist", "title", "album", "time":
				return class
			}
		}
	}
	return ""
}

// nodeText concatenates all text descendants, trimmed and whitespace-collapsed.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// combineClock parses an HH:MM clock string and places it on now's date.
// Unparseable clocks fall back to now.
func combineClock(now time.Time, clock string) time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return now
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
}
