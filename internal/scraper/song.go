package scraper

import "time"

// Song is one artist/title/album tuple observed on the station's
// playing-now page at a point in time. ScrapedAt is the authoritative
// clock for dedup windows and archive day bucketing.
type Song struct {
	Artist    string
	Title     string
	Album     string
	ScrapedAt time.Time
}
