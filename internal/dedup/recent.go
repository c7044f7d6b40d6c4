package dedup

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"radiosync/internal/logger"
	"radiosync/internal/scraper"
	"radiosync/pkg/utils"
)

// RecentCache is a time-windowed map from song identity to the epoch
// millis it was last archived. It exists because the same broadcast slot
// can be re-scraped several times within one polling interval, and because
// a restart must not re-archive songs seen moments earlier. Entries older
// than the window are pruned on every load and every write; the pruned map
// is persisted whole to a single file.
type RecentCache struct {
	path    string
	window  time.Duration
	entries map[string]int64
	logger  *logger.Logger
}

// LoadRecentCache reads the persisted cache from path, pruning anything
// older than the window. Missing or corrupt state degrades to an empty
// cache; startup never fails on it.
func LoadRecentCache(path string, window time.Duration, log *logger.Logger) *RecentCache {
	cache := &RecentCache{
		path:    path,
		window:  window,
		entries: make(map[string]int64),
		logger:  log,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Failed to read recent-entries cache %s: %v", path, err)
		}
		return cache
	}

	if err := json.Unmarshal(data, &cache.entries); err != nil {
		log.Warn("Corrupt recent-entries cache %s, starting empty: %v", path, err)
		cache.entries = make(map[string]int64)
		return cache
	}

	cache.prune(time.Now())
	return cache
}

// Key builds the song-identity key: artist|title|album, no timestamp.
func Key(song scraper.Song) string {
	return strings.Join([]string{
		strings.TrimSpace(song.Artist),
		strings.TrimSpace(song.Title),
		strings.TrimSpace(song.Album),
	}, "|")
}

// IsRecentlyArchived reports whether the song's identity was archived
// within the window before now.
func (c *RecentCache) IsRecentlyArchived(song scraper.Song, now time.Time) bool {
	lastSeen, ok := c.entries[Key(song)]
	if !ok {
		return false
	}
	return now.UnixMilli()-lastSeen < c.window.Milliseconds()
}

// RecordArchived marks the song's identity as archived at now, prunes
// expired entries, and persists the cache. Persistence failures are logged
// and swallowed; the in-memory cache stays authoritative for this run.
func (c *RecentCache) RecordArchived(song scraper.Song, now time.Time) {
	c.entries[Key(song)] = now.UnixMilli()
	c.prune(now)

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Warn("Failed to marshal recent-entries cache: %v", err)
		return
	}
	if err := utils.AtomicWriteFile(c.path, data); err != nil {
		c.logger.Warn("Failed to persist recent-entries cache: %v", err)
	}
}

// Len returns the number of live entries.
func (c *RecentCache) Len() int {
	return len(c.entries)
}

func (c *RecentCache) prune(now time.Time) {
	cutoff := now.UnixMilli() - c.window.Milliseconds()
	for key, lastSeen := range c.entries {
		if lastSeen <= cutoff {
			delete(c.entries, key)
		}
	}
}
