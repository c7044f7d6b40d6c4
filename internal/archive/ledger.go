package archive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"radiosync/internal/logger"
	"radiosync/internal/scraper"
	"radiosync/pkg/utils"
)

const dayFormat = "2006-01-02"

// DayState is one day's ledger reconstructed from its file: every row, the
// duplicate-identity set, the sequence high-water mark, and stats replayed
// from the rows. No separate index file exists; the day's file is the only
// source of truth.
type DayState struct {
	Day          string
	Rows         []ParsedRow
	Seen         map[string]struct{}
	Stats        Stats
	SeqHighWater int
}

// Ledger appends processed songs to per-day archive files. Archiving is
// best-effort: every failure is logged and swallowed so the caller's batch
// never aborts on it.
type Ledger struct {
	dir    string
	logger *logger.Logger
	day    string
	state  *DayState
}

// NewLedger creates a Ledger writing day files under dir.
func NewLedger(dir string, log *logger.Logger) *Ledger {
	return &Ledger{dir: dir, logger: log}
}

// Load parses an existing day file into a DayState. A missing file yields
// an empty state; malformed rows are skipped with a warning and never
// abort the load.
func Load(dir, day string, log *logger.Logger) (*DayState, error) {
	state := &DayState{
		Day:  day,
		Seen: make(map[string]struct{}),
	}

	file, err := os.Open(dayPath(dir, day))
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		row, isRow, err := parseRow(scanner.Text())
		if err != nil {
			log.Warn("Skipping malformed archive row in %s: %v", day, err)
			continue
		}
		if !isRow {
			continue
		}

		state.Rows = append(state.Rows, row)
		state.Seen[rowKey(row, day)] = struct{}{}
		if seq := row.sequence(); seq > state.SeqHighWater {
			state.SeqHighWater = seq
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}

	// The cached summary block is never trusted; stats always come from
	// replaying the rows.
	state.Stats = computeStats(state.Rows)
	return state, nil
}

// Append records one entry in the day file keyed by the song's scrape
// date. Re-submitting the same song within the same minute is a no-op,
// which makes replays and restarts safe.
func (l *Ledger) Append(entry Entry) {
	day := entry.Song.ScrapedAt.Format(dayFormat)
	if l.state == nil || l.day != day {
		l.rollover(day)
	}

	key := songKey(entry.Song)
	if _, dup := l.state.Seen[key]; dup {
		l.logger.Debug("Archive row already present for %s - %s, skipping",
			entry.Song.Artist, entry.Song.Title)
		return
	}

	seq := l.state.SeqHighWater + 1
	l.state.SeqHighWater = seq
	l.state.Rows = append(l.state.Rows, rowFromEntry(entry, seq))
	l.state.Seen[key] = struct{}{}
	l.state.Stats = computeStats(l.state.Rows)

	if err := utils.AtomicWriteFile(dayPath(l.dir, day), renderDay(l.state)); err != nil {
		l.logger.Warn("Failed to write archive file for %s: %v", day, err)
	}
}

// Stats returns the currently loaded day's statistics.
func (l *Ledger) Stats() Stats {
	if l.state == nil {
		return Stats{}
	}
	return l.state.Stats
}

// rollover resets per-day state and loads (or creates) the new day's file.
func (l *Ledger) rollover(day string) {
	state, err := Load(l.dir, day, l.logger)
	if err != nil {
		l.logger.Warn("Failed to load archive for %s, starting fresh: %v", day, err)
		state = &DayState{Day: day, Seen: make(map[string]struct{})}
	}
	l.day = day
	l.state = state
}

func dayPath(dir, day string) string {
	return filepath.Join(dir, day+".md")
}

// songKey is the day-scoped uniqueness key: identity plus minute bucket.
func songKey(song scraper.Song) string {
	return strings.Join([]string{
		strings.TrimSpace(song.Artist),
		strings.TrimSpace(song.Title),
		strings.TrimSpace(song.Album),
		song.ScrapedAt.Format(dayFormat),
		song.ScrapedAt.Format("15:04"),
	}, "|")
}

// rowKey rebuilds the uniqueness key from a parsed row and its file's day.
func rowKey(row ParsedRow, day string) string {
	return strings.Join([]string{
		strings.TrimSpace(row.Artist),
		strings.TrimSpace(row.Title),
		strings.TrimSpace(row.Album),
		day,
		row.Clock,
	}, "|")
}

func rowFromEntry(entry Entry, seq int) ParsedRow {
	row := ParsedRow{
		Kind:       KindTable,
		SeqID:      fmt.Sprintf("%s-%03d", entry.Song.ScrapedAt.Format("150405"), seq),
		Clock:      entry.Song.ScrapedAt.Format("15:04"),
		Artist:     entry.Song.Artist,
		Title:      entry.Song.Title,
		Album:      entry.Song.Album,
		Status:     entry.Status,
		Confidence: "-",
		Link:       "-",
		Scraped:    entry.Song.ScrapedAt.Format("15:04:05"),
	}

	if entry.Match != nil {
		row.Confidence = fmt.Sprintf("%.0f%%", entry.Match.Confidence)
		if url := entry.Match.Track.ExternalURL; url != "" {
			row.Link = fmt.Sprintf("[Spotify](%s)", url)
		}
	}

	return row
}

func computeStats(rows []ParsedRow) Stats {
	stats := Stats{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case StatusFound:
			stats.Found++
		case StatusNotFound:
			stats.NotFound++
		case StatusLowConfidence:
			stats.LowConfidence++
		case StatusDuplicate:
			stats.Duplicates++
		}
	}
	return stats
}
