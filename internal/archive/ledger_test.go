package archive

import (
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"radiosync/internal/logger"
	"radiosync/internal/match"
	"radiosync/internal/scraper"
	"radiosync/internal/spotify"
)

var testLog = logger.New(false)

func entryAt(artist, title string, status Status, at time.Time) Entry {
	e := Entry{
		Song:       scraper.Song{Artist: artist, Title: title, ScrapedAt: at},
		Status:     status,
		ArchivedAt: at,
	}
	if status == StatusFound || status == StatusLowConfidence || status == StatusDuplicate {
		e.Match = &match.Result{
			Track: spotify.Track{
				ID:          "trk",
				Name:        title,
				Artists:     []spotify.Artist{{Name: artist}},
				ExternalURL: "https://open.spotify.com/track/trk",
			},
			Confidence: 95,
		}
	}
	return e
}

func TestAppendIdempotentWithinMinute(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	entry := entryAt("Professor Longhair", "Big Chief", StatusFound, at)

	for i := 0; i < 5; i++ {
		ledger.Append(entry)
	}
	// Same identity, same minute, different second: still one row.
	later := entry
	later.Song.ScrapedAt = at.Add(20 * time.Second)
	ledger.Append(later)

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Rows) != 1 {
		t.Fatalf("expected 1 row after repeated appends, got %d", len(state.Rows))
	}
	if state.Stats.Total != 1 || state.Stats.Found != 1 {
		t.Errorf("stats = %+v, want Total=1 Found=1", state.Stats)
	}
}

func TestAppendDistinctMinutes(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 14, 30, 5, 0, time.UTC)
	ledger.Append(entryAt("Professor Longhair", "Big Chief", StatusFound, at))
	ledger.Append(entryAt("Professor Longhair", "Big Chief", StatusFound, at.Add(2*time.Minute)))

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Rows) != 2 {
		t.Errorf("expected 2 rows for distinct minute buckets, got %d", len(state.Rows))
	}
}

func TestSequenceContinuesAcrossReload(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	first := NewLedger(dir, testLog)
	first.Append(entryAt("Dr. John", "Iko Iko", StatusFound, at))
	first.Append(entryAt("The Meters", "Cissy Strut", StatusFound, at.Add(3*time.Minute)))

	// Simulated restart mid-day: the new ledger must continue the
	// sequence, not restart it.
	second := NewLedger(dir, testLog)
	second.Append(entryAt("Allen Toussaint", "Southern Nights", StatusFound, at.Add(6*time.Minute)))

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if state.SeqHighWater != 3 {
		t.Errorf("sequence high water = %d, want 3", state.SeqHighWater)
	}
	if got := state.Rows[2].SeqID; !strings.HasSuffix(got, "-003") {
		t.Errorf("third row sequence ID = %q, want suffix -003", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	state, err := Load(t.TempDir(), "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Rows) != 0 || state.SeqHighWater != 0 || state.Stats.Total != 0 {
		t.Errorf("expected empty state for missing file, got %+v", state)
	}
}

func TestReplayMatchesStoredStats(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	ledger.Append(entryAt("A", "One", StatusFound, at))
	ledger.Append(entryAt("B", "Two", StatusNotFound, at.Add(time.Minute)))
	ledger.Append(entryAt("C", "Three", StatusLowConfidence, at.Add(2*time.Minute)))
	ledger.Append(entryAt("D", "Four", StatusDuplicate, at.Add(3*time.Minute)))
	ledger.Append(entryAt("E", "Five", StatusFound, at.Add(4*time.Minute)))

	data, err := os.ReadFile(dayPath(dir, "2026-08-31"))
	if err != nil {
		t.Fatal(err)
	}

	stored := map[string]string{}
	re := regexp.MustCompile(`\| (Total Tracks|Successfully Found|Not Found|Low Confidence|Duplicates) \| (\d+) \|`)
	for _, m := range re.FindAllStringSubmatch(string(data), -1) {
		stored[m[1]] = m[2]
	}

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if stored["Total Tracks"] != "5" || state.Stats.Total != 5 {
		t.Errorf("total: stored %s, replayed %d, want 5", stored["Total Tracks"], state.Stats.Total)
	}
	if stored["Successfully Found"] != "2" || state.Stats.Found != 2 {
		t.Errorf("found: stored %s, replayed %d, want 2", stored["Successfully Found"], state.Stats.Found)
	}
	if stored["Not Found"] != "1" || state.Stats.NotFound != 1 {
		t.Errorf("not found: stored %s, replayed %d, want 1", stored["Not Found"], state.Stats.NotFound)
	}
	if stored["Low Confidence"] != "1" || state.Stats.LowConfidence != 1 {
		t.Errorf("low confidence: stored %s, replayed %d, want 1", stored["Low Confidence"], state.Stats.LowConfidence)
	}
	if stored["Duplicates"] != "1" || state.Stats.Duplicates != 1 {
		t.Errorf("duplicates: stored %s, replayed %d, want 1", stored["Duplicates"], state.Stats.Duplicates)
	}
}

func TestCorruptedStatsBlockIsIgnored(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	ledger.Append(entryAt("A", "One", StatusFound, at))
	ledger.Append(entryAt("B", "Two", StatusFound, at.Add(time.Minute)))

	path := dayPath(dir, "2026-08-31")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	corrupted := strings.Replace(string(data), "| Total Tracks | 2 |", "| Total Tracks | 999 |", 1)
	if corrupted == string(data) {
		t.Fatal("test setup: stats block not found to corrupt")
	}
	if err := os.WriteFile(path, []byte(corrupted), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if state.Stats.Total != 2 {
		t.Errorf("replayed total = %d, want 2 (recomputation is authoritative)", state.Stats.Total)
	}
}

func TestLegacyRowFormat(t *testing.T) {
	dir := t.TempDir()
	day := "2026-08-31"

	legacy := `---
title: Radio Archive 2026-08-31
date: 2026-08-31
---

## Tracks

**08:15:00** - Professor Longhair - Big Chief (Crawfish Fiesta) [found]
**08:20:00** - Dr. John - Gris Gris [not_found]
`
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dayPath(dir, day), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := Load(dir, day, testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Rows) != 2 {
		t.Fatalf("expected 2 legacy rows, got %d", len(state.Rows))
	}
	if state.Rows[0].Kind != KindLegacy {
		t.Error("expected KindLegacy row")
	}
	if state.Rows[0].Artist != "Professor Longhair" || state.Rows[0].Album != "Crawfish Fiesta" {
		t.Errorf("legacy row parsed as %+v", state.Rows[0])
	}
	if state.Stats.Total != 2 || state.Stats.Found != 1 || state.Stats.NotFound != 1 {
		t.Errorf("legacy stats = %+v", state.Stats)
	}

	// Appending the same identity in the same minute is still a no-op.
	ledger := NewLedger(dir, testLog)
	at := time.Date(2026, 8, 31, 8, 15, 30, 0, time.UTC)
	ledger.Append(Entry{
		Song:   scraper.Song{Artist: "Professor Longhair", Title: "Big Chief", Album: "Crawfish Fiesta", ScrapedAt: at},
		Status: StatusFound,
	})

	// A genuinely new entry appends, and legacy lines survive the rewrite.
	ledger.Append(entryAt("The Meters", "Cissy Strut", StatusFound, at.Add(10*time.Minute)))

	reloaded, err := Load(dir, day, testLog)
	if err != nil {
		t.Fatalf("Load() after append error: %v", err)
	}
	if len(reloaded.Rows) != 3 {
		t.Fatalf("expected 3 rows after append, got %d", len(reloaded.Rows))
	}

	data, _ := os.ReadFile(dayPath(dir, day))
	if !strings.Contains(string(data), "**08:15:00** - Professor Longhair - Big Chief (Crawfish Fiesta) [found]") {
		t.Error("legacy row lost on rewrite")
	}
}

func TestMalformedRowSkipped(t *testing.T) {
	dir := t.TempDir()
	day := "2026-08-31"

	content := `## Tracks

**not a valid legacy line
| 101500-001 | 10:15 | Dr. John | Iko Iko | - | ✅ Found | 92% | - | 10:15:00 |
`
	if err := os.WriteFile(dayPath(dir, day), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := Load(dir, day, testLog)
	if err != nil {
		t.Fatalf("Load() must not abort on malformed rows: %v", err)
	}
	if len(state.Rows) != 1 {
		t.Fatalf("expected 1 parsed row, got %d", len(state.Rows))
	}
	if state.Rows[0].Artist != "Dr. John" || state.Rows[0].Status != StatusFound {
		t.Errorf("row = %+v", state.Rows[0])
	}
}

func TestDayRollover(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	day1 := time.Date(2026, 8, 30, 23, 58, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 0, 2, 0, 0, time.UTC)

	ledger.Append(entryAt("A", "Late Song", StatusFound, day1))
	ledger.Append(entryAt("B", "Early Song", StatusFound, day2))

	for _, day := range []string{"2026-08-30", "2026-08-31"} {
		state, err := Load(dir, day, testLog)
		if err != nil {
			t.Fatalf("Load(%s) error: %v", day, err)
		}
		if state.Stats.Total != 1 {
			t.Errorf("day %s total = %d, want 1", day, state.Stats.Total)
		}
		// Sequence restarts per day.
		if state.SeqHighWater != 1 {
			t.Errorf("day %s sequence high water = %d, want 1", day, state.SeqHighWater)
		}
	}
}

func TestPipeEscapingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC)
	ledger.Append(entryAt("Weird | Artist", "Title | With Pipes", StatusFound, at))

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(state.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(state.Rows))
	}
	if state.Rows[0].Artist != "Weird | Artist" {
		t.Errorf("artist = %q, want %q", state.Rows[0].Artist, "Weird | Artist")
	}
	if state.Rows[0].Title != "Title | With Pipes" {
		t.Errorf("title = %q, want %q", state.Rows[0].Title, "Title | With Pipes")
	}
}

func TestConfidenceAndLinkColumns(t *testing.T) {
	dir := t.TempDir()
	ledger := NewLedger(dir, testLog)

	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ledger.Append(entryAt("A", "Hit", StatusFound, at))
	ledger.Append(entryAt("B", "Miss", StatusNotFound, at.Add(time.Minute)))

	state, err := Load(dir, "2026-08-31", testLog)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	hit, miss := state.Rows[0], state.Rows[1]
	if hit.Confidence != "95%" {
		t.Errorf("found confidence = %q, want 95%%", hit.Confidence)
	}
	if !strings.Contains(hit.Link, "open.spotify.com") {
		t.Errorf("found link = %q, want spotify link", hit.Link)
	}
	if miss.Confidence != "-" || miss.Link != "-" {
		t.Errorf("not-found row = %q/%q, want -/-", miss.Confidence, miss.Link)
	}
}
