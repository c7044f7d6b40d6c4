package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"radiosync/internal/logger"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<div class="playlist">
  <div class="row">
    <span class="time">14:30</span>
    <span class="artist">Allen Toussaint</span>
    <span class="title">Southern Nights (Live)</span>
    <span class="album">Songbook</span>
  </div>
  <div class="row">
    <span class="time">14:26</span>
    <span class="artist">Earth &amp; Fire</span>
    <span class="title">Seasons</span>
  </div>
  <div class="row">
    <span class="artist">The Meters</span>
    <span class="title">Cissy Strut</span>
    <span class="album">The Meters</span>
  </div>
</div>
</body></html>`

func TestParse(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	songs, err := Parse(strings.NewReader(samplePage), now)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}

	first := songs[0]
	if first.Artist != "Allen Toussaint" {
		t.Errorf("artist = %q, want %q", first.Artist, "Allen Toussaint")
	}
	if first.Title != "Southern Nights (Live)" {
		t.Errorf("title = %q, want %q", first.Title, "Southern Nights (Live)")
	}
	if first.Album != "Songbook" {
		t.Errorf("album = %q, want %q", first.Album, "Songbook")
	}
	want := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	if !first.ScrapedAt.Equal(want) {
		t.Errorf("scrapedAt = %v, want %v", first.ScrapedAt, want)
	}

	// HTML entities are decoded by the parser
	if songs[1].Artist != "Earth & Fire" {
		t.Errorf("artist = %q, want %q", songs[1].Artist, "Earth & Fire")
	}
	if songs[1].Album != "" {
		t.Errorf("album = %q, want empty", songs[1].Album)
	}

	// No time cell: falls back to scrape wall-clock
	if !songs[2].ScrapedAt.Equal(now) {
		t.Errorf("scrapedAt = %v, want %v", songs[2].ScrapedAt, now)
	}
}

func TestParseEmptyPage(t *testing.T) {
	songs, err := Parse(strings.NewReader("<html><body><p>off air</p></body></html>"), time.Now())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(songs) != 0 {
		t.Errorf("expected no songs, got %d", len(songs))
	}
}

func TestParseIncompleteRow(t *testing.T) {
	// An artist cell with no title must not produce a song
	page := `<div><span class="artist">Orphan Artist</span></div>
<div><span class="artist">Dr. John</span><span class="title">Iko Iko</span></div>`

	songs, err := Parse(strings.NewReader(page), time.Now())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(songs))
	}
	if songs[0].Artist != "Dr. John" {
		t.Errorf("artist = %q, want %q", songs[0].Artist, "Dr. John")
	}
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	s := New(server.URL, logger.New(false))
	songs, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(songs) != 3 {
		t.Errorf("expected 3 songs, got %d", len(songs))
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := New(server.URL, logger.New(false))
	if _, err := s.Fetch(context.Background()); err == nil {
		t.Error("expected error for 503 response")
	}
}
