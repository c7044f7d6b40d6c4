package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"radiosync/internal/archive"
	"radiosync/internal/config"
	"radiosync/internal/dedup"
	"radiosync/internal/logger"
	"radiosync/internal/match"
	"radiosync/internal/scraper"
	"radiosync/internal/spotify"
	"radiosync/pkg/utils"
)

// ErrUpToDate signals that the playlist already contains the station's
// recent spins. Callers treat it as a successful early exit.
var ErrUpToDate = errors.New("playlist is up to date")

// Source provides the station's currently playing list.
type Source interface {
	Fetch(ctx context.Context) ([]scraper.Song, error)
}

// Catalog is the subset of the Spotify client the pipeline needs.
type Catalog interface {
	Search(ctx context.Context, artist, title string) ([]spotify.Track, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]string, error)
	AddToPlaylist(ctx context.Context, playlistID, trackID string) error
}

type Hooks struct {
	OnSongsScraped func(total int)
	OnProgress     func()
	OnWarning      func(msg string)
}

// Run executes one sync pass: scrape the station page, match each spin
// against the catalog, add new finds to the playlist, and archive every
// outcome. Per-song failures degrade to archived entries; only scrape
// and context errors abort the pass.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger, src Source, cat Catalog, hooks Hooks) error {
	songs, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playing-now page: %w", err)
	}
	if len(songs) == 0 {
		log.Info("No songs found on the playing-now page")
		return nil
	}
	if hooks.OnSongsScraped != nil {
		hooks.OnSongsScraped(len(songs))
	}

	if err := utils.EnsureDir(cfg.ArchiveDir); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	window := time.Duration(cfg.DedupWindowMinutes) * time.Minute
	recent := dedup.LoadRecentCache(cfg.CacheFile, window, log)
	ledger := archive.NewLedger(cfg.ArchiveDir, log)
	validator := match.NewValidator(cfg.ConfidenceThreshold)

	catalog := loadCatalog(ctx, cfg, log, cat)

	consecutiveDups := 0
	for _, song := range songs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if recent.IsRecentlyArchived(song, time.Now()) {
			log.Debug("Recently archived, skipping: %s - %s", song.Artist, song.Title)
			progress(hooks)
			continue
		}

		entry := processSong(ctx, cfg, log, cat, validator, catalog, song, hooks)
		ledger.Append(entry)
		recent.RecordArchived(song, time.Now())
		progress(hooks)

		if entry.Status == archive.StatusDuplicate {
			consecutiveDups++
			if consecutiveDups >= cfg.MaxConsecutiveDuplicates {
				log.Info("%d consecutive tracks already in the playlist, stopping", consecutiveDups)
				return ErrUpToDate
			}
		} else {
			consecutiveDups = 0
		}
	}

	stats := ledger.Stats()
	log.Info("Processed %d tracks today: %d found, %d not found, %d low confidence, %d duplicates",
		stats.Total, stats.Found, stats.NotFound, stats.LowConfidence, stats.Duplicates)
	return nil
}

// processSong resolves one spin to an archive entry. Search and playlist
// failures are recorded on the entry instead of aborting the batch.
func processSong(ctx context.Context, cfg config.Config, log *logger.Logger, cat Catalog,
	validator *match.Validator, catalog *dedup.CatalogSet, song scraper.Song, hooks Hooks) archive.Entry {

	entry := archive.Entry{Song: song, ArchivedAt: time.Now()}

	tracks, err := cat.Search(ctx, song.Artist, song.Title)
	if err != nil {
		warn(log, hooks, fmt.Sprintf("Search failed for %s - %s: %v", song.Artist, song.Title, err))
		entry.Status = archive.StatusNotFound
		entry.Err = err.Error()
		return entry
	}

	best := match.BestMatch(song, tracks)
	if best == nil {
		log.Debug("No candidates for %s - %s", song.Artist, song.Title)
		entry.Status = archive.StatusNotFound
		return entry
	}
	entry.Match = best

	if !validator.IsAcceptable(song, best.Track, best.Confidence) {
		log.Info("Skipping %s - %s: %s", song.Artist, song.Title,
			validator.Explain(song, best.Track, best.Confidence))
		entry.Status = archive.StatusLowConfidence
		return entry
	}

	if catalog.Contains(best.Track.ID) {
		log.Debug("Already in playlist: %s - %s", song.Artist, song.Title)
		entry.Status = archive.StatusDuplicate
		return entry
	}

	entry.Status = archive.StatusFound
	if cfg.DryRun {
		log.Info("[dry run] Would add %s - %s (%s)", song.Artist, song.Title,
			validator.Explain(song, best.Track, best.Confidence))
		return entry
	}

	if err := cat.AddToPlaylist(ctx, cfg.SpotifyPlaylistID, best.Track.ID); err != nil {
		warn(log, hooks, fmt.Sprintf("Failed to add %s - %s to playlist: %v", song.Artist, song.Title, err))
		entry.Err = err.Error()
		return entry
	}

	catalog.Add(best.Track.ID)
	log.Info("Added %s - %s to playlist", song.Artist, song.Title)
	return entry
}

// loadCatalog snapshots the playlist's current track IDs. Failures fall
// back to an empty set, which only costs duplicate adds that Spotify
// tolerates.
func loadCatalog(ctx context.Context, cfg config.Config, log *logger.Logger, cat Catalog) *dedup.CatalogSet {
	if cfg.SpotifyPlaylistID == "" {
		return dedup.NewCatalogSet(nil)
	}

	ids, err := cat.PlaylistTracks(ctx, cfg.SpotifyPlaylistID)
	if err != nil {
		log.Warn("Failed to load playlist contents, duplicate detection degraded: %v", err)
		return dedup.NewCatalogSet(nil)
	}

	log.Debug("Loaded %d tracks from playlist", len(ids))
	return dedup.NewCatalogSet(ids)
}

func progress(hooks Hooks) {
	if hooks.OnProgress != nil {
		hooks.OnProgress()
	}
}

func warn(log *logger.Logger, hooks Hooks, msg string) {
	log.Warn(msg)
	if hooks.OnWarning != nil {
		hooks.OnWarning(msg)
	}
}
