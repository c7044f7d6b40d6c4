package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"radiosync/internal/config"
	"radiosync/internal/logger"
	"radiosync/internal/pipeline"
	"radiosync/internal/progress"
	"radiosync/internal/scraper"
	"radiosync/internal/shutdown"
	"radiosync/internal/spotify"
)

func main() {
	cfg, configPath, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Wait()

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("radiosync_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if cfg.Verbose && configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	if cfg.DryRun && (cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "") {
		log.Warn("Dry run without Spotify credentials: searches will fail and every spin will be archived as not found")
	}

	if err := run(sh, cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(sh *shutdown.Handler, cfg config.Config, log *logger.Logger) error {
	src := scraper.New(cfg.StationURL, log)
	cat := spotify.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret)

	var bar *progress.Bar
	hooks := pipeline.Hooks{
		OnSongsScraped: func(total int) {
			if !cfg.Verbose && !cfg.DryRun {
				bar = progress.New(total)
				log.SetProgressBar(true)
			}
		},
		OnProgress: func() {
			if bar != nil {
				bar.Increment()
			}
		},
	}

	err := pipeline.Run(sh.Context(), cfg, log, src, cat, hooks)

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if errors.Is(err, pipeline.ErrUpToDate) {
		log.Info("=== Playlist already up to date ===")
		return nil
	}
	if err != nil {
		return err
	}

	log.Info("=== Sync completed successfully ===")
	return nil
}
