package main

import (
	"fmt"
	"os"

	"radiosync/internal/config"
)

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
func parseArgs() (config.Config, string, error) {
	args := os.Args[1:]

	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			printUsage()
			os.Exit(0)
		}
		if arg == "--init-config" {
			return config.Config{}, "", initConfigFile()
		}
	}

	var configPath string
	var cfg config.Config
	var err error

	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			break
		}
	}

	cfg, err = config.LoadConfigFile(configPath)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--dry-run", "-n":
			cfg.DryRun = true

		case "--threshold", "-t":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--threshold requires a number argument")
			}
			i++
			var threshold float64
			if _, err := fmt.Sscanf(args[i], "%g", &threshold); err != nil {
				return config.Config{}, "", fmt.Errorf("invalid threshold value: %s", args[i])
			}
			cfg.ConfidenceThreshold = threshold

		case "--playlist", "-p":
			if i+1 >= len(args) {
				return config.Config{}, "", fmt.Errorf("--playlist requires a playlist ID")
			}
			i++
			cfg.SpotifyPlaylistID = args[i]

		case "--config", "-c":
			i++

		default:
			if len(arg) > 0 && arg[0] == '-' {
				return config.Config{}, "", fmt.Errorf("unknown flag: %s", arg)
			}
			cfg.StationURL = arg
		}
	}

	return cfg, configPath, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		os.Exit(0)
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  station_url: the station's playing-now page")
	fmt.Println("  spotify_client_id / spotify_client_secret: API credentials")
	fmt.Println("  spotify_playlist_id: playlist that receives new tracks")
	fmt.Println("  confidence_threshold: 0-100 (minimum match confidence, default: 70)")
	fmt.Println("  dedup_window_minutes: suppression window for repeat spins (default: 30)")
	fmt.Println("  verbose: true/false (enable detailed logging)")
	fmt.Println("  dry_run: true/false (preview mode)")

	os.Exit(0)
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("radiosync - Sync a radio station's playing-now page to a Spotify playlist")
	fmt.Println()
	fmt.Println("Usage: radiosync [options] [station_url]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -n, --dry-run              Preview matches without touching the playlist")
	fmt.Println("  -t, --threshold <n>        Minimum match confidence, 0-100 (default: 70)")
	fmt.Println("  -p, --playlist <id>        Spotify playlist ID to add tracks to")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./radiosync.yaml")
	fmt.Println("  ~/.config/radiosync/config.yaml")
	fmt.Println("  ~/.radiosync.yaml")
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Println("  Normal mode: Progress bar shown, detailed logs saved to:")
	fmt.Println("    ~/.local/share/radiosync/logs/")
	fmt.Println("  Verbose mode: All output to stdout, no progress bar, no file logging")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Preview what would be matched")
	fmt.Println("  radiosync --dry-run https://station.example.org/playing-now")
	fmt.Println()
	fmt.Println("  # Sync with defaults (progress bar + file logging)")
	fmt.Println("  radiosync https://station.example.org/playing-now")
	fmt.Println()
	fmt.Println("  # Sync with a stricter match threshold")
	fmt.Println("  radiosync -t 85 https://station.example.org/playing-now")
	fmt.Println()
	fmt.Println("  # Create a config file to persist settings")
	fmt.Println("  radiosync --init-config")
}
