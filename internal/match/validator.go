package match

import (
	"fmt"

	"radiosync/internal/scraper"
	"radiosync/internal/spotify"
)

const (
	// ConfidenceThreshold is the minimum weighted score for an acceptable
	// match. Validators never accept below it, whatever they are configured
	// with.
	ConfidenceThreshold = 70.0

	// The weighted score can clear the threshold through the title boosts
	// alone; these raw gates reject such matches independently of the
	// scorer's weighting.
	minArtistSimilarity = 0.3
	minTitleSimilarity  = 0.4
)

// Validator applies minimum-similarity gates on top of the scorer's output.
type Validator struct {
	threshold float64
}

// NewValidator creates a Validator with the given confidence threshold.
// Thresholds below the package minimum are raised to it.
func NewValidator(threshold float64) *Validator {
	if threshold < ConfidenceThreshold {
		threshold = ConfidenceThreshold
	}
	return &Validator{threshold: threshold}
}

// IsAcceptable reports whether the candidate is a good enough match for the
// song. All gates must pass: weighted confidence, raw primary-artist
// similarity, raw title similarity.
func (v *Validator) IsAcceptable(song scraper.Song, track spotify.Track, confidence float64) bool {
	if confidence < v.threshold {
		return false
	}
	if rawArtistSimilarity(song, track) < minArtistSimilarity {
		return false
	}
	if rawTitleSimilarity(song, track) < minTitleSimilarity {
		return false
	}
	return true
}

// Explain produces a short human-readable justification for logging. It
// never alters state and has no effect on acceptance.
func (v *Validator) Explain(song scraper.Song, track spotify.Track, confidence float64) string {
	return fmt.Sprintf("confidence %.0f%% (artist match %s, title match %s)",
		confidence,
		bucket(rawArtistSimilarity(song, track)),
		bucket(rawTitleSimilarity(song, track)))
}

// rawArtistSimilarity compares primary artist names only, unboosted.
func rawArtistSimilarity(song scraper.Song, track spotify.Track) float64 {
	return similarity(Normalize(song.Artist), Normalize(track.PrimaryArtist()))
}

// rawTitleSimilarity takes the better of the two normalized forms, with no
// boosts applied.
func rawTitleSimilarity(song scraper.Song, track spotify.Track) float64 {
	title, _ := ExtractFeaturing(song.Title)
	title = CleanTitle(title)

	full := similarity(Normalize(title), Normalize(track.Name))
	stripped := similarity(NormalizeStripped(title), NormalizeStripped(track.Name))
	if stripped > full {
		return stripped
	}
	return full
}

func bucket(sim float64) string {
	switch {
	case sim >= 0.9:
		return "exact"
	case sim >= 0.7:
		return "strong"
	case sim >= 0.5:
		return "moderate"
	case sim >= minArtistSimilarity:
		return "weak"
	default:
		return "poor"
	}
}
