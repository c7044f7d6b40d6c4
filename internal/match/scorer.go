package match

import (
	"strings"

	"radiosync/internal/scraper"
	"radiosync/internal/spotify"

	"github.com/hbollon/go-edlib"
)

// Artist identity weighs more than title: titles drift across reissues and
// live versions, a wrong artist is almost never an acceptable match.
const (
	artistWeight = 0.6
	titleWeight  = 0.4
)

// Result pairs a candidate track with its confidence. Confidence values are
// only comparable within one song's candidate set.
type Result struct {
	Track      spotify.Track
	Confidence float64 // 0-100
}

// Score computes a 0-100 confidence that the candidate track is the song
// the station played.
func Score(song scraper.Song, track spotify.Track) float64 {
	title, featured := ExtractFeaturing(song.Title)
	title = CleanTitle(title)

	scrapedArtist := song.Artist
	if featured != "" {
		scrapedArtist += ", " + featured
	}
	candidateArtist := strings.Join(track.ArtistNames(), ", ")

	artistScore := similarity(Normalize(scrapedArtist), Normalize(candidateArtist))
	titleScore := titleSimilarity(title, track.Name)

	return (artistScore*artistWeight + titleScore*titleWeight) * 100
}

// BestMatch scores every candidate and returns the highest-confidence one,
// or nil when the candidate list is empty.
func BestMatch(song scraper.Song, tracks []spotify.Track) *Result {
	var best *Result
	for _, track := range tracks {
		confidence := Score(song, track)
		if best == nil || confidence > best.Confidence {
			best = &Result{Track: track, Confidence: confidence}
		}
	}
	return best
}

// titleSimilarity compares titles on both normalized forms, takes the
// better one, and applies the substring and first-word boosts. Boosts only
// ever raise the score.
func titleSimilarity(scraped, candidate string) float64 {
	full := similarity(Normalize(scraped), Normalize(candidate))
	stripped := similarity(NormalizeStripped(scraped), NormalizeStripped(candidate))

	score := full
	if stripped > score {
		score = stripped
	}

	pairs := [][2]string{
		{Normalize(scraped), Normalize(candidate)},
		{NormalizeStripped(scraped), NormalizeStripped(candidate)},
	}

	for _, pair := range pairs {
		if isNearSubstring(pair[0], pair[1]) && score < 0.9 {
			score = 0.9
		}
	}
	for _, pair := range pairs {
		if firstWordsOverlap(pair[0], pair[1]) && score < 0.85 {
			score = 0.85
		}
	}

	return score
}

// isNearSubstring reports whether one string contains the other, or
// contains all but the last two characters of the shorter one (tolerating
// trailing plural/possessive differences).
func isNearSubstring(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return true
	}
	if len(shorter) > 2 && strings.Contains(longer, shorter[:len(shorter)-2]) {
		return true
	}
	return false
}

// firstWordsOverlap reports whether the first word of each string (both at
// least 3 characters) appears somewhere in the other's full string.
func firstWordsOverlap(a, b string) bool {
	wordA := firstWord(a)
	wordB := firstWord(b)
	if len(wordA) < 3 || len(wordB) < 3 {
		return false
	}
	return strings.Contains(b, wordA) && strings.Contains(a, wordB)
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// similarity is a Sørensen-Dice bigram ratio in [0,1]: symmetric, and 1
// for identical strings.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.SorensenDice)
	if err != nil {
		return 0.0
	}
	return float64(sim)
}
