package match

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Featured-artist clauses: parenthesized anywhere, or bare at the end of
// the title.
var (
	featuringParenPattern = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring)\s+([^\)\]]+)[\)\]]`)
	featuringTrailPattern = regexp.MustCompile(`(?i)\s+(?:feat\.?|ft\.?|featuring)\s+(.+)$`)
)

// Track-number prefixes ("01. ", "B.03. ") and trailing catalog codes
// ("TOYT009", "[ABC-1234]") seen in scraped playlist titles.
var (
	trackNumberPattern = regexp.MustCompile(`^(?:[A-Za-z]\.)?\d{1,3}\.\s+`)
	catalogCodePattern = regexp.MustCompile(`\s+\[?[A-Z]{2,}[-\s]?\d{2,}\]?\s*$`)
)

// Parenthesized and bracketed annotation spans ("(Live)", "[Remastered]").
var annotationPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

// Dash variants and underscores collapse to spaces before punctuation
// is dropped, so hyphenated and underscored names compare word-wise.
var dashReplacer = strings.NewReplacer(
	"-", " ", "‐", " ", "‑", " ", "–", " ", "—", " ", "_", " ",
)

// ExtractFeaturing splits a featured-artist clause off a title. The clause
// is returned separately so the scorer can append it to the artist string
// before comparison.
func ExtractFeaturing(title string) (cleaned, featured string) {
	if m := featuringParenPattern.FindStringSubmatch(title); m != nil {
		cleaned = featuringParenPattern.ReplaceAllString(title, "")
		return strings.TrimSpace(cleaned), strings.TrimSpace(m[1])
	}
	if m := featuringTrailPattern.FindStringSubmatch(title); m != nil {
		cleaned = featuringTrailPattern.ReplaceAllString(title, "")
		return strings.TrimSpace(cleaned), strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(title), ""
}

// CleanTitle strips track-number prefixes and trailing catalog codes.
func CleanTitle(title string) string {
	title = trackNumberPattern.ReplaceAllString(title, "")
	title = catalogCodePattern.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// Normalize produces the canonical match form of a string: diacritics
// stripped, ampersands and "and" unified, dashes and underscores spaced,
// punctuation dropped, whitespace collapsed, lowercased. Idempotent.
func Normalize(s string) string {
	s = stripDiacritics(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&amp;", " and ")
	s = strings.ReplaceAll(s, "&", " and ")
	s = dashReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeStripped is Normalize with parenthesized and bracketed spans
// removed first. Both forms are compared during scoring because the catalog
// may or may not carry the annotation.
func NormalizeStripped(s string) string {
	return Normalize(annotationPattern.ReplaceAllString(s, " "))
}

// stripDiacritics decomposes to NFD and drops combining marks.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
