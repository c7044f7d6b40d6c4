package archive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// RowKind tags which on-disk format a parsed row came from.
type RowKind int

const (
	// KindTable is the current pipe-table row format.
	KindTable RowKind = iota
	// KindLegacy is the superseded header-block format from earlier
	// versions. Legacy rows contribute to the duplicate set and stats
	// exactly like table rows.
	KindLegacy
)

// ParsedRow is one archived record read back from (or destined for) a
// day's file.
type ParsedRow struct {
	Kind       RowKind
	SeqID      string // "143005-001"; empty for legacy rows
	Clock      string // "14:30"
	Artist     string
	Title      string
	Album      string
	Status     Status
	Confidence string // "95%" or "-"
	Link       string // markdown link or "-"
	Scraped    string // "14:30:05"
	Raw        string // original line, kept verbatim for legacy rows
}

var (
	seqIDPattern = regexp.MustCompile(`^\d{6}-(\d{3})$`)

	// **14:30:05** - Artist - Title (Album) [found]
	legacyPattern = regexp.MustCompile(`^\*\*(\d{2}:\d{2}:\d{2})\*\* - (.+?) - (.+?)(?: \((.+)\))? \[(found|not_found|low_confidence|duplicate)\]$`)
)

// parseRow attempts to parse one line as either row variant. The second
// return distinguishes "not a row at all" (false) from a malformed row,
// which comes back as an error.
func parseRow(line string) (ParsedRow, bool, error) {
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "**") {
		m := legacyPattern.FindStringSubmatch(line)
		if m == nil {
			return ParsedRow{}, true, fmt.Errorf("malformed legacy row")
		}
		return ParsedRow{
			Kind:    KindLegacy,
			Clock:   m[1][:5],
			Artist:  m[2],
			Title:   m[3],
			Album:   m[4],
			Status:  Status(m[5]),
			Scraped: m[1],
			Raw:     line,
		}, true, nil
	}

	if !strings.HasPrefix(line, "|") {
		return ParsedRow{}, false, nil
	}

	cells := splitRow(line)
	if len(cells) == 0 || !seqIDPattern.MatchString(cells[0]) {
		// Header, separator, or summary row; not a track row.
		return ParsedRow{}, false, nil
	}
	if len(cells) != 9 {
		return ParsedRow{}, true, fmt.Errorf("table row has %d cells, want 9", len(cells))
	}

	status, err := parseStatusCell(cells[5])
	if err != nil {
		return ParsedRow{}, true, err
	}

	return ParsedRow{
		Kind:       KindTable,
		SeqID:      cells[0],
		Clock:      cells[1],
		Artist:     cells[2],
		Title:      cells[3],
		Album:      unplaceholder(cells[4]),
		Status:     status,
		Confidence: cells[6],
		Link:       cells[7],
		Scraped:    cells[8],
	}, true, nil
}

// sequence returns the NNN counter from a table row's sequence ID, or 0.
func (r ParsedRow) sequence() int {
	m := seqIDPattern.FindStringSubmatch(r.SeqID)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// splitRow splits a pipe-table line into trimmed cells, honoring \|
// escapes. The leading and trailing empty fields around the outer pipes
// are dropped.
func splitRow(line string) []string {
	var fields []string
	var b strings.Builder
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))

	if len(fields) < 2 {
		return nil
	}
	return fields[1 : len(fields)-1]
}

// escapeCell protects free-text cell content from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return s
}

func parseStatusCell(cell string) (Status, error) {
	switch {
	case strings.Contains(cell, "Not Found"):
		return StatusNotFound, nil
	case strings.Contains(cell, "Low Confidence"):
		return StatusLowConfidence, nil
	case strings.Contains(cell, "Duplicate"):
		return StatusDuplicate, nil
	case strings.Contains(cell, "Found"):
		return StatusFound, nil
	default:
		return "", fmt.Errorf("unknown status cell %q", cell)
	}
}

func statusCell(s Status) string {
	switch s {
	case StatusFound:
		return "✅ Found"
	case StatusNotFound:
		return "❌ Not Found"
	case StatusLowConfidence:
		return "⚠️ Low Confidence"
	case StatusDuplicate:
		return "🔁 Duplicate"
	default:
		return string(s)
	}
}

// unplaceholder maps the table's "-" placeholder back to an empty value.
func unplaceholder(s string) string {
	if s == "-" {
		return ""
	}
	return s
}

func placeholder(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
