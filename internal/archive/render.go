package archive

import (
	"fmt"
	"strings"
)

// renderDay produces the full markdown document for one day: front matter,
// summary statistics, then the tracks table. Preserved legacy rows are
// emitted verbatim ahead of the table so files begun under the old format
// stay readable by both versions.
func renderDay(state *DayState) []byte {
	var b strings.Builder

	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: Radio Archive %s\n", state.Day)
	fmt.Fprintf(&b, "date: %s\n", state.Day)
	b.WriteString("tags: [radio, archive, playlist]\n")
	b.WriteString("type: radio-archive\n")
	b.WriteString("---\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Total Tracks | %d |\n", state.Stats.Total)
	fmt.Fprintf(&b, "| Successfully Found | %d |\n", state.Stats.Found)
	fmt.Fprintf(&b, "| Not Found | %d |\n", state.Stats.NotFound)
	fmt.Fprintf(&b, "| Low Confidence | %d |\n", state.Stats.LowConfidence)
	fmt.Fprintf(&b, "| Duplicates | %d |\n", state.Stats.Duplicates)
	b.WriteString("\n## Tracks\n\n")

	var table []ParsedRow
	legacy := false
	for _, row := range state.Rows {
		if row.Kind == KindLegacy {
			b.WriteString(row.Raw)
			b.WriteString("\n")
			legacy = true
			continue
		}
		table = append(table, row)
	}
	if legacy {
		b.WriteString("\n")
	}

	b.WriteString("| # | Time | Artist | Title | Album | Status | Confidence | Link | Scraped |\n")
	b.WriteString("|---|------|--------|-------|-------|--------|------------|------|---------|\n")
	for _, row := range table {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			row.SeqID,
			row.Clock,
			escapeCell(row.Artist),
			escapeCell(row.Title),
			placeholder(escapeCell(row.Album)),
			statusCell(row.Status),
			row.Confidence,
			row.Link,
			row.Scraped,
		)
	}

	return []byte(b.String())
}
