package render

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/starford/docops/internal/models"
)

// StripBacklinks removes everything from the first line matching heading
// (whitespace-insensitive) to the end, then trims trailing whitespace.
func StripBacklinks(content, heading string) string {
	want := normalizeHeading(heading)
	offset := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		if normalizeHeading(line) == want {
			content = content[:offset]
			break
		}
		offset += len(line)
	}
	return strings.TrimRightFunc(content, unicode.IsSpace)
}

// Backlinks rewrites content for the document at current: any previous
// backlinks section is removed and, when entries is non-empty, a new one is
// appended with one link per entry. Entries are rendered in the given order.
// The result always ends with exactly one newline.
func Backlinks(content, heading, current string, entries []models.Backlink) string {
	var b strings.Builder
	b.WriteString(StripBacklinks(content, heading))

	if len(entries) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(heading)
		b.WriteString("\n\n")
		for i, e := range entries {
			if i > 0 {
				b.WriteByte('\n')
			}
			title := e.Title
			if title == "" {
				title = e.Path
			}
			fmt.Fprintf(&b, "- [%s](%s)", title, RelativeLink(current, e.Path))
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// RelativeLink returns the link from the document at current to the
// root-relative path target: one "../" per directory level of current.
func RelativeLink(current, target string) string {
	return strings.Repeat("../", strings.Count(current, "/")) + target
}

func normalizeHeading(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
