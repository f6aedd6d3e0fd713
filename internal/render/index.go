// Package render produces the generated Markdown: the sitewide index and
// per-document backlink sections.
package render

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/starford/docops/internal/models"
)

// Index renders header followed by one "- [Title](path)" line per document,
// ordered by title (byte-wise) and then by path.
func Index(docs []*models.Document, header string) string {
	sorted := slices.Clone(docs)
	slices.SortStableFunc(sorted, func(a, b *models.Document) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})

	var b strings.Builder
	b.WriteString(header)
	for _, d := range sorted {
		fmt.Fprintf(&b, "- [%s](%s)\n", d.Title, d.Path)
	}
	return b.String()
}
