// Package graph builds the backlink graph of a document tree.
package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/docops/internal/models"
	"github.com/starford/docops/internal/parser"
	"github.com/starford/docops/internal/render"
)

// Lookup answers whether a resolved, root-relative path names a document.
type Lookup interface {
	Has(path string) bool
}

// FileChecker reports whether a file exists under the root.
type FileChecker interface {
	Exists(path string) bool
}

// Catalog is the Lookup used by the indexer: a path is present if it was
// scanned in this run or exists on disk under the root.
type Catalog struct {
	known map[string]struct{}
	files FileChecker
}

// NewCatalog creates a Catalog over docs, falling back to files (may be nil).
func NewCatalog(docs []*models.Document, files FileChecker) *Catalog {
	known := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		known[d.Path] = struct{}{}
	}
	return &Catalog{known: known, files: files}
}

// Has implements Lookup.
func (c *Catalog) Has(p string) bool {
	if _, ok := c.known[p]; ok {
		return true
	}
	return c.files != nil && c.files.Exists(p)
}

// Graph maps a target path to the set of source paths that reference it.
type Graph struct {
	edges map[string]map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string]map[string]struct{})}
}

// Add records that source references target.
func (g *Graph) Add(target, source string) {
	set, ok := g.edges[target]
	if !ok {
		set = make(map[string]struct{})
		g.edges[target] = set
	}
	set[source] = struct{}{}
}

// Sources returns the paths referencing target, sorted.
func (g *Graph) Sources(target string) []string {
	set := g.edges[target]
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	n := 0
	for _, set := range g.edges {
		n += len(set)
	}
	return n
}

// Resolve resolves a link target against the directory of the referencing
// document. It returns false if the result escapes the root.
func Resolve(from, target string) (string, bool) {
	p := path.Clean(path.Join(path.Dir(from), target))
	if p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", false
	}
	return p, true
}

// Build scans every document for links ending in exts and records an edge for
// each target that lookup knows. Dangling targets are dropped. Links inside a
// previously generated section under heading are ignored. Each document's
// Links field is set to its resolved, deduplicated outbound targets.
func Build(docs []*models.Document, lookup Lookup, exts []string, heading string) *Graph {
	g := New()
	for _, d := range docs {
		d.Links = d.Links[:0]
		seen := make(map[string]struct{})
		body := render.StripBacklinks(d.Content, heading)
		for _, raw := range parser.ExtractLinks(body, exts) {
			target, ok := Resolve(d.Path, raw)
			if !ok || !lookup.Has(target) {
				continue
			}
			g.Add(target, d.Path)
			if _, dup := seen[target]; !dup {
				seen[target] = struct{}{}
				d.Links = append(d.Links, target)
			}
		}
	}
	return g
}
