// Package indexer runs the documentation indexing pipeline: scan, extract
// metadata, build the link graph, write the master index and rewrite every
// document's backlinks section.
package indexer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/docops/internal/apperr"
	"github.com/starford/docops/internal/checksum"
	"github.com/starford/docops/internal/graph"
	"github.com/starford/docops/internal/models"
	"github.com/starford/docops/internal/parser"
	"github.com/starford/docops/internal/render"
	"github.com/starford/docops/internal/storage"
)

// PlaceholderIndex is written when the index file does not exist yet.
const PlaceholderIndex = "# Master Index Placeholder\n"

// Options controls one indexing run.
type Options struct {
	IndexFile        string // relative to the root
	Extensions       []string
	IndexHeader      string
	BacklinksHeading string
	Logger           *slog.Logger
}

// Result describes a completed run.
type Result struct {
	Documents    []*models.Document // in scan order
	Graph        *graph.Graph
	IndexWritten bool
	Rewritten    int // documents whose content changed on disk
}

// Prepare creates root if it is missing, opens it, and writes a placeholder
// index file if none exists.
func Prepare(root, indexFile string, logger *slog.Logger) (*storage.FS, error) {
	if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("indexer: create root: %w", err)
		}
		logger.Info("created missing directory", slog.String("path", root))
	}

	store, err := storage.NewFS(root)
	if err != nil {
		return nil, err
	}

	if !store.Exists(indexFile) {
		if err := store.Write(indexFile, []byte(PlaceholderIndex)); err != nil {
			return nil, fmt.Errorf("indexer: write placeholder index: %w", err)
		}
	}
	return store, nil
}

// Run performs one full indexing pass over store. Read or write failures abort
// the run; documents already rewritten stay rewritten.
func Run(store storage.Provider, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := store.List("", opts.Extensions, opts.IndexFile)
	if err != nil {
		return nil, fmt.Errorf("indexer: scan: %w", err)
	}
	logger.Info("starting index and backlink generation", slog.Int("documents", len(paths)))

	docs, err := loadDocuments(store, paths)
	if err != nil {
		return nil, err
	}

	g := graph.Build(docs, graph.NewCatalog(docs, store), opts.Extensions, opts.BacklinksHeading)
	logger.Debug("link graph built", slog.Int("edges", g.Len()))

	res := &Result{Documents: docs, Graph: g}

	res.IndexWritten, err = writeIfChanged(store, opts.IndexFile, render.Index(docs, opts.IndexHeader))
	if err != nil {
		return nil, fmt.Errorf("indexer: write index: %w", err)
	}
	logger.Info("generated master index",
		slog.String("path", opts.IndexFile),
		slog.Bool("changed", res.IndexWritten))

	if res.Rewritten, err = rewriteBacklinks(store, docs, g, opts.BacklinksHeading); err != nil {
		return nil, err
	}
	logger.Info("updated backlinks",
		slog.Int("documents", len(docs)),
		slog.Int("rewritten", res.Rewritten))

	return res, nil
}

func loadDocuments(store storage.Provider, paths []string) ([]*models.Document, error) {
	docs := make([]*models.Document, 0, len(paths))
	for _, p := range paths {
		data, err := store.Read(p)
		if err != nil {
			return nil, fmt.Errorf("indexer: %w", err)
		}
		res := parser.Parse(p, data)
		docs = append(docs, &models.Document{
			Path:     p,
			Title:    res.Title,
			Content:  string(data),
			Checksum: checksum.Sum(data),
		})
	}
	return docs, nil
}

func rewriteBacklinks(store storage.Provider, docs []*models.Document, g *graph.Graph, heading string) (int, error) {
	byPath := make(map[string]*models.Document, len(docs))
	for _, d := range docs {
		byPath[d.Path] = d
	}

	rewritten := 0
	for _, d := range docs {
		sources := g.Sources(d.Path)
		entries := make([]models.Backlink, 0, len(sources))
		for _, s := range sources {
			e := models.Backlink{Path: s}
			if src, ok := byPath[s]; ok {
				e.Title = src.Title
			}
			entries = append(entries, e)
		}

		content := render.Backlinks(d.Content, heading, d.Path, entries)
		sum := checksum.SumString(content)
		if sum == d.Checksum {
			continue
		}
		if err := store.Write(d.Path, []byte(content)); err != nil {
			return rewritten, fmt.Errorf("indexer: rewrite %s: %w", d.Path, err)
		}
		d.Content = content
		d.Checksum = sum
		rewritten++
	}
	return rewritten, nil
}

// writeIfChanged writes content to p unless the file already holds exactly it.
func writeIfChanged(store storage.Provider, p, content string) (bool, error) {
	existing, err := store.Read(p)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if err == nil && string(existing) == content {
		return false, nil
	}
	return true, store.Write(p, []byte(content))
}
