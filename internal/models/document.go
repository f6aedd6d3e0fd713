// Package models defines the domain types for docops.
package models

// Document represents a text document in the indexed tree.
type Document struct {
	Path     string // relative to the root, slash-separated
	Title    string
	Content  string
	Checksum string   // digest of the bytes last read from or written to disk
	Links    []string // resolved outbound targets, deduplicated
}

// Backlink is one entry of a rendered backlinks section.
type Backlink struct {
	Path  string
	Title string
}
