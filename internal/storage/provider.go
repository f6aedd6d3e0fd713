// Package storage defines the file-system abstraction shared by both pipelines.
package storage

// Provider is the interface for file operations under a root directory.
type Provider interface {
	// List returns relative paths of files under dir whose names end in one of exts.
	List(dir string, exts []string, exclude ...string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Exists reports whether a file exists at path (relative to root).
	Exists(path string) bool
}

var _ Provider = (*FS)(nil)
