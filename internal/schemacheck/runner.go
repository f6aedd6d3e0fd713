package schemacheck

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/starford/docops/internal/apperr"
	"github.com/starford/docops/internal/storage"
)

// ErrSchemaNotFound is returned when the schema directory or the designated
// schema file does not exist.
var ErrSchemaNotFound = fmt.Errorf("schema %w", apperr.ErrNotFound)

// Options controls one validation run.
type Options struct {
	SchemaDir  string
	DataDir    string
	SchemaFile string // designated schema, relative to SchemaDir
	Extensions []string
	Logger     *slog.Logger
}

// Summary is the aggregate result of a run.
type Summary struct {
	Results []Result // empty when no schema or data files were found
	Passed  bool
}

// Run validates every data file under opts.DataDir against the designated
// schema and writes the report to w. A missing schema directory or schema
// file, and a schema that does not load or compile, are returned as errors
// before any data file is checked.
func Run(opts Options, w io.Writer) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	schemaStore, err := storage.NewFS(opts.SchemaDir)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: directory %s", ErrSchemaNotFound, opts.SchemaDir)
	}
	if err != nil {
		return nil, err
	}
	schemaFiles, err := schemaStore.List("", opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(schemaFiles) == 0 {
		logger.Warn("no schema files found, skipping validation", slog.String("dir", opts.SchemaDir))
		return &Summary{Passed: true}, nil
	}

	dataFiles, err := listData(opts.DataDir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(dataFiles) == 0 {
		logger.Warn("no data files found, skipping validation", slog.String("dir", opts.DataDir))
		return &Summary{Passed: true}, nil
	}

	schemaPath := filepath.Join(opts.SchemaDir, filepath.FromSlash(opts.SchemaFile))
	if !schemaStore.Exists(opts.SchemaFile) {
		return nil, fmt.Errorf("%w: master schema file %s", ErrSchemaNotFound, schemaPath)
	}
	validator, err := Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("master schema: %w", err)
	}

	results := make([]Result, 0, len(dataFiles))
	for _, rel := range dataFiles {
		file := filepath.Join(opts.DataDir, filepath.FromSlash(rel))
		logger.Debug("validating", slog.String("file", file), slog.String("schema", schemaPath))
		results = append(results, Check(validator, file))
	}

	return &Summary{Results: results, Passed: Summarize(w, results)}, nil
}

// Check loads and validates a single data file.
func Check(v *Validator, file string) Result {
	doc, err := Load(file)
	if err != nil {
		return Result{File: file, Outcome: LoadFailed, Err: err}
	}
	if violation := v.Validate(doc); violation != nil {
		return Result{File: file, Outcome: Invalid, Violation: violation}
	}
	return Result{File: file, Outcome: Valid}
}

// listData lists data files; an absent directory counts as empty.
func listData(dir string, exts []string) ([]string, error) {
	store, err := storage.NewFS(dir)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return store.List("", exts)
}
