// Package schemacheck validates structured data files against a designated
// JSON Schema and reports per-file results.
package schemacheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/docops/internal/apperr"
)

// Load reads and parses a JSON or YAML file into a JSON value. Numbers are
// decoded as json.Number. The error wraps apperr.ErrNotFound when the file is
// missing and apperr.ErrParse when its syntax is invalid.
func Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: file %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return decodeYAML(path, data)
	default:
		return decodeJSON(path, data)
	}
}

func decodeJSON(path string, data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w in %s: empty document", apperr.ErrParse, path)
		}
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			line, col := position(data, syn.Offset)
			return nil, fmt.Errorf("%w in %s: line %d column %d: %s", apperr.ErrParse, path, line, col, syn.Error())
		}
		return nil, fmt.Errorf("%w in %s: %s", apperr.ErrParse, path, err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		line, col := position(data, dec.InputOffset())
		return nil, fmt.Errorf("%w in %s: line %d column %d: unexpected data after top-level value", apperr.ErrParse, path, line, col)
	}
	return v, nil
}

func decodeYAML(path string, data []byte) (any, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w in %s: %s", apperr.ErrParse, path, err.Error())
	}
	var raw any
	if root.Kind != 0 {
		timestampsAsText(&root)
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w in %s: %s", apperr.ErrParse, path, err.Error())
		}
	}
	v, err := toJSONValue(raw)
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %s", apperr.ErrParse, path, err.Error())
	}
	return v, nil
}

// timestampsAsText retags timestamp scalars as strings so they keep their
// original spelling instead of becoming time.Time.
func timestampsAsText(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!timestamp" {
		n.Tag = "!!str"
	}
	for _, c := range n.Content {
		timestampsAsText(c)
	}
}

// toJSONValue round-trips a decoded value through JSON so that it only holds
// the types a JSON decoder produces.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}
