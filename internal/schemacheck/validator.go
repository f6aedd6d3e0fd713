package schemacheck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/starford/docops/internal/apperr"
)

// Violation is the first schema constraint a data document failed.
type Violation struct {
	Message string
	Path    []string // field names and array indices from the document root
	Keyword string   // location of the failing keyword within the schema
}

// Pointer renders Path as a JSON pointer; the document root is "/".
func (v *Violation) Pointer() string {
	if len(v.Path) == 0 {
		return "/"
	}
	escaped := make([]string, len(v.Path))
	for i, seg := range v.Path {
		escaped[i] = strings.NewReplacer("~", "~0", "/", "~1").Replace(seg)
	}
	return "/" + strings.Join(escaped, "/")
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s (path: %s)", v.Message, v.Pointer())
}

// Validator checks documents against one compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile loads the schema file at path and compiles it. Load errors are
// returned as from Load; a schema that does not compile wraps
// apperr.ErrInvalidSchema.
func Compile(path string) (*Validator, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", apperr.ErrInvalidSchema, path, err.Error())
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve schema path: %w", err)
	}
	url := "file://" + filepath.ToSlash(abs)

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", apperr.ErrInvalidSchema, path, err.Error())
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", apperr.ErrInvalidSchema, path, err.Error())
	}
	return &Validator{schema: schema}, nil
}

// Validate returns nil if doc satisfies the schema, otherwise the first
// violated constraint.
func (v *Validator) Validate(doc any) *Violation {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Violation{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &Violation{
		Message: leaf.Message,
		Path:    splitPointer(leaf.InstanceLocation),
		Keyword: leaf.KeywordLocation,
	}
}

// firstLeaf descends to the most specific error. Causes are unordered, so at
// each level it takes the one earliest in the document, then in the schema.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		next := ve.Causes[0]
		for _, c := range ve.Causes[1:] {
			if before(c, next) {
				next = c
			}
		}
		ve = next
	}
	return ve
}

func before(a, b *jsonschema.ValidationError) bool {
	if a.InstanceLocation != b.InstanceLocation {
		return a.InstanceLocation < b.InstanceLocation
	}
	return a.KeywordLocation < b.KeywordLocation
}

func splitPointer(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return nil
	}
	segs := strings.Split(ptr, "/")
	for i, s := range segs {
		segs[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
	}
	return segs
}
