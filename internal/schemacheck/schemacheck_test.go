package schemacheck_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docops/internal/apperr"
	"github.com/starford/docops/internal/schemacheck"
	"github.com/starford/docops/internal/testutil"
)

const userSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "integer"},
    "name": {"type": "string"},
    "active": {"type": "boolean"},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["id", "name"]
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func options(dir string) schemacheck.Options {
	return schemacheck.Options{
		SchemaDir:  filepath.Join(dir, "schemas"),
		DataDir:    filepath.Join(dir, "data"),
		SchemaFile: "master.schema.json",
		Extensions: []string{".json", ".yaml", ".yml"},
		Logger:     quietLogger(),
	}
}

func compileSchema(t *testing.T, schema string) *schemacheck.Validator {
	t.Helper()
	dir, _ := testutil.TestTree(t, map[string]string{"master.schema.json": schema})
	v, err := schemacheck.Compile(filepath.Join(dir, "master.schema.json"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return v
}

func loadData(t *testing.T, name, content string) any {
	t.Helper()
	dir, _ := testutil.TestTree(t, map[string]string{name: content})
	doc, err := schemacheck.Load(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return doc
}

func TestLoad(t *testing.T) {
	dir, _ := testutil.TestTree(t, map[string]string{
		"ok.json":       `{"id": 1, "name": "x"}`,
		"broken.json":   "{\n  \"id\": 1,\n  \"name\" \"x\"\n}",
		"trailing.json": `{"id": 1} {"id": 2}`,
		"empty.json":    "  \n",
		"ok.yaml":       "id: 1\nname: x\ntags: [a, b]\n",
		"broken.yaml":   "id: [1, 2\n",
	})

	tests := []struct {
		name    string
		file    string
		wantErr error
	}{
		{name: "valid json", file: "ok.json"},
		{name: "valid yaml", file: "ok.yaml"},
		{name: "missing file", file: "nope.json", wantErr: apperr.ErrNotFound},
		{name: "malformed json", file: "broken.json", wantErr: apperr.ErrParse},
		{name: "trailing data", file: "trailing.json", wantErr: apperr.ErrParse},
		{name: "empty document", file: "empty.json", wantErr: apperr.ErrParse},
		{name: "malformed yaml", file: "broken.yaml", wantErr: apperr.ErrParse},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := schemacheck.Load(filepath.Join(dir, tc.file))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, ok := v.(map[string]any); !ok {
				t.Errorf("Load returned %T, want map[string]any", v)
			}
		})
	}
}

func TestLoad_SyntaxErrorHasPosition(t *testing.T) {
	dir, _ := testutil.TestTree(t, map[string]string{
		"broken.json": "{\n  \"id\": 1,\n  \"name\" \"x\"\n}",
	})
	_, err := schemacheck.Load(filepath.Join(dir, "broken.json"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("err = %v, want position on line 3", err)
	}
}

func TestLoad_YAMLDatesKeepSpelling(t *testing.T) {
	doc := loadData(t, "event.yaml", "date: 2024-01-01\nat: 2024-01-01T10:30:00+02:00\nquoted: \"2024-02-02\"\n")

	m := doc.(map[string]any)
	want := map[string]string{
		"date":   "2024-01-01",
		"at":     "2024-01-01T10:30:00+02:00",
		"quoted": "2024-02-02",
	}
	for k, w := range want {
		if m[k] != w {
			t.Errorf("%s = %#v, want %q", k, m[k], w)
		}
	}

	v := compileSchema(t, `{"properties": {"date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}}}`)
	if violation := v.Validate(doc); violation != nil {
		t.Errorf("date rejected: %v", violation)
	}
}

func TestValidate_Valid(t *testing.T) {
	v := compileSchema(t, userSchema)
	doc := loadData(t, "user.json", `{"id": 1, "name": "Test User"}`)

	if violation := v.Validate(doc); violation != nil {
		t.Errorf("Validate = %v, want nil", violation)
	}
}

func TestValidate_MissingNameAndWrongID(t *testing.T) {
	v := compileSchema(t, userSchema)
	doc := loadData(t, "user.json", `{"id": "one", "active": true}`)

	violation := v.Validate(doc)
	if violation == nil {
		t.Fatal("expected a violation")
	}
	if len(violation.Path) != 0 || !strings.Contains(violation.Message, "name") {
		t.Errorf("violation = %+v, want missing name at the root", violation)
	}
	if violation.Keyword != "/required" {
		t.Errorf("keyword = %q, want /required", violation.Keyword)
	}
}

func TestValidate_SameViolationEveryRun(t *testing.T) {
	v := compileSchema(t, `{
  "type": "object",
  "properties": {
    "d": {"type": "integer"},
    "b": {"type": "integer"},
    "a": {"type": "integer"},
    "c": {"type": "integer"}
  }
}`)
	doc := loadData(t, "data.json", `{"a": "x", "b": "x", "c": "x", "d": "x"}`)

	for i := 0; i < 100; i++ {
		violation := v.Validate(doc)
		if violation == nil {
			t.Fatal("expected a violation")
		}
		if got := violation.Pointer(); got != "/a" {
			t.Fatalf("run %d reported %s, want /a", i, got)
		}
	}
}

func TestValidate_NestedPath(t *testing.T) {
	v := compileSchema(t, userSchema)
	doc := loadData(t, "user.json", `{"id": 1, "name": "x", "tags": ["a", 2]}`)

	violation := v.Validate(doc)
	if violation == nil {
		t.Fatal("expected a violation")
	}
	if len(violation.Path) != 2 || violation.Path[0] != "tags" || violation.Path[1] != "1" {
		t.Errorf("path = %v, want [tags 1]", violation.Path)
	}
	if violation.Pointer() != "/tags/1" {
		t.Errorf("pointer = %q", violation.Pointer())
	}
	if violation.Message == "" {
		t.Error("empty message")
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	dir, _ := testutil.TestTree(t, map[string]string{
		"bad.schema.json":    `{"type": 12}`,
		"broken.schema.json": `{"type": `,
	})

	if _, err := schemacheck.Compile(filepath.Join(dir, "bad.schema.json")); !errors.Is(err, apperr.ErrInvalidSchema) {
		t.Errorf("err = %v, want ErrInvalidSchema", err)
	}
	if _, err := schemacheck.Compile(filepath.Join(dir, "broken.schema.json")); !errors.Is(err, apperr.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestSummarize(t *testing.T) {
	results := []schemacheck.Result{
		{File: "data/a.json", Outcome: schemacheck.Valid},
		{File: "data/b.json", Outcome: schemacheck.Invalid, Violation: &schemacheck.Violation{
			Message: "missing properties: 'name'",
			Keyword: "/required",
		}},
		{File: "data/c.json", Outcome: schemacheck.LoadFailed, Err: apperr.ErrParse},
	}

	var buf bytes.Buffer
	if schemacheck.Summarize(&buf, results) {
		t.Error("Summarize reported success")
	}

	out := buf.String()
	for _, want := range []string{
		"data/a.json is valid.",
		"data/b.json is INVALID.",
		"Schema Error: missing properties: 'name'",
		"Path: / (schema: /required)",
		"data/c.json could not be loaded (invalid syntax)",
		"2 of 3 data files failed validation.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummarize_AllPassed(t *testing.T) {
	var buf bytes.Buffer
	if !schemacheck.Summarize(&buf, []schemacheck.Result{{File: "a.json", Outcome: schemacheck.Valid}}) {
		t.Error("Summarize reported failure")
	}
	if !strings.Contains(buf.String(), "All 1 data files passed validation") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		files       map[string]string
		wantErr     error
		wantPassed  bool
		wantResults int
	}{
		{
			name: "single valid file",
			files: map[string]string{
				"schemas/master.schema.json": userSchema,
				"data/user_valid.json":       `{"id": 1, "name": "Test User"}`,
			},
			wantPassed:  true,
			wantResults: 1,
		},
		{
			name: "one invalid file fails the run",
			files: map[string]string{
				"schemas/master.schema.json": userSchema,
				"data/user_valid.json":       `{"id": 1, "name": "Test User"}`,
				"data/user_invalid.json":     `{"id": "one", "active": true}`,
			},
			wantResults: 2,
		},
		{
			name: "load error fails the run and later files are still checked",
			files: map[string]string{
				"schemas/master.schema.json": userSchema,
				"data/a_broken.json":         `{"id": `,
				"data/b_valid.yaml":          "id: 2\nname: yaml user\n",
			},
			wantResults: 2,
		},
		{
			name:    "absent schema directory",
			files:   map[string]string{"data/user.json": `{"id": 1, "name": "x"}`},
			wantErr: schemacheck.ErrSchemaNotFound,
		},
		{
			name: "absent designated schema",
			files: map[string]string{
				"schemas/other.schema.json": userSchema,
				"data/user.json":            `{"id": 1, "name": "x"}`,
			},
			wantErr: schemacheck.ErrSchemaNotFound,
		},
		{
			name: "empty schema directory is vacuously satisfied",
			files: map[string]string{
				"schemas/README.txt": "nothing here",
				"data/user.json":     `{"id": "bad"}`,
			},
			wantPassed: true,
		},
		{
			name:       "no data files is vacuously satisfied",
			files:      map[string]string{"schemas/master.schema.json": userSchema},
			wantPassed: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir, _ := testutil.TestTree(t, tc.files)
			var buf bytes.Buffer

			summary, err := schemacheck.Run(options(dir), &buf)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) || !errors.Is(err, apperr.ErrNotFound) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				if !strings.Contains(err.Error(), "schema not found") {
					t.Errorf("err = %q", err.Error())
				}
				if buf.Len() != 0 {
					t.Errorf("no per-file validation expected, got:\n%s", buf.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if summary.Passed != tc.wantPassed {
				t.Errorf("Passed = %v, want %v", summary.Passed, tc.wantPassed)
			}
			if len(summary.Results) != tc.wantResults {
				t.Errorf("results = %d, want %d", len(summary.Results), tc.wantResults)
			}
		})
	}
}

func TestRun_ReportsViolationDetail(t *testing.T) {
	dir, _ := testutil.TestTree(t, map[string]string{
		"schemas/master.schema.json": userSchema,
		"data/user.json":             `{"id": 1, "name": 7}`,
	})
	var buf bytes.Buffer

	summary, err := schemacheck.Run(options(dir), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(summary.Results))
	}

	res := summary.Results[0]
	if res.Outcome != schemacheck.Invalid {
		t.Fatalf("outcome = %v, want invalid", res.Outcome)
	}
	if len(res.Violation.Path) != 1 || res.Violation.Path[0] != "name" {
		t.Errorf("path = %v, want [name]", res.Violation.Path)
	}
	if !strings.Contains(buf.String(), "Path: /name (schema: /properties/name/type)") {
		t.Errorf("output =\n%s", buf.String())
	}
}
