package internal

import (
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// DefaultIndexHeader is written at the top of the generated master index.
const DefaultIndexHeader = "# Master Documentation Index\n\n" +
	"This index is automatically generated and updated on every push to the repository.\n\n"

var (
	headingRe   = regexp.MustCompile(`^#+[ \t]+\S`)
	extensionRe = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)
)

// Config represents the configuration shared by both tools.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Docs   DocsConfig        `yaml:"docs"`
	Export ExportConfig      `yaml:"export"`
	Schema SchemaConfig      `yaml:"schema"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	return c.Schema.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// DocsConfig configures the documentation indexer.
type DocsConfig struct {
	Root             string   `yaml:"root"`
	IndexFile        string   `yaml:"index_file"`
	Extensions       []string `yaml:"extensions"`
	IndexHeader      string   `yaml:"index_header"`
	BacklinksHeading string   `yaml:"backlinks_heading"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.IndexFile, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.Required, validation.Match(extensionRe))),
		validation.Field(&c.BacklinksHeading, validation.Required, validation.Match(headingRe)),
	)
}

// ExportConfig configures the optional SQLite export of the link graph.
// An empty SQLitePath disables the export.
type ExportConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// SchemaConfig configures the schema validation runner.
type SchemaConfig struct {
	SchemaDir  string   `yaml:"schema_dir"`
	DataDir    string   `yaml:"data_dir"`
	SchemaFile string   `yaml:"schema_file"`
	Extensions []string `yaml:"extensions"`
}

// Validate validates the schema configuration.
func (c *SchemaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SchemaDir, validation.Required),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.SchemaFile, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.Required, validation.Match(extensionRe))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Docs: DocsConfig{
			Root:             "docs",
			IndexFile:        "INDEX.md",
			Extensions:       []string{".md", ".markdown"},
			IndexHeader:      DefaultIndexHeader,
			BacklinksHeading: "## Backlinks",
		},
		Schema: SchemaConfig{
			SchemaDir:  "schemas",
			DataDir:    "data",
			SchemaFile: "master.schema.json",
			Extensions: []string{".json"},
		},
	}
}
