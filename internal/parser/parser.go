// Package parser extracts frontmatter, titles, and link targets from Markdown content.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	headingRe = regexp.MustCompile(`^#[ \t]+(.*)$`)
	linkRe    = regexp.MustCompile(`\[.*?\]\((.*?)\)`)
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
}

// Parse extracts frontmatter, body, and title from raw Markdown bytes.
// The title is the first top-level heading, then a frontmatter "title",
// then a title derived from the file name.
func Parse(filePath string, data []byte) *Result {
	fm, body := splitFrontmatter(data)

	title := headingTitle(body)
	if title == "" {
		title = frontmatterTitle(fm)
	}
	if title == "" {
		title = FallbackTitle(filePath)
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       title,
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: the whole content is body.
		return nil, string(data)
	}

	return fm, body
}

// headingTitle returns the text of the first "# " heading line, or "".
func headingTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		m := headingRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return ""
}

func frontmatterTitle(fm map[string]interface{}) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm["title"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// FallbackTitle derives a title from a file name: the extension is stripped,
// "-" and "_" become spaces, and each word is title-cased.
// "guides/my-notes.md" yields "My Notes".
func FallbackTitle(filePath string) string {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCase(base)
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

// ExtractLinks returns the deduplicated targets of inline [label](target)
// links whose target ends in one of exts, in order of first appearance.
func ExtractLinks(content string, exts []string) []string {
	matches := linkRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if !hasSuffix(target, exts) {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

func hasSuffix(s string, exts []string) bool {
	for _, e := range exts {
		if strings.HasSuffix(s, e) {
			return true
		}
	}
	return false
}
