package schemacheck

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/docops/internal/apperr"
)

// Outcome classifies the result for one data file.
type Outcome int

const (
	Valid Outcome = iota
	Invalid
	LoadFailed
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "load-error"
	}
}

// Result is the validation result for one data file.
type Result struct {
	File      string
	Outcome   Outcome
	Violation *Violation // set when Outcome is Invalid
	Err       error      // set when Outcome is LoadFailed
}

// Summarize writes one line per result followed by an overall summary line
// and reports whether every file passed.
func Summarize(w io.Writer, results []Result) bool {
	r := lipgloss.NewRenderer(w)
	pass := r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	fail := r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dim := r.NewStyle().Faint(true)

	failed := 0
	for _, res := range results {
		switch res.Outcome {
		case Valid:
			fmt.Fprintf(w, "%s %s is valid.\n", pass.Render("SUCCESS:"), res.File)
		case Invalid:
			failed++
			fmt.Fprintf(w, "%s %s is INVALID.\n", fail.Render("FAILURE:"), res.File)
			fmt.Fprintf(w, "  Schema Error: %s\n", res.Violation.Message)
			fmt.Fprintf(w, "  Path: %s\n", dim.Render(location(res.Violation)))
		default:
			failed++
			fmt.Fprintf(w, "%s %s could not be loaded (%s).\n", fail.Render("FAILURE:"), res.File, loadKind(res.Err))
			fmt.Fprintf(w, "  Error: %v\n", res.Err)
		}
	}

	if failed == 0 {
		fmt.Fprintf(w, "\n%s\n", pass.Render(fmt.Sprintf("All %d data files passed validation against the master schema.", len(results))))
		return true
	}
	fmt.Fprintf(w, "\n%s\n", fail.Render(fmt.Sprintf("%d of %d data files failed validation.", failed, len(results))))
	return false
}

func location(v *Violation) string {
	if v.Keyword == "" {
		return v.Pointer()
	}
	return fmt.Sprintf("%s (schema: %s)", v.Pointer(), v.Keyword)
}

func loadKind(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return "file not found"
	case errors.Is(err, apperr.ErrParse):
		return "invalid syntax"
	default:
		return "read error"
	}
}
