package indexer

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/docops/internal/testutil"
)

const header = "# Master Documentation Index\n\n"

func testOptions() Options {
	return Options{
		IndexFile:        "INDEX.md",
		Extensions:       []string{".md", ".markdown"},
		IndexHeader:      header,
		BacklinksHeading: "## Backlinks",
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_IndexAndBacklinks(t *testing.T) {
	dir, store := testutil.TestTree(t, map[string]string{
		"getting-started.md": "# Getting Started\n\nSee [notes](guides/my-notes.md) and [gone](nowhere.md).\n",
		"guides/my-notes.md": "Plain notes without a heading.\n\nBack to [start](../getting-started.md).\n",
		"guides/faq.md":      "# FAQ\n\nRead [notes](my-notes.md).\n",
		"INDEX.md":           "# old index\n",
	})

	res, err := Run(store, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Documents) != 3 {
		t.Fatalf("documents = %d, want 3", len(res.Documents))
	}

	wantIndex := header +
		"- [FAQ](guides/faq.md)\n" +
		"- [Getting Started](getting-started.md)\n" +
		"- [My Notes](guides/my-notes.md)\n"
	if got := testutil.ReadFile(t, dir, "INDEX.md"); got != wantIndex {
		t.Errorf("index =\n%s\nwant\n%s", got, wantIndex)
	}

	notes := testutil.ReadFile(t, dir, "guides/my-notes.md")
	wantSection := "## Backlinks\n\n- [Getting Started](../getting-started.md)\n- [FAQ](../guides/faq.md)\n"
	if !strings.HasSuffix(notes, wantSection) {
		t.Errorf("my-notes.md =\n%s", notes)
	}

	faq := testutil.ReadFile(t, dir, "guides/faq.md")
	if strings.Contains(faq, "Backlinks") {
		t.Errorf("faq.md has no incoming links but got a section:\n%s", faq)
	}
	if faq != "# FAQ\n\nRead [notes](my-notes.md).\n" {
		t.Errorf("faq.md = %q", faq)
	}

	start := testutil.ReadFile(t, dir, "getting-started.md")
	if !strings.HasSuffix(start, "## Backlinks\n\n- [My Notes](guides/my-notes.md)\n") {
		t.Errorf("getting-started.md =\n%s", start)
	}
	if s := res.Graph.Sources("nowhere.md"); len(s) != 0 {
		t.Errorf("dangling link produced edge: %v", s)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir, store := testutil.TestTree(t, map[string]string{
		"a.md":     "# A\n\n[B](b.md)\n",
		"b.md":     "# B\n\n[A](a.md)\n\n## Backlinks\n\n- [Stale](stale.md)\n",
		"sub/c.md": "# C\n[A](../a.md)",
	})

	if _, err := Run(store, testOptions()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	snapshot := map[string]string{}
	for _, p := range []string{"INDEX.md", "a.md", "b.md", "sub/c.md"} {
		snapshot[p] = testutil.ReadFile(t, dir, p)
	}

	res, err := Run(store, testOptions())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if res.IndexWritten || res.Rewritten != 0 {
		t.Errorf("second run wrote files: index=%v rewritten=%d", res.IndexWritten, res.Rewritten)
	}
	for p, want := range snapshot {
		if got := testutil.ReadFile(t, dir, p); got != want {
			t.Errorf("%s changed on second run:\n%q\n%q", p, want, got)
		}
	}
}

func TestRun_OneWayLinkStaysOneWay(t *testing.T) {
	dir, store := testutil.TestTree(t, map[string]string{
		"a.md": "# A\n\n[B](b.md)\n",
		"b.md": "# B\n",
	})

	for i := 1; i <= 3; i++ {
		res, err := Run(store, testOptions())
		if err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
		if i > 1 && res.Rewritten != 0 {
			t.Errorf("Run %d rewrote %d documents", i, res.Rewritten)
		}
		if s := res.Graph.Sources("a.md"); len(s) != 0 {
			t.Errorf("Run %d: Sources(a.md) = %v, want none", i, s)
		}
	}

	if got := testutil.ReadFile(t, dir, "a.md"); got != "# A\n\n[B](b.md)\n" {
		t.Errorf("a.md = %q", got)
	}
	if got := testutil.ReadFile(t, dir, "b.md"); got != "# B\n\n## Backlinks\n\n- [A](a.md)\n" {
		t.Errorf("b.md = %q", got)
	}
}

func TestRun_StripsSectionWhenLinksDisappear(t *testing.T) {
	dir, store := testutil.TestTree(t, map[string]string{
		"a.md": "# A\n\nNo links any more.\n\n## Backlinks\n\n- [B](b.md)\n",
		"b.md": "# B\n",
	})
	if _, err := Run(store, testOptions()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := testutil.ReadFile(t, dir, "a.md"); got != "# A\n\nNo links any more.\n" {
		t.Errorf("a.md = %q", got)
	}
}

func TestRun_LinkToIndexFileCountsButIndexNotRewritten(t *testing.T) {
	dir, store := testutil.TestTree(t, map[string]string{
		"a.md":     "# A\n[index](INDEX.md)\n",
		"INDEX.md": "placeholder\n",
	})
	res, err := Run(store, testOptions())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s := res.Graph.Sources("INDEX.md"); len(s) != 1 {
		t.Errorf("Sources(INDEX.md) = %v", s)
	}
	if got := testutil.ReadFile(t, dir, "INDEX.md"); got != header+"- [A](a.md)\n" {
		t.Errorf("INDEX.md = %q", got)
	}
}

func TestPrepare_CreatesRootAndPlaceholder(t *testing.T) {
	root := filepath.Join(t.TempDir(), "docs")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := Prepare(root, "INDEX.md", logger)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("root not created: %v", err)
	}
	if got := testutil.ReadFile(t, root, "INDEX.md"); got != PlaceholderIndex {
		t.Errorf("placeholder = %q", got)
	}

	res, err := Run(store, testOptions())
	if err != nil {
		t.Fatalf("Run on empty root: %v", err)
	}
	if len(res.Documents) != 0 {
		t.Errorf("documents = %d, want 0", len(res.Documents))
	}
	if got := testutil.ReadFile(t, root, "INDEX.md"); got != header {
		t.Errorf("index = %q, want header only", got)
	}
}

func TestPrepare_KeepsExistingIndex(t *testing.T) {
	dir, _ := testutil.TestTree(t, map[string]string{"INDEX.md": "existing\n"})
	if _, err := Prepare(dir, "INDEX.md", slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got := testutil.ReadFile(t, dir, "INDEX.md"); got != "existing\n" {
		t.Errorf("INDEX.md = %q", got)
	}
}
