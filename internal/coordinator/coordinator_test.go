package coordinator

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/haybale/haybale/internal/herr"
	"github.com/haybale/haybale/internal/query"
)

func mustBuild(t *testing.T, raw query.Raw) *query.Query {
	t.Helper()
	q, err := query.Build(raw, time.Now())
	if err != nil {
		t.Fatalf("query.Build: %v", err)
	}
	return q
}

func drain(t *testing.T, c *Coordinator) []*SearchEvent {
	t.Helper()
	var events []*SearchEvent
	for {
		ev, ok := c.Next()
		if !ok {
			break
		}
		events = append(events, ev)
	}
	return events
}

func TestCoordinatorNameOnlyOrdering(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.html", "a.htm", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	q := mustBuild(t, query.Raw{Root: dir, NamePattern: "*.html;*.htm"})
	c, err := New(q)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := drain(t, c)

	var paths []string
	for _, ev := range events {
		if ev.Kind != EventResult {
			t.Fatalf("unexpected warning: %s %s", ev.WarningPath, ev.WarningReason)
		}
		paths = append(paths, filepath.Base(ev.Result.Path))
	}
	want := []string{"a.htm", "a.html"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
}

func TestCoordinatorContentMatchWithContext(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("one\nhello world\nthree\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	q := mustBuild(t, query.Raw{Root: dir, ContentPattern: "*hello*"})
	c, err := New(q)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := drain(t, c)

	if len(events) != 1 || events[0].Kind != EventResult {
		t.Fatalf("events = %+v", events)
	}
	matches := events[0].Result.ContentMatches
	if len(matches) != 1 || matches[0].LineNumber != 2 {
		t.Fatalf("matches = %+v", matches)
	}
}

func TestCoordinatorHiddenDefaultExcluded(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".secret.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "visible.txt"), []byte("x"), 0o644)

	q := mustBuild(t, query.Raw{Root: dir})
	c, _ := New(q)
	events := drain(t, c)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (hidden file excluded)", len(events))
	}
}

func TestCoordinatorMaxDepthZeroOnlyRootFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0o755)
	os.WriteFile(filepath.Join(dir, "top.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(sub, "nested.txt"), []byte("x"), 0o644)

	q := mustBuild(t, query.Raw{Root: dir, HasMaxDepth: true, MaxDepth: 0})
	c, _ := New(q)
	events := drain(t, c)
	if len(events) != 1 || filepath.Base(events[0].Result.Path) != "top.txt" {
		t.Fatalf("events = %+v", events)
	}
}

func TestCoordinatorSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	loop := filepath.Join(dir, "loop")
	if err := os.Symlink(dir, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644)

	q := mustBuild(t, query.Raw{Root: dir})
	c, _ := New(q)
	events := drain(t, c)

	var sawCycle, sawFile bool
	for _, ev := range events {
		if ev.Kind == EventWarning && ev.WarningReason == "symlink cycle" {
			sawCycle = true
		}
		if ev.Kind == EventResult && filepath.Base(ev.Result.Path) == "file.txt" {
			sawFile = true
		}
	}
	if !sawCycle {
		t.Error("expected a symlink cycle warning")
	}
	if !sawFile {
		t.Error("expected file.txt to still be found")
	}
}

func TestCoordinatorRootUnreadable(t *testing.T) {
	_, err := New(mustBuild(t, query.Raw{Root: "/nonexistent/path/for/haybale/test"}))
	if err == nil {
		t.Fatal("expected error for unreadable root")
	}
}

func TestCoordinatorRespectGitignoreRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "skip.log"), []byte("x"), 0o644)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer os.Chdir(cwd)

	// A relative root (the CLI's default of ".") must still resolve
	// gitignore-relative paths correctly against the resolved absolute
	// root, not the raw relative Query.Root.
	q := mustBuild(t, query.Raw{Root: ".", RespectGitignore: true})
	c, err := New(q)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := drain(t, c)

	var names []string
	for _, ev := range events {
		if ev.Kind != EventResult {
			t.Fatalf("unexpected warning: %s %s", ev.WarningPath, ev.WarningReason)
		}
		names = append(names, filepath.Base(ev.Result.Path))
	}
	if len(names) != 1 || names[0] != "keep.txt" {
		t.Fatalf("names = %v, want [keep.txt] (skip.log should be gitignored)", names)
	}
}

func TestCoordinatorWarningsRetained(t *testing.T) {
	dir := t.TempDir()
	loop := filepath.Join(dir, "loop")
	if err := os.Symlink(dir, loop); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	q := mustBuild(t, query.Raw{Root: dir})
	c, err := New(q)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	drain(t, c)

	warnings := c.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("Warnings() = %+v, want 1 retained warning", warnings)
	}
	if warnings[0].Kind != herr.SymlinkCycle {
		t.Errorf("Kind = %v, want %v", warnings[0].Kind, herr.SymlinkCycle)
	}
	if c.WarningsDropped() != 0 {
		t.Errorf("WarningsDropped() = %d, want 0", c.WarningsDropped())
	}
}

func TestCoordinatorCancelStopsStream(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		os.WriteFile(filepath.Join(dir, string(rune('a'+i))+".txt"), []byte("x"), 0o644)
	}

	q := mustBuild(t, query.Raw{Root: dir})
	c, _ := New(q)
	if _, ok := c.Next(); !ok {
		t.Fatal("expected at least one event before cancel")
	}
	c.Cancel()
	if _, ok := c.Next(); ok {
		t.Error("expected no events after Cancel")
	}
}
