package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAndShouldIgnore(t *testing.T) {
	dir := t.TempDir()
	content := "*.log\nbuild/\n!important.log\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	set, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !set.ShouldIgnore("debug.log", false) {
		t.Error("expected debug.log to be ignored")
	}
	if set.ShouldIgnore("important.log", false) {
		t.Error("expected important.log to be un-ignored by negation")
	}
	if !set.ShouldIgnore("build", true) {
		t.Error("expected build/ directory to be ignored")
	}
	if set.ShouldIgnore("main.go", false) {
		t.Error("did not expect main.go to be ignored")
	}
}

func TestNilSetNeverIgnores(t *testing.T) {
	var s *Set
	if s.ShouldIgnore("anything", false) {
		t.Error("nil Set should never ignore")
	}
}
