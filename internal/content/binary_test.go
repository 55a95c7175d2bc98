package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/haybale/haybale/internal/finder"
)

func TestBinaryContentSearcherExtractsMatchingString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")

	data := append([]byte{0x00, 0x01, 0x02}, []byte("HELLO WORLD")...)
	data = append(data, 0x00, 0x00)
	data = append(data, []byte("other")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	expr, err := finder.Parse("*WORLD*")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := NewBinaryContentSearcher(expr, true)
	matches, err := s.Search(path)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].LineText != "HELLO WORLD" {
		t.Errorf("LineText = %q, want %q", matches[0].LineText, "HELLO WORLD")
	}
}

func TestBinaryContentSearcherNoMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	data := append([]byte{0x00, 0x00}, []byte("SHORT")...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	expr, err := finder.Parse("*nonexistent*")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := NewBinaryContentSearcher(expr, true)
	matches, err := s.Search(path)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches, want 0", len(matches))
	}
}
