package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestLoadTablesBundled verifies the embedded defaults load and resolve lookups.
func TestLoadTablesBundled(t *testing.T) {
	tables := testTables(t)
	if len(tables.Experience) == 0 || len(tables.Index) == 0 {
		t.Fatalf("expected bundled tables, got %#v", tables)
	}
	if got := tables.ExperienceEmoji(0); got != "" {
		t.Fatalf("ExperienceEmoji(0) = %q, want empty", got)
	}
	if got := tables.ExperienceEmoji(1); got != "🐣" {
		t.Fatalf("ExperienceEmoji(1) = %q, want 🐣", got)
	}
	if got := tables.ExperienceEmoji(12); got != "🦅" {
		t.Fatalf("ExperienceEmoji(12) = %q, want 🦅", got)
	}
	if got := tables.IndexEmoji(len(tables.Index)); got != tables.Index[0] {
		t.Fatalf("IndexEmoji() should wrap, got %q", got)
	}
	if got := tables.IndexEmoji(-1); got != "" {
		t.Fatalf("IndexEmoji(-1) = %q, want empty", got)
	}
}

// TestLoadTablesYAML verifies user tables may be YAML and keep file order.
func TestLoadTablesYAML(t *testing.T) {
	dir := t.TempDir()
	exp := filepath.Join(dir, "exp.yaml")
	people := filepath.Join(dir, "people.yaml")
	index := filepath.Join(dir, "index.yaml")
	writeFile(t, exp, "10: ten\n1: one\n")
	writeFile(t, people, "2019DOEJ01: star\n")
	writeFile(t, index, "a: x\nb: y\n")

	tables, err := LoadTables(TablePaths{Experience: exp, People: people, Index: index})
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	want := []Threshold{{Min: 10, Emoji: "ten"}, {Min: 1, Emoji: "one"}}
	if diff := cmp.Diff(want, tables.Experience); diff != "" {
		t.Fatalf("experience mismatch (-want +got):\n%s", diff)
	}
	// File order wins, so 12 ends on the later, lower threshold.
	if got := tables.ExperienceEmoji(12); got != "one" {
		t.Fatalf("ExperienceEmoji(12) = %q, want one", got)
	}
	if got := tables.PersonEmoji("2019DOEJ01"); got != "star" {
		t.Fatalf("PersonEmoji() = %q, want star", got)
	}
	if diff := cmp.Diff([]string{"x", "y"}, tables.Index); diff != "" {
		t.Fatalf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadTablesRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.json")
	writeFile(t, path, `{"many": "x"}`)
	_, err := LoadTables(TablePaths{Experience: path})
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("LoadTables() error = %v, want ErrInvalidTable", err)
	}
}

func TestFlagEmoji(t *testing.T) {
	if got := FlagEmoji("us"); got != "🇺🇸" {
		t.Fatalf("FlagEmoji(us) = %q", got)
	}
	if got := FlagEmoji(""); got != "" {
		t.Fatalf("FlagEmoji(empty) = %q", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
