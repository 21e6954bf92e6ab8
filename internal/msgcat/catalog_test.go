package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedMessagesRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := c.Render("blitz.ended", map[string]any{"Reason": "Black wins on time"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Game over: Black wins on time" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := c.Text("server.position_not_found", nil); got != "Position not found" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestMissingKeyAndField(t *testing.T) {
	c := Default()
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("expected error for missing key")
	}
	if _, err := c.Render("explorer.illegal", map[string]any{}); err == nil {
		t.Fatalf("expected error for missing field")
	}
	if got := c.Text("nope", nil); got != "nope" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("blitz:\n  your_move: \"Go!\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Text("blitz.your_move", nil); got != "Go!" {
		t.Fatalf("expected override, got %q", got)
	}
	if got := c.Text("blitz.thinking", nil); !strings.HasPrefix(got, "Opponent") {
		t.Fatalf("expected embedded default kept, got %q", got)
	}
}

func TestDuplicateOverrideKeys(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("blitz:\n  idle: x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
