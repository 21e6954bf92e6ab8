package explorerui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/explorer"
	"github.com/verte-zerg/chessex/internal/model"
)

type fakeSource struct {
	byFEN   map[string][]model.MoveStat
	ratings []string
}

func (f *fakeSource) MovesByFEN(_ context.Context, fen, rating string) ([]model.MoveStat, error) {
	f.ratings = append(f.ratings, rating)
	moves, ok := f.byFEN[fen]
	if !ok {
		return nil, errors.New("not found")
	}
	return moves, nil
}

func (f *fakeSource) PositionByFEN(context.Context, string, string) (model.Position, error) {
	return model.Position{}, errors.New("not found")
}

func (f *fakeSource) MovesByPosition(context.Context, string) ([]model.MoveStat, error) {
	return nil, errors.New("not found")
}

func (f *fakeSource) Position(context.Context, string) (model.Position, error) {
	return model.Position{}, errors.New("not found")
}

func newTestModel() (*Model, *fakeSource) {
	src := &fakeSource{byFEN: map[string][]model.MoveStat{
		board.StartFEN: {
			{SAN: "d4", MoveTimesPlayed: 300},
			{SAN: "e4", MoveTimesPlayed: 500},
			{SAN: "c4", MoveTimesPlayed: 100},
		},
	}}
	return NewModel(model.ExplorerConfig{Rating: "2"}, Options{Source: src}), src
}

// run executes cmd and feeds fetch results back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(fetchedMsg); ok {
		m.Update(msg)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(key(k))
		run(t, m, cmd)
	}
}

func TestInitialFetchFillsTable(t *testing.T) {
	m, _ := newTestModel()
	run(t, m, m.fetch())
	rows := m.table.Rows()
	if len(rows) != 3 || rows[0][0] != "e4" {
		t.Fatalf("expected rows sorted by played, got %v", rows)
	}
	if !strings.Contains(m.View(), "Played") {
		t.Fatalf("expected table header in view")
	}
}

func TestDigitSortsOnlyWithEmptyInput(t *testing.T) {
	m, _ := newTestModel()
	run(t, m, m.fetch())
	press(t, m, "1")
	if m.exp.SortColumn() != explorer.ColumnMove {
		t.Fatalf("expected move column, got %s", m.exp.SortColumn())
	}
	if got := m.table.Rows()[0][0]; got != "e4" {
		t.Fatalf("expected reverse lexical order to start with e4, got %s", got)
	}
	press(t, m, "e", "3")
	if m.input.Value() != "e3" {
		t.Fatalf("digits must reach the input once typing started, got %q", m.input.Value())
	}
}

func TestTypedMovePlaysAndFetches(t *testing.T) {
	m, src := newTestModel()
	run(t, m, m.fetch())
	press(t, m, "e", "4", "enter")
	if got := m.exp.History(); len(got) != 1 || got[0] != "e4" {
		t.Fatalf("expected e4 in history, got %v", got)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared")
	}
	if len(src.ratings) != 2 {
		t.Fatalf("expected a lookup for the new position, got %d", len(src.ratings))
	}
	if !strings.Contains(m.View(), m.msgs.Text("explorer.empty", nil)) {
		t.Fatalf("expected empty notice for unknown position")
	}
}

func TestEnterOnEmptyInputPlaysSelectedRow(t *testing.T) {
	m, _ := newTestModel()
	run(t, m, m.fetch())
	press(t, m, "enter")
	if got := m.exp.History(); len(got) != 1 || got[0] != "e4" {
		t.Fatalf("expected selected row e4 to be played, got %v", got)
	}
}

func TestIllegalMoveSetsStatus(t *testing.T) {
	m, _ := newTestModel()
	press(t, m, "e", "5", "enter")
	if !m.failed || !strings.Contains(m.status, "e5") {
		t.Fatalf("expected illegal move status, got %q", m.status)
	}
	if len(m.exp.History()) != 0 {
		t.Fatalf("illegal move must not change the game")
	}
}

func TestBackspaceOnEmptyInputGoesBack(t *testing.T) {
	m, _ := newTestModel()
	press(t, m, "backspace")
	if m.status != m.msgs.Text("explorer.start", nil) {
		t.Fatalf("expected start notice, got %q", m.status)
	}
	press(t, m, "d", "4", "enter", "backspace")
	if len(m.exp.History()) != 0 {
		t.Fatalf("expected back to start, got %v", m.exp.History())
	}
}

func TestRatingAndColorKeys(t *testing.T) {
	m, src := newTestModel()
	press(t, m, "]")
	if m.exp.Rating() != "3" || src.ratings[len(src.ratings)-1] != "3" {
		t.Fatalf("expected rating 3 lookup, got %s %v", m.exp.Rating(), src.ratings)
	}
	press(t, m, "tab")
	if m.exp.Color() != model.Black {
		t.Fatalf("expected black perspective")
	}
}

func TestResetRestoresStart(t *testing.T) {
	m, _ := newTestModel()
	press(t, m, "e", "4", "enter", "ctrl+r")
	if len(m.exp.History()) != 0 || m.exp.FEN() != board.StartFEN {
		t.Fatalf("expected reset to start position")
	}
	if len(m.table.Rows()) != 3 {
		t.Fatalf("expected start statistics after reset")
	}
}
