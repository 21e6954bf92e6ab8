package blitzui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/chessex/internal/blitz"
	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
)

type fakeSource struct {
	byFEN  map[string][]model.MoveStat
	skills []string
}

func (f *fakeSource) MovesByFEN(_ context.Context, fen, skill string) ([]model.MoveStat, error) {
	f.skills = append(f.skills, skill)
	return f.byFEN[fen], nil
}

func newTestModel(color model.Color) (*Model, *fakeSource) {
	src := &fakeSource{byFEN: map[string][]model.MoveStat{
		board.StartFEN: {{SAN: "e4", MoveTimesPlayed: 90}, {SAN: "d4", MoveTimesPlayed: 10}},
	}}
	m := NewModel(model.BlitzConfig{Color: color, Skill: "1", TimeControl: time.Minute}, Options{Source: src})
	return m, src
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(key(k))
	}
	return cmd
}

func TestStartAsBlackFetchesOpponentMoveFirst(t *testing.T) {
	m, src := newTestModel(model.Black)
	press(m, "enter")
	if !m.ctl.NeedsOpponentMove() {
		t.Fatalf("expected opponent to move first")
	}
	if !strings.Contains(m.status, "thinking") {
		t.Fatalf("unexpected status %q", m.status)
	}

	press(m, "e", "5", "enter")
	if !m.failed || m.status != m.msgs.Text("blitz.not_your_turn", nil) {
		t.Fatalf("player input must wait for the opponent, got %q", m.status)
	}

	cmd := m.opponent()
	if cmd == nil {
		t.Fatalf("expected opponent lookup")
	}
	m.Update(cmd())
	if got := m.ctl.History(); len(got) != 1 || got[0] != "e4" {
		t.Fatalf("expected opponent e4, got %v", got)
	}
	if src.skills[0] != "1" {
		t.Fatalf("expected skill 1 lookup, got %v", src.skills)
	}
	m.input.Reset()
	press(m, "e", "5", "enter")
	if got := m.ctl.History(); len(got) != 2 || got[1] != "e5" {
		t.Fatalf("expected player e5, got %v", got)
	}
}

func TestStaleOpponentResultIgnored(t *testing.T) {
	m, _ := newTestModel(model.Black)
	press(m, "enter")
	msg := m.opponent()()
	if err := m.ctl.Resign(); err != nil {
		t.Fatalf("resign: %v", err)
	}
	m.Update(msg)
	if len(m.ctl.History()) != 0 {
		t.Fatalf("result for an abandoned request must be dropped")
	}
}

func TestTicksFromOldEpochAreIgnored(t *testing.T) {
	m, _ := newTestModel(model.White)
	press(m, "enter")
	old := m.ctl.Epoch()
	m.Update(tickMsg{epoch: old})
	if got := m.ctl.Clock().WhiteMs; got != time.Minute.Milliseconds()-250 {
		t.Fatalf("expected one tick, got %d", got)
	}
	press(m, "ctrl+x")
	if m.ctl.State() != blitz.Ended {
		t.Fatalf("expected resignation to end the game")
	}
	press(m, "enter")
	_, cmd := m.Update(tickMsg{epoch: old})
	if cmd != nil {
		t.Fatalf("stale tick must not reschedule")
	}
	if got := m.ctl.Clock().WhiteMs; got != time.Minute.Milliseconds() {
		t.Fatalf("stale tick must not touch the new clock, got %d", got)
	}
}

func TestFlagFallEndsGame(t *testing.T) {
	m, _ := newTestModel(model.White)
	press(m, "enter")
	for i := 0; i < 240; i++ {
		m.Update(tickMsg{epoch: m.ctl.Epoch()})
	}
	if m.ctl.State() != blitz.Ended || !strings.Contains(m.status, "Black wins on time") {
		t.Fatalf("expected loss on time, got %s %q", m.ctl.State(), m.status)
	}
}

func TestSetupKeys(t *testing.T) {
	m, _ := newTestModel(model.White)
	press(m, "tab", "]", "]", "+", "+")
	if m.color != model.Black || m.skill != "3" || m.minutes != 3 {
		t.Fatalf("unexpected setup %s %s %d", m.color, m.skill, m.minutes)
	}
	press(m, "-", "-", "-", "-")
	if m.minutes != minMinutes {
		t.Fatalf("expected minutes clamped at %d, got %d", minMinutes, m.minutes)
	}
	if !strings.Contains(m.View(), "Black 1:00") {
		t.Fatalf("expected idle clock in view:\n%s", m.View())
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int64]string{
		180_000: "3:00",
		61_001:  "1:02",
		10_000:  "0:10",
		9_950:   "0:09.9",
		-5:      "0:00.0",
	}
	for ms, want := range cases {
		if got := FormatClock(ms); got != want {
			t.Fatalf("FormatClock(%d) = %q, want %q", ms, got, want)
		}
	}
}
