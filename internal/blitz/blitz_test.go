package blitz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
)

type fakeSource struct {
	moves  map[string][]model.MoveStat
	err    error
	calls  int
	skills []string
}

func (f *fakeSource) MovesByFEN(_ context.Context, fen, skill string) ([]model.MoveStat, error) {
	f.calls++
	f.skills = append(f.skills, skill)
	if f.err != nil {
		return nil, f.err
	}
	return f.moves[fen], nil
}

func TestBlackStartsWithOpponentMove(t *testing.T) {
	src := &fakeSource{moves: map[string][]model.MoveStat{
		board.StartFEN: {
			{SAN: "d4", MoveTimesPlayed: 400},
			{SAN: "e4", MoveTimesPlayed: 500},
		},
	}}
	c := New(nil)
	c.Start(model.Black, "1", time.Minute)

	if !c.NeedsOpponentMove() {
		t.Fatalf("expected opponent to move first")
	}
	if _, err := c.PlayerMove("e5"); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn before opponent move, got %v", err)
	}
	if err := c.OpponentMove(context.Background(), src); err != nil {
		t.Fatalf("opponent move: %v", err)
	}
	if src.calls != 1 || src.skills[0] != "1" {
		t.Fatalf("expected one lookup with skill 1, got %d %v", src.calls, src.skills)
	}
	if h := c.History(); len(h) != 1 || h[0] != "e4" {
		t.Fatalf("expected most played e4, got %v", h)
	}
	if _, err := c.PlayerMove("e5"); err != nil {
		t.Fatalf("player move: %v", err)
	}
}

func TestPlayerMoveIllegalKeepsState(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	fen := c.Game().FEN()
	if _, err := c.PlayerMove("Ke2"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if c.Game().FEN() != fen || c.NeedsOpponentMove() {
		t.Fatalf("state changed after illegal move")
	}
}

func TestPlayerMoveAcceptsUCIPieceMove(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	san, err := c.PlayerMove("g1f3")
	if err != nil || san != "Nf3" {
		t.Fatalf("expected Nf3, got %q (%v)", san, err)
	}
	if h := c.History(); len(h) != 1 || h[0] != "Nf3" {
		t.Fatalf("unexpected history %v", h)
	}
	req, ok := c.OpponentRequest()
	if !ok || c.Turn() != model.Black {
		t.Fatalf("expected opponent to move after Nf3")
	}
	if !strings.HasPrefix(req.FEN, "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b") {
		t.Fatalf("unexpected position %s", req.FEN)
	}
}

func TestTickDecrementsSideToMoveOnly(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	c.Tick(c.Epoch(), TickInterval)
	clock := c.Clock()
	if clock.WhiteMs != 60000-250 || clock.BlackMs != 60000 {
		t.Fatalf("unexpected clock %+v", clock)
	}
	if _, err := c.PlayerMove("e4"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	c.Tick(c.Epoch(), TickInterval)
	clock = c.Clock()
	if clock.WhiteMs != 60000-250 || clock.BlackMs != 60000-250 {
		t.Fatalf("unexpected clock after move %+v", clock)
	}
}

func TestTickTimeoutEndsGame(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", 300*time.Millisecond)
	c.Tick(c.Epoch(), TickInterval)
	c.Tick(c.Epoch(), TickInterval)
	if c.State() != Ended {
		t.Fatalf("expected ended, got %v", c.State())
	}
	if c.Clock().WhiteMs != 0 {
		t.Fatalf("expected clamped clock, got %d", c.Clock().WhiteMs)
	}
	if c.Reason() != "Black wins on time" || c.Winner() != model.Black {
		t.Fatalf("unexpected result %q %q", c.Reason(), c.Winner())
	}
	c.Tick(c.Epoch(), TickInterval)
	if c.Clock().WhiteMs != 0 || c.Clock().BlackMs != 300 {
		t.Fatalf("clock moved after end: %+v", c.Clock())
	}
}

func TestStaleEpochTickIgnored(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	old := c.Epoch()
	c.Start(model.White, "1", time.Minute)
	c.Tick(old, TickInterval)
	if c.Clock().WhiteMs != 60000 {
		t.Fatalf("stale tick applied: %+v", c.Clock())
	}
}

func TestLaterOpponentMovesUseRecursiveScore(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	play := func(mv string) {
		t.Helper()
		if _, err := c.PlayerMove(mv); err != nil {
			t.Fatalf("player move %s: %v", mv, err)
		}
	}
	reply := func(moves []model.MoveStat) {
		t.Helper()
		req, ok := c.OpponentRequest()
		if !ok {
			t.Fatalf("expected pending opponent request")
		}
		if !c.ApplyOpponentMoves(req.Generation, moves, nil) {
			t.Fatalf("reply dropped")
		}
	}
	play("e4")
	reply([]model.MoveStat{{SAN: "e5", MoveTimesPlayed: 10}})
	play("Nf3")
	reply([]model.MoveStat{{SAN: "Nc6", MoveTimesPlayed: 10}})
	play("Bb5")
	reply([]model.MoveStat{
		{SAN: "a6", MoveTimesPlayed: 900, RecursiveScoreBlack: 0.40},
		{SAN: "Nf6", MoveTimesPlayed: 300, RecursiveScoreBlack: 0.48},
		{SAN: "h5", MoveTimesPlayed: 1, RecursiveScoreBlack: 0.99},
	})
	h := c.History()
	if h[len(h)-1] != "Nf6" {
		t.Fatalf("expected Nf6 (best eligible recursive score), got %v", h)
	}
}

func TestStaleOpponentResponseDropped(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	if _, err := c.PlayerMove("e4"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	req, _ := c.OpponentRequest()
	c.Start(model.White, "1", time.Minute)
	if c.ApplyOpponentMoves(req.Generation, []model.MoveStat{{SAN: "e5", MoveTimesPlayed: 1}}, nil) {
		t.Fatalf("expected stale response dropped")
	}
}

func TestNoEligibleMoveEndsGame(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	if _, err := c.PlayerMove("e4"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	if err := c.OpponentMove(context.Background(), &fakeSource{}); err != nil {
		t.Fatalf("opponent move: %v", err)
	}
	if c.State() != Ended || c.Reason() != "Opponent has no moves available" {
		t.Fatalf("unexpected end %v %q", c.State(), c.Reason())
	}
}

func TestUnplayableOpponentMoveEndsGame(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	if _, err := c.PlayerMove("e4"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	req, _ := c.OpponentRequest()
	c.ApplyOpponentMoves(req.Generation, []model.MoveStat{{SAN: "Qxh2", MoveTimesPlayed: 5}}, nil)
	if c.State() != Ended {
		t.Fatalf("expected session to end")
	}
}

func TestFetchErrorEndsGame(t *testing.T) {
	c := New(nil)
	c.Start(model.White, "1", time.Minute)
	if _, err := c.PlayerMove("d4"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	if err := c.OpponentMove(context.Background(), &fakeSource{err: errors.New("timeout")}); err != nil {
		t.Fatalf("opponent move: %v", err)
	}
	if c.State() != Ended {
		t.Fatalf("expected session to end on fetch error")
	}
}

func TestResign(t *testing.T) {
	c := New(nil)
	if err := c.Resign(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	c.Start(model.Black, "1", time.Minute)
	if err := c.Resign(); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if c.State() != Ended || c.Winner() != model.White {
		t.Fatalf("expected white to win, got %v %q", c.State(), c.Winner())
	}
	if c.NeedsOpponentMove() {
		t.Fatalf("ended session must not await opponent")
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	c := New(nil)
	c.Start(model.Black, "1", time.Minute)
	reply := func(san string) {
		t.Helper()
		req, ok := c.OpponentRequest()
		if !ok {
			t.Fatalf("expected pending opponent request")
		}
		c.ApplyOpponentMoves(req.Generation, []model.MoveStat{{SAN: san, MoveTimesPlayed: 1}}, nil)
	}
	reply("f3")
	if _, err := c.PlayerMove("e5"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	reply("g4")
	if _, err := c.PlayerMove("Qh4#"); err != nil {
		t.Fatalf("player move: %v", err)
	}
	if c.State() != Ended || c.Winner() != model.Black {
		t.Fatalf("expected black checkmate, got %v %q", c.State(), c.Reason())
	}
}
