package statsdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/chessex/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestKeyDecimalForm(t *testing.T) {
	var one Key
	one[0] = 1
	if one.String() != "1" {
		t.Fatalf("expected 1, got %s", one.String())
	}
	var high Key
	high[8] = 1
	if high.String() != "18446744073709551616" || high.Rating() != 1 {
		t.Fatalf("unexpected high key %s rating %d", high.String(), high.Rating())
	}
	var all Key
	for i := range all {
		all[i] = 0xff
	}
	if all.String() != "340282366920938463463374607431768211455" {
		t.Fatalf("unexpected max key %s", all.String())
	}
	parsed, err := ParseID(all.String())
	if err != nil || parsed != all {
		t.Fatalf("round trip failed: %v %v", parsed, err)
	}
}

func TestParseIDRejectsInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "-1", "340282366920938463463374607431768211456"} {
		if _, err := ParseID(s); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID for %q, got %v", s, err)
		}
	}
}

func TestPositionKeyCarriesRating(t *testing.T) {
	a, err := PositionKey(startFEN, 2)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	b, err := PositionKey(startFEN, 3)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if a == b || a.Rating() != 2 || b.Rating() != 3 {
		t.Fatalf("ratings must separate keys: %v %v", a, b)
	}
	again, err := PositionKey(startFEN, 2)
	if err != nil || again != a {
		t.Fatalf("key must be deterministic")
	}
	// Polyglot reference hash of the starting position.
	var low uint64
	for i := 7; i >= 0; i-- {
		low = low<<8 | uint64(a[i])
	}
	if low != 0x463b96181691fc9c {
		t.Fatalf("unexpected polyglot hash %x", low)
	}
}

func seed(t *testing.T, path string) (Key, Key) {
	t.Helper()
	ctx := context.Background()
	s, err := Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer s.Close()
	root, err := PositionKey(startFEN, 1)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	child, err := PositionKey("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1", 1)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if err := s.PutPosition(ctx, root, model.Position{TimesPlayed: 100, WhiteWins: 50, BlackWins: 40, RecursiveScoreWhite: 0.5, RecursiveScoreBlack: 0.5}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutPosition(ctx, child, model.Position{TimesPlayed: 60, WhiteWins: 33, BlackWins: 20, RecursiveScoreWhite: 0.55, RecursiveScoreBlack: 0.45}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutMove(ctx, root, child, "e4", 60); err != nil {
		t.Fatalf("put move: %v", err)
	}
	return root, child
}

func TestOpenReadOnlyQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.sqlite")
	root, child := seed(t, path)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	pos, found, err := s.Position(ctx, root)
	if err != nil || !found {
		t.Fatalf("position: found=%v err=%v", found, err)
	}
	if pos.PositionID != root.String() || pos.TimesPlayed != 100 || pos.Elo != 1 {
		t.Fatalf("unexpected position %+v", pos)
	}

	moves, err := s.NextMoves(ctx, root)
	if err != nil {
		t.Fatalf("moves: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	m := moves[0]
	if m.SAN != "e4" || m.MoveTimesPlayed != 60 || m.TimesPlayed != 60 || m.WhiteWins != 33 || m.PositionID != child.String() {
		t.Fatalf("unexpected move %+v", m)
	}

	if _, found, err := s.Position(ctx, Key{}); err != nil || found {
		t.Fatalf("expected missing position, found=%v err=%v", found, err)
	}
	if err := s.PutMove(ctx, root, child, "d4", 1); err == nil {
		t.Fatalf("expected write to fail on read-only db")
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.sqlite")); err == nil {
		t.Fatalf("expected error for missing db")
	}
}
