package openings

import (
	"strings"

	"github.com/verte-zerg/chessex/internal/board"
)

// FilterFunc returns true when a position should be kept.
type FilterFunc func(string) bool

// Valid reports whether fen parses as a position.
func Valid(fen string) bool {
	if len(strings.Fields(fen)) < 4 {
		return false
	}
	_, err := board.NewGame(fen)
	return err == nil
}

// Playable reports whether the side to move still has a legal move.
func Playable(fen string) bool {
	game, err := board.NewGame(fen)
	if err != nil {
		return false
	}
	return !board.Outcome(game).Over
}

// Filter keeps the entries accepted by keep.
func Filter(fens []string, keep FilterFunc) []string {
	out := make([]string, 0, len(fens))
	for _, fen := range fens {
		if keep(fen) {
			out = append(out, fen)
		}
	}
	return out
}
