// Package generator builds randomized opening positions from move statistics.
package generator

import (
	"context"
	"math/rand"
	"time"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/selector"
)

// DefaultPlies is the number of half-moves played for a generated opening.
const DefaultPlies = 4

// MoveSource lists statistics moves for a position.
type MoveSource interface {
	MovesByFEN(ctx context.Context, fen, rating string) ([]model.MoveStat, error)
}

// Generator produces openings by sampling popular continuations.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Rand exposes the generator's random source.
func (g *Generator) Rand() *rand.Rand {
	return g.rnd
}

// Opening plays up to plies half-moves from the starting position, each one
// drawn in proportion to how often it was played at rating. It stops early
// when the game ends, the source has nothing for the position, or a move
// cannot be applied, and returns the FEN reached with the moves played.
func (g *Generator) Opening(ctx context.Context, src MoveSource, rating string, plies int) (string, []string, error) {
	game, err := board.NewGame("")
	if err != nil {
		return "", nil, err
	}
	var played []string
	for i := 0; i < plies; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		if board.Outcome(game).Over {
			break
		}
		moves, err := src.MovesByFEN(ctx, game.FEN(), rating)
		if err != nil {
			break
		}
		pick, ok := selector.WeightedRandom(moves, g.rnd)
		if !ok {
			break
		}
		san, err := board.Push(game, pick.SAN)
		if err != nil {
			break
		}
		played = append(played, san)
	}
	return game.FEN(), played, nil
}

// Openings generates n openings.
func (g *Generator) Openings(ctx context.Context, src MoveSource, rating string, plies, n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		fen, _, err := g.Opening(ctx, src, rating, plies)
		if err != nil {
			return nil, err
		}
		out = append(out, fen)
	}
	return out, nil
}
