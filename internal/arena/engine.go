// Package arena plays statistics-driven engines against each other and
// records per-move evaluations.
package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/selector"
)

// Engine names.
const (
	AvgPlayer              = "avg_player"
	AvgBest                = "avg_best"
	AvgPlayerDeterministic = "avg_player_deterministic"
	RecursiveBest          = "recursive_best"
	RecursiveWorst         = "recursive_worst"
	Blitz                  = "blitz"
)

// ErrNoMove is returned when an engine has nothing to play.
var ErrNoMove = errors.New("engine has no move")

// Source is the statistics feed the engines and evaluators read.
type Source interface {
	MovesByFEN(ctx context.Context, fen, rating string) ([]model.MoveStat, error)
	PositionByFEN(ctx context.Context, fen, rating string) (model.Position, error)
}

// Turn describes the position an engine has to move in.
type Turn struct {
	FEN    string
	Rating string
	ToMove model.Color
	// OwnMoves counts the moves this engine already made in the game.
	OwnMoves int
}

// Engine picks a move in SAN.
type Engine interface {
	Name() string
	Move(ctx context.Context, src Source, t Turn) (string, error)
}

type pickFunc func(moves []model.MoveStat, t Turn) (model.MoveStat, bool)

type statsEngine struct {
	name string
	pick pickFunc
}

func (e statsEngine) Name() string { return e.name }

func (e statsEngine) Move(ctx context.Context, src Source, t Turn) (string, error) {
	moves, err := src.MovesByFEN(ctx, t.FEN, t.Rating)
	if err != nil {
		return "", fmt.Errorf("failed to fetch moves: %w", err)
	}
	m, ok := e.pick(moves, t)
	if !ok {
		return "", ErrNoMove
	}
	return m.SAN, nil
}

// EngineNames lists the supported engines.
func EngineNames() []string {
	names := []string{AvgPlayer, AvgBest, AvgPlayerDeterministic, RecursiveBest, RecursiveWorst, Blitz}
	sort.Strings(names)
	return names
}

// NewEngine returns the named engine. rnd drives the random engines.
func NewEngine(name string, rnd *rand.Rand) (Engine, error) {
	var pick pickFunc
	switch name {
	case AvgPlayer:
		pick = func(moves []model.MoveStat, _ Turn) (model.MoveStat, bool) {
			return selector.WeightedRandom(moves, rnd)
		}
	case AvgBest:
		pick = func(moves []model.MoveStat, t Turn) (model.MoveStat, bool) {
			return selector.BestWinRate(moves, t.ToMove)
		}
	case AvgPlayerDeterministic:
		pick = func(moves []model.MoveStat, _ Turn) (model.MoveStat, bool) {
			return selector.MostPlayed(moves)
		}
	case RecursiveBest:
		pick = func(moves []model.MoveStat, t Turn) (model.MoveStat, bool) {
			return selector.BestRecursive(moves, t.ToMove)
		}
	case RecursiveWorst:
		pick = func(moves []model.MoveStat, t Turn) (model.MoveStat, bool) {
			return selector.WorstRecursive(moves, t.ToMove)
		}
	case Blitz:
		pick = func(moves []model.MoveStat, t Turn) (model.MoveStat, bool) {
			m, err := selector.Select(moves, model.SumMoveTimesPlayed(moves), t.OwnMoves, t.ToMove)
			return m, err == nil
		}
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	return statsEngine{name: name, pick: pick}, nil
}
