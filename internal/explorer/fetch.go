package explorer

import (
	"context"

	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
)

// Request describes the statistics lookup for one position.
type Request struct {
	Generation uint64
	FEN        string
	Rating     string
	PositionID string
}

// Result carries a completed lookup back to the explorer.
type Result struct {
	Generation uint64
	Moves      []model.MoveStat
	Position   model.Position
	Err        error
}

// Request returns the lookup for the current position: by position ID once
// resolved, otherwise by FEN and rating.
func (e *Explorer) Request() Request {
	return Request{
		Generation: e.gen,
		FEN:        e.game.FEN(),
		Rating:     e.cfg.Rating,
		PositionID: e.currentID(),
	}
}

// Fetch performs the lookup. The position record is best-effort; a failure
// to fetch the move list is reported in Err.
func (r Request) Fetch(ctx context.Context, src Source) Result {
	res := Result{Generation: r.Generation}
	if r.PositionID != "" {
		res.Moves, res.Err = src.MovesByPosition(ctx, r.PositionID)
		if res.Err != nil {
			return res
		}
		if pos, err := src.Position(ctx, r.PositionID); err == nil {
			pos.FEN = r.FEN
			res.Position = pos
		}
		return res
	}
	res.Moves, res.Err = src.MovesByFEN(ctx, r.FEN, r.Rating)
	if res.Err != nil {
		return res
	}
	if pos, err := src.PositionByFEN(ctx, r.FEN, r.Rating); err == nil {
		res.Position = pos
	}
	return res
}

// Apply installs a lookup result. Results from an older generation are
// discarded and Apply reports false.
func (e *Explorer) Apply(res Result) bool {
	if res.Generation != e.gen {
		e.logger.Debug("dropping stale statistics", zap.Uint64("generation", res.Generation), zap.Uint64("current", e.gen))
		return false
	}
	if res.Err != nil {
		e.logger.Debug("statistics lookup failed", zap.String("fen", e.game.FEN()), zap.Error(res.Err))
		e.moves = nil
		e.position = model.Position{}
		return true
	}
	e.position = res.Position
	if res.Position.Resolved() && e.currentID() == "" {
		e.setCurrentID(res.Position.PositionID)
	}
	e.moves = e.backfill(res.Moves)
	e.sortMoves()
	return true
}

// Refresh fetches and applies statistics for the current position.
func (e *Explorer) Refresh(ctx context.Context, src Source) {
	e.Apply(e.Request().Fetch(ctx, src))
}

func (e *Explorer) backfill(moves []model.MoveStat) []model.MoveStat {
	out := make([]model.MoveStat, len(moves))
	fen := e.game.FEN()
	for i, m := range moves {
		if m.FEN == "" {
			if next, err := board.ResultingFEN(fen, m.SAN); err == nil {
				m.FEN = next
			}
		}
		out[i] = m
	}
	return out
}
