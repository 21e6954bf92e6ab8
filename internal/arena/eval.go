package arena

import (
	"context"
	"fmt"

	"github.com/verte-zerg/chessex/internal/model"
)

// Evaluation modes.
const (
	EvalAvg       = "avg"
	EvalFrequency = "frequency"
)

// PositionScore is the white score of the position at rating minus one half.
// The bool is false when the position has no games.
func PositionScore(ctx context.Context, src Source, fen, rating string) (float64, bool, error) {
	pos, err := src.PositionByFEN(ctx, fen, rating)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch position: %w", err)
	}
	if pos.TimesPlayed <= 0 {
		return 0, false, nil
	}
	return float64(pos.WhiteWins)/float64(pos.TimesPlayed) - 0.5, true, nil
}

// MoveFrequency is the share of games at fen in which san was played. The
// parent count comes from the position record and falls back to the sum
// over all listed moves.
func MoveFrequency(ctx context.Context, src Source, fen, rating, san string) (float64, bool, error) {
	var parent int64
	if pos, err := src.PositionByFEN(ctx, fen, rating); err == nil {
		parent = pos.TimesPlayed
	}
	moves, err := src.MovesByFEN(ctx, fen, rating)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch moves: %w", err)
	}
	var chosen *model.MoveStat
	for i := range moves {
		if moves[i].SAN == san {
			chosen = &moves[i]
			break
		}
	}
	if chosen == nil {
		return 0, false, nil
	}
	if parent <= 0 {
		parent = model.SumMoveTimesPlayed(moves)
	}
	if parent <= 0 {
		return 0, false, nil
	}
	return float64(chosen.MoveTimesPlayed) / float64(parent), true, nil
}
