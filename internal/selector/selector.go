// Package selector picks opponent moves from statistics lists.
package selector

import (
	"errors"
	"math/rand"

	"github.com/verte-zerg/chessex/internal/model"
)

// EligibilityThreshold is the minimum play share a move needs to be considered.
const EligibilityThreshold = 0.02

// OpeningPhaseMoves is the number of opponent moves that follow popularity
// instead of the recursive score.
const OpeningPhaseMoves = 2

// ErrNoEligibleMove is returned when no candidate passes the eligibility filter.
var ErrNoEligibleMove = errors.New("no moves available")

// Eligible keeps moves whose share of total plays is at least threshold.
// With a zero total no share is computable and every move is eligible.
func Eligible(moves []model.MoveStat, total int64, threshold float64) []model.MoveStat {
	out := make([]model.MoveStat, 0, len(moves))
	for _, m := range moves {
		if total <= 0 || float64(m.MoveTimesPlayed)/float64(total) >= threshold {
			out = append(out, m)
		}
	}
	return out
}

// MostPlayed returns the move with the highest times-played count.
// Ties keep the first encountered move.
func MostPlayed(moves []model.MoveStat) (model.MoveStat, bool) {
	if len(moves) == 0 {
		return model.MoveStat{}, false
	}
	best := moves[0]
	for _, m := range moves[1:] {
		if m.MoveTimesPlayed > best.MoveTimesPlayed {
			best = m
		}
	}
	return best, true
}

// BestRecursive returns the move with the highest recursive score for color,
// breaking ties by times-played and then by order.
func BestRecursive(moves []model.MoveStat, color model.Color) (model.MoveStat, bool) {
	if len(moves) == 0 {
		return model.MoveStat{}, false
	}
	best := moves[0]
	for _, m := range moves[1:] {
		score, bestScore := m.RecursiveScore(color), best.RecursiveScore(color)
		if score > bestScore || (score == bestScore && m.MoveTimesPlayed > best.MoveTimesPlayed) {
			best = m
		}
	}
	return best, true
}

// Select applies the opponent policy: popularity for the first opponent
// moves of a session, recursive score afterwards.
func Select(moves []model.MoveStat, total int64, opponentMoveIndex int, color model.Color) (model.MoveStat, error) {
	eligible := Eligible(moves, total, EligibilityThreshold)
	var (
		chosen model.MoveStat
		ok     bool
	)
	if opponentMoveIndex < OpeningPhaseMoves {
		chosen, ok = MostPlayed(eligible)
	} else {
		chosen, ok = BestRecursive(eligible, color)
	}
	if !ok {
		return model.MoveStat{}, ErrNoEligibleMove
	}
	return chosen, nil
}

// WeightedRandom picks a move with probability proportional to its
// times-played count. Moves with no plays are only picked when all are zero.
func WeightedRandom(moves []model.MoveStat, rnd *rand.Rand) (model.MoveStat, bool) {
	if len(moves) == 0 {
		return model.MoveStat{}, false
	}
	total := model.SumMoveTimesPlayed(moves)
	if total <= 0 {
		return moves[rnd.Intn(len(moves))], true
	}
	roll := rnd.Int63n(total)
	var acc int64
	for _, m := range moves {
		if m.MoveTimesPlayed <= 0 {
			continue
		}
		acc += m.MoveTimesPlayed
		if roll < acc {
			return m, true
		}
	}
	return moves[len(moves)-1], true
}

// BestWinRate returns the move with the best plain win rate for the side to
// move, measured as white wins over times played.
func BestWinRate(moves []model.MoveStat, toMove model.Color) (model.MoveStat, bool) {
	var (
		best      model.MoveStat
		bestScore = -1.0
		found     bool
	)
	for _, m := range moves {
		if m.TimesPlayed <= 0 {
			continue
		}
		rate := float64(m.WhiteWins) / float64(m.TimesPlayed)
		if toMove == model.Black {
			rate = 1 - rate
		}
		if rate > bestScore {
			best, bestScore, found = m, rate, true
		}
	}
	return best, found
}

// WorstRecursive returns the move that maximizes the other side's
// recursive score.
func WorstRecursive(moves []model.MoveStat, toMove model.Color) (model.MoveStat, bool) {
	if len(moves) == 0 {
		return model.MoveStat{}, false
	}
	other := toMove.Opposite()
	best := moves[0]
	for _, m := range moves[1:] {
		if m.RecursiveScore(other) > best.RecursiveScore(other) {
			best = m
		}
	}
	return best, true
}
