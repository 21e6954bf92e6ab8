// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Color identifies a side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// ParseColor parses a color name ("white", "w", "black", "b").
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return "", fmt.Errorf("unknown color %q (use white or black)", s)
	}
}

// Opposite returns the other side.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Title returns the capitalized color name.
func (c Color) Title() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Position is the aggregate record for one position. Immutable once created.
type Position struct {
	PositionID          string
	FEN                 string
	TimesPlayed         int64
	WhiteWins           int64
	BlackWins           int64
	RecursiveScoreWhite float64
	RecursiveScoreBlack float64
	Elo                 int64
}

// Resolved reports whether the position carries an API identifier.
func (p Position) Resolved() bool {
	return p.PositionID != ""
}

// MoveStat is one candidate move from a position.
type MoveStat struct {
	SAN                 string
	MoveTimesPlayed     int64
	TimesPlayed         int64
	WhiteWins           int64
	BlackWins           int64
	RecursiveScoreWhite float64
	RecursiveScoreBlack float64
	FEN                 string
	PositionID          string
}

// Wins returns the win count for the given side.
func (m MoveStat) Wins(c Color) int64 {
	if c == Black {
		return m.BlackWins
	}
	return m.WhiteWins
}

// RecursiveScore returns the recursive score for the given side.
func (m MoveStat) RecursiveScore(c Color) float64 {
	if c == Black {
		return m.RecursiveScoreBlack
	}
	return m.RecursiveScoreWhite
}

// WinRate returns wins for the side divided by the resulting position count.
func (m MoveStat) WinRate(c Color) float64 {
	if m.TimesPlayed <= 0 {
		return 0
	}
	return float64(m.Wins(c)) / float64(m.TimesPlayed)
}

// SumMoveTimesPlayed totals the edge counts of a candidate list.
func SumMoveTimesPlayed(moves []MoveStat) int64 {
	var total int64
	for _, m := range moves {
		total += m.MoveTimesPlayed
	}
	return total
}

// ClockState holds the remaining time for each side.
type ClockState struct {
	WhiteMs int64
	BlackMs int64
}

// Remaining returns the remaining milliseconds for a side.
func (c ClockState) Remaining(side Color) int64 {
	if side == Black {
		return c.BlackMs
	}
	return c.WhiteMs
}

// RatingLevels are the rating buckets offered by the selectors.
var RatingLevels = []string{"0", "1", "2", "3", "4"}

// StepLevel moves delta steps through levels starting at current, clamping
// at both ends. An unknown current value starts from the first level.
func StepLevel(levels []string, current string, delta int) string {
	if len(levels) == 0 {
		return current
	}
	idx := 0
	for i, l := range levels {
		if l == current {
			idx = i + delta
			break
		}
	}
	return levels[min(max(idx, 0), len(levels)-1)]
}

// ExplorerConfig defines explorer settings.
type ExplorerConfig struct {
	Rating string
	Color  Color
}

// BlitzConfig defines blitz settings.
type BlitzConfig struct {
	Skill       string
	Color       Color
	TimeControl time.Duration
}

// ServeConfig defines statistics server settings.
type ServeConfig struct {
	Addr      string
	DBPath    string
	Min50Path string
	CacheURL  string
	CacheTTL  time.Duration
}

// EvalConfig defines arena settings.
type EvalConfig struct {
	Evaluated        string
	Baseline         string
	Eval             string
	Games            int
	Output           string
	EvaluatedRating  string
	BaselineRating   string
	OpeningsPath     string
	AllStartPos      bool
	GenerateOpenings bool
	RecordFrequency  bool
	GridDir          string
	MaxMoves         int
	Plot             bool
}
