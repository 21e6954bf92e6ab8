package statsclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/verte-zerg/chessex/internal/model"
)

type wireMove struct {
	MoveSAN             *string  `json:"moveSAN"`
	MoveTimesPlayed     *int64   `json:"move_times_played"`
	TimesPlayed         *int64   `json:"timesPlayed"`
	WhiteWins           *int64   `json:"whiteWins"`
	BlackWins           *int64   `json:"blackWins"`
	RecursiveScoreWhite *float64 `json:"recursiveScoreWhite"`
	RecursiveScoreBlack *float64 `json:"recursiveScoreBlack"`
	PositionID          *string  `json:"positionID"`
	FEN                 *string  `json:"fen"`
}

type wirePosition struct {
	PositionID          *string  `json:"positionID"`
	TimesPlayed         *int64   `json:"timesPlayed"`
	WhiteWins           *int64   `json:"whiteWins"`
	BlackWins           *int64   `json:"blackWins"`
	RecursiveScoreWhite *float64 `json:"recursiveScoreWhite"`
	RecursiveScoreBlack *float64 `json:"recursiveScoreBlack"`
	Elo                 *int64   `json:"elo"`
	FEN                 *string  `json:"fen"`
	Error               *string  `json:"error"`
}

// DecodeMoves parses a moves body. Records without a SAN or a move count,
// or with negative counts, are dropped.
func DecodeMoves(body []byte) ([]model.MoveStat, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("failed to decode moves: %w", ErrInvalidResponse)
		}
		if raw, ok := obj["error"]; ok {
			return nil, fmt.Errorf("moves: %s: %w", string(raw), ErrNotFound)
		}
		return nil, fmt.Errorf("moves: unexpected object: %w", ErrInvalidResponse)
	}
	var wire []wireMove
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode moves: %v: %w", err, ErrInvalidResponse)
	}
	out := make([]model.MoveStat, 0, len(wire))
	for _, w := range wire {
		if m, ok := w.validate(); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// DecodePosition parses a position body.
func DecodePosition(body []byte) (model.Position, error) {
	var w wirePosition
	if err := json.Unmarshal(bytes.TrimSpace(body), &w); err != nil {
		return model.Position{}, fmt.Errorf("failed to decode position: %v: %w", err, ErrInvalidResponse)
	}
	if w.Error != nil {
		return model.Position{}, fmt.Errorf("position: %s: %w", *w.Error, ErrNotFound)
	}
	pos := model.Position{
		PositionID:          str(w.PositionID),
		FEN:                 str(w.FEN),
		TimesPlayed:         count(w.TimesPlayed),
		WhiteWins:           count(w.WhiteWins),
		BlackWins:           count(w.BlackWins),
		RecursiveScoreWhite: num(w.RecursiveScoreWhite),
		RecursiveScoreBlack: num(w.RecursiveScoreBlack),
		Elo:                 count(w.Elo),
	}
	if pos.TimesPlayed < 0 || pos.WhiteWins < 0 || pos.BlackWins < 0 {
		return model.Position{}, fmt.Errorf("position: negative count: %w", ErrInvalidResponse)
	}
	return pos, nil
}

func (w wireMove) validate() (model.MoveStat, bool) {
	if w.MoveSAN == nil || *w.MoveSAN == "" || w.MoveTimesPlayed == nil {
		return model.MoveStat{}, false
	}
	m := model.MoveStat{
		SAN:                 *w.MoveSAN,
		MoveTimesPlayed:     *w.MoveTimesPlayed,
		TimesPlayed:         count(w.TimesPlayed),
		WhiteWins:           count(w.WhiteWins),
		BlackWins:           count(w.BlackWins),
		RecursiveScoreWhite: num(w.RecursiveScoreWhite),
		RecursiveScoreBlack: num(w.RecursiveScoreBlack),
		FEN:                 str(w.FEN),
		PositionID:          str(w.PositionID),
	}
	if m.MoveTimesPlayed < 0 || m.TimesPlayed < 0 || m.WhiteWins < 0 || m.BlackWins < 0 {
		return model.MoveStat{}, false
	}
	return m, true
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func count(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
