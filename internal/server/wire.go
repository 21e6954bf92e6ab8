package server

import "github.com/verte-zerg/chessex/internal/model"

type errorBody struct {
	Error string `json:"error"`
}

type wirePosition struct {
	PositionID          string  `json:"positionID"`
	TimesPlayed         int64   `json:"timesPlayed"`
	WhiteWins           int64   `json:"whiteWins"`
	BlackWins           int64   `json:"blackWins"`
	RecursiveScoreWhite float64 `json:"recursiveScoreWhite"`
	RecursiveScoreBlack float64 `json:"recursiveScoreBlack"`
	Elo                 int64   `json:"elo"`
}

type wireMove struct {
	PositionID          string  `json:"positionID"`
	TimesPlayed         int64   `json:"timesPlayed"`
	WhiteWins           int64   `json:"whiteWins"`
	BlackWins           int64   `json:"blackWins"`
	RecursiveScoreWhite float64 `json:"recursiveScoreWhite"`
	RecursiveScoreBlack float64 `json:"recursiveScoreBlack"`
	MoveTimesPlayed     int64   `json:"move_times_played"`
	MoveSAN             string  `json:"moveSAN"`
}

func toWirePosition(p model.Position) wirePosition {
	return wirePosition{
		PositionID:          p.PositionID,
		TimesPlayed:         p.TimesPlayed,
		WhiteWins:           p.WhiteWins,
		BlackWins:           p.BlackWins,
		RecursiveScoreWhite: p.RecursiveScoreWhite,
		RecursiveScoreBlack: p.RecursiveScoreBlack,
		Elo:                 p.Elo,
	}
}

func toWireMove(m model.MoveStat) wireMove {
	return wireMove{
		PositionID:          m.PositionID,
		TimesPlayed:         m.TimesPlayed,
		WhiteWins:           m.WhiteWins,
		BlackWins:           m.BlackWins,
		RecursiveScoreWhite: m.RecursiveScoreWhite,
		RecursiveScoreBlack: m.RecursiveScoreBlack,
		MoveTimesPlayed:     m.MoveTimesPlayed,
		MoveSAN:             m.SAN,
	}
}
