// Package explorer implements the move explorer state machine.
package explorer

import (
	"context"
	"errors"
	"fmt"

	chess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
)

// ErrIllegalMove is returned for moves the rules library rejects.
var ErrIllegalMove = board.ErrIllegalMove

// ErrNoHistory is returned by Back at the starting position.
var ErrNoHistory = errors.New("no previous position")

// Source provides statistics lookups.
type Source interface {
	MovesByFEN(ctx context.Context, fen, rating string) ([]model.MoveStat, error)
	PositionByFEN(ctx context.Context, fen, rating string) (model.Position, error)
	MovesByPosition(ctx context.Context, positionID string) ([]model.MoveStat, error)
	Position(ctx context.Context, positionID string) (model.Position, error)
}

type frame struct {
	san        string
	fen        string
	positionID string
}

// Explorer holds one exploration session. Not safe for concurrent use.
type Explorer struct {
	cfg    model.ExplorerConfig
	logger *zap.Logger

	game    *chess.Game
	history []frame
	rootID  string

	moves    []model.MoveStat
	position model.Position
	column   Column
	gen      uint64
}

// New constructs an explorer at the starting position.
func New(cfg model.ExplorerConfig, logger *zap.Logger) *Explorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Color == "" {
		cfg.Color = model.White
	}
	e := &Explorer{cfg: cfg, logger: logger, column: ColumnPlayed}
	e.Reset()
	return e
}

// Reset restores the starting position and clears all derived state.
func (e *Explorer) Reset() {
	e.game = chess.NewGame()
	e.history = nil
	e.rootID = ""
	e.moves = nil
	e.position = model.Position{}
	e.gen++
}

// Play validates a SAN or UCI move and applies it.
func (e *Explorer) Play(move string) (string, error) {
	san, err := board.Push(e.game, move)
	if err != nil {
		return "", err
	}
	childID := ""
	for _, m := range e.moves {
		if m.SAN == san {
			childID = m.PositionID
			break
		}
	}
	e.history = append(e.history, frame{san: san, fen: e.game.FEN(), positionID: childID})
	e.changed()
	return san, nil
}

// Back returns to the previous position.
func (e *Explorer) Back() error {
	if len(e.history) == 0 {
		return ErrNoHistory
	}
	n := len(e.history) - 1
	history := e.history[:n:n]
	game := chess.NewGame()
	for _, f := range history {
		if err := game.PushNotationMove(f.san, chess.AlgebraicNotation{}, nil); err != nil {
			return fmt.Errorf("failed to replay %s: %w", f.san, err)
		}
	}
	e.history = history
	e.game = game
	e.changed()
	return nil
}

func (e *Explorer) changed() {
	e.moves = nil
	e.position = model.Position{}
	e.gen++
}

// SetRating changes the rating bucket. Position IDs are rating specific, so
// every resolved ID is forgotten and the next lookup goes by FEN.
func (e *Explorer) SetRating(rating string) {
	if rating == e.cfg.Rating {
		return
	}
	e.cfg.Rating = rating
	e.rootID = ""
	for i := range e.history {
		e.history[i].positionID = ""
	}
	e.changed()
}

// SetColor changes the perspective used by the win-rate columns.
func (e *Explorer) SetColor(c model.Color) {
	e.cfg.Color = c
	e.sortMoves()
}

// Rating returns the selected rating bucket.
func (e *Explorer) Rating() string { return e.cfg.Rating }

// Color returns the selected perspective.
func (e *Explorer) Color() model.Color { return e.cfg.Color }

// FEN returns the current position.
func (e *Explorer) FEN() string { return e.game.FEN() }

// Game exposes the rules-library game for rendering.
func (e *Explorer) Game() *chess.Game { return e.game }

// History returns the SAN moves played so far.
func (e *Explorer) History() []string {
	out := make([]string, len(e.history))
	for i, f := range e.history {
		out[i] = f.san
	}
	return out
}

// CurrentMove returns the last played move, or "" at the start.
func (e *Explorer) CurrentMove() string {
	if len(e.history) == 0 {
		return ""
	}
	return e.history[len(e.history)-1].san
}

// Moves returns the statistics list in display order.
func (e *Explorer) Moves() []model.MoveStat {
	return append([]model.MoveStat(nil), e.moves...)
}

// Position returns the resolved position record, if any.
func (e *Explorer) Position() model.Position { return e.position }

// Generation identifies the current position state.
func (e *Explorer) Generation() uint64 { return e.gen }

func (e *Explorer) currentID() string {
	if len(e.history) == 0 {
		return e.rootID
	}
	return e.history[len(e.history)-1].positionID
}

func (e *Explorer) setCurrentID(id string) {
	if len(e.history) == 0 {
		e.rootID = id
		return
	}
	e.history[len(e.history)-1].positionID = id
}
