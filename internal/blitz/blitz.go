// Package blitz implements a timed game against the statistics opponent.
package blitz

import (
	"context"
	"errors"
	"fmt"
	"time"

	chess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/selector"
)

// TickInterval is the clock resolution.
const TickInterval = 250 * time.Millisecond

// DefaultTimeControl is used when Start receives a non-positive duration.
const DefaultTimeControl = 3 * time.Minute

var (
	// ErrIllegalMove is returned for moves the rules library rejects.
	ErrIllegalMove = board.ErrIllegalMove
	// ErrNotYourTurn is returned when the player moves out of turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNotRunning is returned when no game is in progress.
	ErrNotRunning = errors.New("no game in progress")
)

// State is the controller lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Ended
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return "idle"
	}
}

// MoveSource provides candidate moves for a position.
type MoveSource interface {
	MovesByFEN(ctx context.Context, fen, rating string) ([]model.MoveStat, error)
}

// OpponentRequest is the lookup for the opponent's next move.
type OpponentRequest struct {
	Generation uint64
	FEN        string
	Skill      string
}

// Controller holds one blitz session. Not safe for concurrent use.
type Controller struct {
	logger *zap.Logger

	state     State
	sessionID string
	game      *chess.Game
	history   []string
	player    model.Color
	skill     string
	control   time.Duration
	clock     model.ClockState
	epoch     uint64
	gen       uint64
	awaiting  bool
	oppMoves  int
	reason    string
	winner    model.Color
}

// New constructs an idle controller.
func New(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{logger: logger, game: chess.NewGame(), player: model.White}
}

// Start begins a new session, discarding any previous one.
func (c *Controller) Start(color model.Color, skill string, timeControl time.Duration) {
	if timeControl <= 0 {
		timeControl = DefaultTimeControl
	}
	if color != model.Black {
		color = model.White
	}
	c.state = Running
	c.sessionID = uuid.NewString()
	c.game = chess.NewGame()
	c.history = nil
	c.player = color
	c.skill = skill
	c.control = timeControl
	c.clock = model.ClockState{WhiteMs: timeControl.Milliseconds(), BlackMs: timeControl.Milliseconds()}
	c.epoch++
	c.gen++
	c.oppMoves = 0
	c.reason = ""
	c.winner = ""
	c.awaiting = color == model.Black
	c.logger.Info("blitz session started",
		zap.String("session", c.sessionID),
		zap.String("color", string(color)),
		zap.String("skill", skill),
		zap.Duration("time_control", timeControl),
	)
}

// NeedsOpponentMove reports whether the opponent must move before the
// player's next input is accepted.
func (c *Controller) NeedsOpponentMove() bool {
	return c.state == Running && c.awaiting
}

// PlayerMove validates and applies the player's move.
func (c *Controller) PlayerMove(move string) (string, error) {
	if c.state != Running {
		return "", ErrNotRunning
	}
	if c.awaiting || board.Turn(c.game) != c.player {
		return "", ErrNotYourTurn
	}
	san, err := board.Push(c.game, move)
	if err != nil {
		return "", err
	}
	c.history = append(c.history, san)
	if c.checkGameOver() {
		return san, nil
	}
	c.awaiting = true
	c.gen++
	return san, nil
}

// OpponentRequest returns the lookup for the pending opponent move.
func (c *Controller) OpponentRequest() (OpponentRequest, bool) {
	if !c.NeedsOpponentMove() {
		return OpponentRequest{}, false
	}
	return OpponentRequest{Generation: c.gen, FEN: c.game.FEN(), Skill: c.skill}, true
}

// ApplyOpponentMoves picks and applies the opponent reply from a fetched
// list. Stale generations are ignored and reported as false.
func (c *Controller) ApplyOpponentMoves(gen uint64, moves []model.MoveStat, fetchErr error) bool {
	if gen != c.gen || !c.NeedsOpponentMove() {
		return false
	}
	if fetchErr != nil {
		c.logger.Warn("opponent move lookup failed", zap.String("session", c.sessionID), zap.Error(fetchErr))
		c.end("", "Opponent move unavailable: "+fetchErr.Error())
		return true
	}
	opp := c.player.Opposite()
	chosen, err := selector.Select(moves, model.SumMoveTimesPlayed(moves), c.oppMoves, opp)
	if err != nil {
		c.end("", "Opponent has no moves available")
		return true
	}
	san, err := board.Push(c.game, chosen.SAN)
	if err != nil {
		c.logger.Warn("opponent move rejected", zap.String("session", c.sessionID), zap.String("san", chosen.SAN), zap.Error(err))
		c.end("", fmt.Sprintf("Opponent move %s could not be applied", chosen.SAN))
		return true
	}
	c.history = append(c.history, san)
	c.oppMoves++
	c.awaiting = false
	c.gen++
	c.checkGameOver()
	return true
}

// OpponentMove runs the opponent cycle synchronously.
func (c *Controller) OpponentMove(ctx context.Context, src MoveSource) error {
	req, ok := c.OpponentRequest()
	if !ok {
		return ErrNotYourTurn
	}
	moves, err := src.MovesByFEN(ctx, req.FEN, req.Skill)
	c.ApplyOpponentMoves(req.Generation, moves, err)
	return nil
}

// Tick advances the clock of the side to move. Ticks outside a running game
// or from an older epoch are ignored.
func (c *Controller) Tick(epoch uint64, d time.Duration) {
	if c.state != Running || epoch != c.epoch {
		return
	}
	side := board.Turn(c.game)
	ms := d.Milliseconds()
	if side == model.White {
		c.clock.WhiteMs -= ms
	} else {
		c.clock.BlackMs -= ms
	}
	if c.clock.Remaining(side) <= 0 {
		if side == model.White {
			c.clock.WhiteMs = 0
		} else {
			c.clock.BlackMs = 0
		}
		winner := side.Opposite()
		c.end(winner, winner.Title()+" wins on time")
	}
}

// Resign ends the game in the opponent's favour.
func (c *Controller) Resign() error {
	if c.state != Running {
		return ErrNotRunning
	}
	winner := c.player.Opposite()
	c.end(winner, fmt.Sprintf("%s resigned, %s wins", c.player.Title(), winner.Title()))
	return nil
}

func (c *Controller) checkGameOver() bool {
	res := board.Outcome(c.game)
	if !res.Over {
		return false
	}
	c.end(res.Winner, res.Reason)
	return true
}

func (c *Controller) end(winner model.Color, reason string) {
	c.state = Ended
	c.awaiting = false
	c.winner = winner
	c.reason = reason
	c.gen++
	c.logger.Info("blitz session ended",
		zap.String("session", c.sessionID),
		zap.String("reason", reason),
		zap.Int("plies", len(c.history)),
	)
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// SessionID returns the current session identifier.
func (c *Controller) SessionID() string { return c.sessionID }

// Clock returns the remaining time per side.
func (c *Controller) Clock() model.ClockState { return c.clock }

// Epoch identifies the clock ticker of the current session.
func (c *Controller) Epoch() uint64 { return c.epoch }

// Player returns the player's color, which is also the board orientation.
func (c *Controller) Player() model.Color { return c.player }

// Skill returns the opponent rating bucket.
func (c *Controller) Skill() string { return c.skill }

// TimeControl returns the configured time per side.
func (c *Controller) TimeControl() time.Duration { return c.control }

// Turn returns the side to move.
func (c *Controller) Turn() model.Color { return board.Turn(c.game) }

// Game exposes the rules-library game for rendering.
func (c *Controller) Game() *chess.Game { return c.game }

// History returns the SAN moves of the session.
func (c *Controller) History() []string { return append([]string(nil), c.history...) }

// Reason returns the end-of-game reason, empty while running.
func (c *Controller) Reason() string { return c.reason }

// Winner returns the winning side, empty for draws and aborted sessions.
func (c *Controller) Winner() model.Color { return c.winner }
