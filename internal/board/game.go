// Package board wraps the rules library for move entry, game outcomes and
// text rendering.
package board

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	chess "github.com/corentings/chess/v2"

	"github.com/verte-zerg/chessex/internal/model"
)

// StartFEN is the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ErrIllegalMove is returned when a move is neither legal SAN nor legal UCI
// in the current position.
var ErrIllegalMove = errors.New("illegal move")

// uciMove matches coordinate notation. SAN decoding would also accept these
// strings as pawn moves, so they are only decoded as UCI.
var uciMove = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// NewGame returns a game at fen, or at the starting position when fen is empty.
func NewGame(fen string) (*chess.Game, error) {
	if strings.TrimSpace(fen) == "" {
		return chess.NewGame(), nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fen %q: %w", fen, err)
	}
	return chess.NewGame(opt), nil
}

// Push applies a SAN or UCI move and returns its SAN. The game is left
// unchanged when the move is rejected.
func Push(game *chess.Game, move string) (string, error) {
	raw := strings.TrimSpace(move)
	if raw == "" {
		return "", ErrIllegalMove
	}
	pos := game.Position()
	if err := pushNotation(game, raw); err != nil {
		return "", fmt.Errorf("%s: %w", raw, ErrIllegalMove)
	}
	last := LastMove(game)
	if last == nil {
		return "", fmt.Errorf("%s: %w", raw, ErrIllegalMove)
	}
	return chess.AlgebraicNotation{}.Encode(pos, last), nil
}

func pushNotation(game *chess.Game, raw string) error {
	if lower := strings.ToLower(raw); uciMove.MatchString(lower) {
		return game.PushNotationMove(lower, chess.UCINotation{}, nil)
	}
	return game.PushNotationMove(raw, chess.AlgebraicNotation{}, nil)
}

// LastMove returns the most recent move or nil.
func LastMove(game *chess.Game) *chess.Move {
	moves := game.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

// ResultingFEN returns the FEN reached by playing san from fen.
func ResultingFEN(fen, san string) (string, error) {
	game, err := NewGame(fen)
	if err != nil {
		return "", err
	}
	if err := game.PushNotationMove(san, chess.AlgebraicNotation{}, nil); err != nil {
		return "", fmt.Errorf("%s: %w", san, ErrIllegalMove)
	}
	return game.FEN(), nil
}

// Turn returns the side to move.
func Turn(game *chess.Game) model.Color {
	if game.Position().Turn() == chess.Black {
		return model.Black
	}
	return model.White
}

// Result describes a finished game.
type Result struct {
	Over   bool
	Draw   bool
	Winner model.Color
	Reason string
}

// Outcome inspects the game for checkmate and draws.
func Outcome(game *chess.Game) Result {
	switch game.Outcome() {
	case chess.WhiteWon:
		return Result{Over: true, Winner: model.White, Reason: wonReason(model.White, game.Method())}
	case chess.BlackWon:
		return Result{Over: true, Winner: model.Black, Reason: wonReason(model.Black, game.Method())}
	case chess.Draw:
		return Result{Over: true, Draw: true, Reason: drawReason(game.Method())}
	default:
		return Result{}
	}
}

func wonReason(winner model.Color, method chess.Method) string {
	if method == chess.Checkmate {
		return fmt.Sprintf("Checkmate, %s wins", strings.ToLower(winner.Title()))
	}
	return fmt.Sprintf("%s wins by %s", winner.Title(), methodName(method))
}

func drawReason(method chess.Method) string {
	switch method {
	case chess.Stalemate:
		return "Draw by stalemate"
	case chess.InsufficientMaterial:
		return "Draw by insufficient material"
	default:
		return "Draw by " + methodName(method)
	}
}

// methodName turns "ThreefoldRepetition" into "threefold repetition".
func methodName(method chess.Method) string {
	name := method.String()
	var b strings.Builder
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
