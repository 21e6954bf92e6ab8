package board

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	chess "github.com/corentings/chess/v2"

	"github.com/verte-zerg/chessex/internal/model"
)

var (
	ranks = []chess.Rank{chess.Rank8, chess.Rank7, chess.Rank6, chess.Rank5, chess.Rank4, chess.Rank3, chess.Rank2, chess.Rank1}
	files = []chess.File{chess.FileA, chess.FileB, chess.FileC, chess.FileD, chess.FileE, chess.FileF, chess.FileG, chess.FileH}

	lightSquare = lipgloss.NewStyle().Background(lipgloss.Color("#B8A27A")).Foreground(lipgloss.Color("#1A1A1A"))
	darkSquare  = lipgloss.NewStyle().Background(lipgloss.Color("#7A6142")).Foreground(lipgloss.Color("#1A1A1A"))
	lastSquare  = lipgloss.NewStyle().Background(lipgloss.Color("#C89A3A")).Foreground(lipgloss.Color("#1A1A1A"))
	coordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Options controls board rendering.
type Options struct {
	Orientation model.Color
	// Styled enables colored squares; plain output uses '.' for empty squares.
	Styled bool
	Last   *chess.Move
}

// Render draws the position as text, rank 8 on top for white orientation.
func Render(pos *chess.Position, opts Options) string {
	rankOrder, fileOrder := ranks, files
	if opts.Orientation == model.Black {
		rankOrder = reversed(ranks)
		fileOrder = reversed(files)
	}
	b := pos.Board()
	var sb strings.Builder
	for _, rank := range rankOrder {
		sb.WriteString(coord(opts, rank.String()))
		sb.WriteByte(' ')
		for _, file := range fileOrder {
			sq := chess.NewSquare(file, rank)
			sb.WriteString(cell(b.Piece(sq), sq, opts))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for _, file := range fileOrder {
		label := file.String()
		if opts.Styled {
			label = " " + label + " "
		}
		sb.WriteString(coord(opts, label))
	}
	return sb.String()
}

func cell(piece chess.Piece, sq chess.Square, opts Options) string {
	symbol := pieceLetter(piece)
	if !opts.Styled {
		return symbol
	}
	style := darkSquare
	if (int(sq.File())+int(sq.Rank()))%2 == 1 {
		style = lightSquare
	}
	if opts.Last != nil && (opts.Last.S1() == sq || opts.Last.S2() == sq) {
		style = lastSquare
	}
	if symbol == "." {
		symbol = " "
	}
	if piece != chess.NoPiece && piece.Color() == chess.White {
		style = style.Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	}
	return style.Render(" " + symbol + " ")
}

func coord(opts Options, s string) string {
	if !opts.Styled {
		return s
	}
	return coordStyle.Render(s)
}

// pieceLetter returns FEN-style letters, uppercase for white.
func pieceLetter(piece chess.Piece) string {
	if piece == chess.NoPiece {
		return "."
	}
	var letter string
	switch piece.Type() {
	case chess.King:
		letter = "k"
	case chess.Queen:
		letter = "q"
	case chess.Rook:
		letter = "r"
	case chess.Bishop:
		letter = "b"
	case chess.Knight:
		letter = "n"
	default:
		letter = "p"
	}
	if piece.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return letter
}

func reversed[T any](in []T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
