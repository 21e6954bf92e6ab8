package explorer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/chessex/internal/model"
)

// Column is a sortable statistics column.
type Column string

const (
	ColumnMove      Column = "move"
	ColumnPlayed    Column = "played"
	ColumnPercent   Column = "percent"
	ColumnWinRate   Column = "winrate"
	ColumnRecursive Column = "recursive"
)

// Columns lists the sortable columns in display order.
var Columns = []Column{ColumnMove, ColumnPlayed, ColumnPercent, ColumnWinRate, ColumnRecursive}

// ParseColumn validates a column name.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown sort column %q", s)
}

// Totals reports both denominators for the percent column: the resolved
// position count (zero when unresolved) and the sum of move counts.
type Totals struct {
	Position int64
	Moves    int64
}

// Effective returns the denominator used for percentages.
func (t Totals) Effective() int64 {
	if t.Position > 0 {
		return t.Position
	}
	return t.Moves
}

// Totals returns the totals for the current list.
func (e *Explorer) Totals() Totals {
	return Totals{Position: e.position.TimesPlayed, Moves: model.SumMoveTimesPlayed(e.moves)}
}

// SortBy re-sorts the list by column, always descending.
func (e *Explorer) SortBy(c Column) {
	e.column = c
	e.sortMoves()
}

// SortColumn returns the active sort column.
func (e *Explorer) SortColumn() Column { return e.column }

func (e *Explorer) sortMoves() {
	SortMoves(e.moves, e.column, e.cfg.Color, e.Totals().Effective())
}

// SortMoves stable-sorts moves descending by column. The move column sorts by
// reverse lexical order of the SAN.
func SortMoves(moves []model.MoveStat, c Column, color model.Color, total int64) {
	key := func(m model.MoveStat) float64 {
		switch c {
		case ColumnPercent:
			return percent(m, total)
		case ColumnWinRate:
			return m.WinRate(color)
		case ColumnRecursive:
			return m.RecursiveScore(color)
		default:
			return float64(m.MoveTimesPlayed)
		}
	}
	if c == ColumnMove {
		sort.SliceStable(moves, func(i, j int) bool { return moves[i].SAN > moves[j].SAN })
		return
	}
	sort.SliceStable(moves, func(i, j int) bool { return key(moves[i]) > key(moves[j]) })
}

func percent(m model.MoveStat, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(m.MoveTimesPlayed) / float64(total)
}

// Row is one display row of the statistics table.
type Row struct {
	SAN       string
	Played    int64
	Percent   float64
	WinRate   float64
	Recursive float64
}

// Rows returns display rows in the current sort order.
func (e *Explorer) Rows() []Row {
	total := e.Totals().Effective()
	rows := make([]Row, len(e.moves))
	for i, m := range e.moves {
		rows[i] = Row{
			SAN:       m.SAN,
			Played:    m.MoveTimesPlayed,
			Percent:   percent(m, total),
			WinRate:   m.WinRate(e.cfg.Color),
			Recursive: m.RecursiveScore(e.cfg.Color),
		}
	}
	return rows
}
