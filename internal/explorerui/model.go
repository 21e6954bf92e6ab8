// Package explorerui provides the Bubble Tea move explorer.
package explorerui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/explorer"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
)

const defaultTimeout = 10 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// fetchedMsg carries a completed statistics lookup.
type fetchedMsg struct {
	res explorer.Result
}

// Options configures the explorer UI.
type Options struct {
	Source   explorer.Source
	Messages *msgcat.Catalog
	Logger   *zap.Logger
	Timeout  time.Duration
	Levels   []string
}

// Model implements the Bubble Tea explorer UI.
type Model struct {
	exp     *explorer.Explorer
	src     explorer.Source
	msgs    *msgcat.Catalog
	logger  *zap.Logger
	timeout time.Duration
	levels  []string

	input   textinput.Model
	table   table.Model
	status  string
	failed  bool
	loading bool

	width  int
	height int
}

// NewModel constructs an explorer UI.
func NewModel(cfg model.ExplorerConfig, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Messages == nil {
		opts.Messages = msgcat.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if len(opts.Levels) == 0 {
		opts.Levels = model.RatingLevels
	}
	m := &Model{
		exp:     explorer.New(cfg, opts.Logger),
		src:     opts.Source,
		msgs:    opts.Messages,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		levels:  opts.Levels,
	}
	m.input = newMoveInput()
	m.table = newStatsTable()
	return m
}

func newMoveInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Move: "
	input.Placeholder = "e4, Nf3 or g1f3"
	input.CharLimit = 8
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	return input
}

func newStatsTable() table.Model {
	t := table.New(
		table.WithColumns(columnsFor(explorer.ColumnPlayed)),
		table.WithHeight(10),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

var columnTitles = map[explorer.Column]string{
	explorer.ColumnMove:      "Move",
	explorer.ColumnPlayed:    "Played",
	explorer.ColumnPercent:   "%",
	explorer.ColumnWinRate:   "Win",
	explorer.ColumnRecursive: "Score",
}

var columnWidths = map[explorer.Column]int{
	explorer.ColumnMove:      7,
	explorer.ColumnPlayed:    10,
	explorer.ColumnPercent:   7,
	explorer.ColumnWinRate:   7,
	explorer.ColumnRecursive: 7,
}

// columnsFor marks the active sort column with an arrow.
func columnsFor(active explorer.Column) []table.Column {
	cols := make([]table.Column, 0, len(explorer.Columns))
	for i, c := range explorer.Columns {
		title := fmt.Sprintf("%d %s", i+1, columnTitles[c])
		if c == active {
			title += " ▼"
		}
		cols = append(cols, table.Column{Title: title, Width: max(columnWidths[c], len(title)+1)})
	}
	return cols
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetch())
}

func (m *Model) fetch() tea.Cmd {
	if m.src == nil {
		return nil
	}
	m.loading = true
	req := m.exp.Request()
	src, timeout := m.src, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fetchedMsg{res: req.Fetch(ctx, src)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(3, m.height-8))
		return m, nil
	case fetchedMsg:
		if m.exp.Apply(msg.res) {
			m.loading = false
			m.syncTable()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	empty := strings.TrimSpace(m.input.Value()) == ""
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+r":
		m.exp.Reset()
		m.input.Reset()
		m.setStatus("", false)
		m.syncTable()
		return m, m.fetch()
	case "tab":
		m.exp.SetColor(m.exp.Color().Opposite())
		m.syncTable()
		return m, nil
	case "[", "]":
		delta := 1
		if msg.String() == "[" {
			delta = -1
		}
		next := model.StepLevel(m.levels, m.exp.Rating(), delta)
		if next == m.exp.Rating() {
			return m, nil
		}
		m.exp.SetRating(next)
		m.syncTable()
		return m, m.fetch()
	case "up", "down", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case "enter":
		move := strings.TrimSpace(m.input.Value())
		if move == "" {
			if row := m.table.SelectedRow(); len(row) > 0 {
				move = row[0]
			}
		}
		if move == "" {
			return m, nil
		}
		return m.play(move)
	case "backspace":
		if empty {
			if err := m.exp.Back(); err != nil {
				m.setStatus(m.msgs.Text("explorer.start", nil), false)
				return m, nil
			}
			m.setStatus("", false)
			m.syncTable()
			return m, m.fetch()
		}
	}
	if empty && len(msg.Runes) == 1 {
		if idx, err := strconv.Atoi(string(msg.Runes)); err == nil && idx >= 1 && idx <= len(explorer.Columns) {
			col := explorer.Columns[idx-1]
			m.exp.SortBy(col)
			m.setStatus(m.msgs.Text("explorer.sorted", map[string]any{"Column": string(col)}), false)
			m.syncTable()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) play(move string) (tea.Model, tea.Cmd) {
	san, err := m.exp.Play(move)
	if err != nil {
		if errors.Is(err, explorer.ErrIllegalMove) {
			m.setStatus(m.msgs.Text("explorer.illegal", map[string]any{"Move": move}), true)
			return m, nil
		}
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.input.Reset()
	m.setStatus(m.msgs.Text("explorer.played", map[string]any{"Move": san}), false)
	m.syncTable()
	return m, m.fetch()
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m *Model) syncTable() {
	m.table.SetColumns(columnsFor(m.exp.SortColumn()))
	rows := m.exp.Rows()
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			r.SAN,
			strconv.FormatInt(r.Played, 10),
			fmt.Sprintf("%.1f%%", r.Percent*100),
			fmt.Sprintf("%.1f%%", r.WinRate*100),
			fmt.Sprintf("%.3f", r.Recursive),
		})
	}
	m.table.SetRows(out)
	if m.table.Cursor() >= len(out) {
		m.table.SetCursor(0)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	title := titleStyle.Render(m.msgs.Text("explorer.title", map[string]any{
		"Rating": m.exp.Rating(),
		"Color":  m.exp.Color().Title(),
	}))
	boardView := board.Render(m.exp.Game().Position(), board.Options{
		Orientation: m.exp.Color(),
		Styled:      true,
		Last:        board.LastMove(m.exp.Game()),
	})
	left := lipgloss.JoinVertical(lipgloss.Left, panelStyle.Render(boardView), m.renderTape(26))
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderTotals(), m.renderTable())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	lines := []string{title, body, m.input.View(), m.renderStatus(), footerStyle.Render(m.msgs.Text("explorer.help", nil))}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTape(width int) string {
	history := m.exp.History()
	if len(history) == 0 {
		return ""
	}
	return board.Tape(history, width, true)
}

func (m *Model) renderTotals() string {
	t := m.exp.Totals()
	return statusStyle.Render(m.msgs.Text("explorer.totals", map[string]any{"Position": t.Position, "Moves": t.Moves}))
}

func (m *Model) renderTable() string {
	switch {
	case m.loading && len(m.exp.Moves()) == 0:
		return statusStyle.Render(m.msgs.Text("explorer.loading", nil))
	case len(m.exp.Moves()) == 0:
		return statusStyle.Render(m.msgs.Text("explorer.empty", nil))
	default:
		return m.table.View()
	}
}

func (m *Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	if m.failed {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
