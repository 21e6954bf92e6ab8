// Package blitzui provides the Bubble Tea blitz game interface.
package blitzui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/blitz"
	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/msgcat"
)

const (
	defaultTimeout = 10 * time.Second
	minMinutes     = 1
	maxMinutes     = 60
	tapeWidth      = 34
)

var (
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	clockStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	activeClockStyle = clockStyle.BorderForeground(lipgloss.Color("#C89A3A")).Bold(true)
	lowClockStyle    = activeClockStyle.Foreground(lipgloss.Color("#FF4D4F"))
)

// tickMsg advances the clock of the session started at epoch.
type tickMsg struct {
	epoch uint64
}

// opponentMsg carries the fetched candidate list for the opponent.
type opponentMsg struct {
	gen   uint64
	moves []model.MoveStat
	err   error
}

// Options configures the blitz UI.
type Options struct {
	Source   blitz.MoveSource
	Messages *msgcat.Catalog
	Logger   *zap.Logger
	Timeout  time.Duration
	Levels   []string
}

// Model implements the Bubble Tea blitz UI.
type Model struct {
	ctl     *blitz.Controller
	src     blitz.MoveSource
	msgs    *msgcat.Catalog
	logger  *zap.Logger
	timeout time.Duration
	levels  []string

	color   model.Color
	skill   string
	minutes int

	input  textinput.Model
	status string
	failed bool

	width  int
	height int
}

// NewModel constructs a blitz UI in the idle state.
func NewModel(cfg model.BlitzConfig, opts Options) *Model {
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
	if cfg.Color == "" {
		cfg.Color = model.White
	}
	if cfg.TimeControl <= 0 {
		cfg.TimeControl = blitz.DefaultTimeControl
	}
	input := textinput.New()
	input.Prompt = "Move: "
	input.Placeholder = "e4, Nf3 or g1f3"
	input.CharLimit = 8
	input.Cursor.SetMode(cursor.CursorBlink)
	input.Focus()
	return &Model{
		ctl:     blitz.New(opts.Logger),
		src:     opts.Source,
		msgs:    opts.Messages,
		logger:  opts.Logger,
		timeout: opts.Timeout,
		levels:  opts.Levels,
		color:   cfg.Color,
		skill:   cfg.Skill,
		minutes: min(max(int(cfg.TimeControl/time.Minute), minMinutes), maxMinutes),
		input:   input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) tick() tea.Cmd {
	epoch := m.ctl.Epoch()
	return tea.Tick(blitz.TickInterval, func(time.Time) tea.Msg {
		return tickMsg{epoch: epoch}
	})
}

// opponent fetches candidates for the pending opponent move, if any.
func (m *Model) opponent() tea.Cmd {
	req, ok := m.ctl.OpponentRequest()
	if !ok || m.src == nil {
		return nil
	}
	src, timeout := m.src, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		moves, err := src.MovesByFEN(ctx, req.FEN, req.Skill)
		return opponentMsg{gen: req.Generation, moves: moves, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.epoch != m.ctl.Epoch() || m.ctl.State() != blitz.Running {
			return m, nil
		}
		m.ctl.Tick(msg.epoch, blitz.TickInterval)
		if m.ctl.State() != blitz.Running {
			m.setStatus(m.msgs.Text("blitz.ended", map[string]any{"Reason": m.ctl.Reason()}), false)
			return m, nil
		}
		return m, m.tick()
	case opponentMsg:
		if m.ctl.ApplyOpponentMoves(msg.gen, msg.moves, msg.err) {
			m.afterMove()
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
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	}
	if m.ctl.State() != blitz.Running {
		return m.handleSetupKey(msg)
	}
	switch msg.String() {
	case "ctrl+x":
		if err := m.ctl.Resign(); err == nil {
			m.setStatus(m.msgs.Text("blitz.ended", map[string]any{"Reason": m.ctl.Reason()}), false)
		}
		return m, nil
	case "enter":
		move := strings.TrimSpace(m.input.Value())
		if move == "" {
			return m, nil
		}
		return m.play(move)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.start()
	case "tab":
		m.color = m.color.Opposite()
	case "[":
		m.skill = model.StepLevel(m.levels, m.skill, -1)
	case "]":
		m.skill = model.StepLevel(m.levels, m.skill, 1)
	case "-":
		m.minutes = max(m.minutes-1, minMinutes)
	case "+", "=":
		m.minutes = min(m.minutes+1, maxMinutes)
	}
	return m, nil
}

func (m *Model) start() (tea.Model, tea.Cmd) {
	m.ctl.Start(m.color, m.skill, time.Duration(m.minutes)*time.Minute)
	m.input.Reset()
	m.afterMove()
	return m, tea.Batch(m.tick(), m.opponent())
}

func (m *Model) play(move string) (tea.Model, tea.Cmd) {
	_, err := m.ctl.PlayerMove(move)
	switch {
	case errors.Is(err, blitz.ErrNotYourTurn):
		m.setStatus(m.msgs.Text("blitz.not_your_turn", nil), true)
		return m, nil
	case errors.Is(err, blitz.ErrIllegalMove):
		m.setStatus(m.msgs.Text("blitz.illegal", map[string]any{"Move": move}), true)
		return m, nil
	case err != nil:
		m.setStatus(err.Error(), true)
		return m, nil
	}
	m.input.Reset()
	m.afterMove()
	return m, m.opponent()
}

// afterMove refreshes the status line from the controller state.
func (m *Model) afterMove() {
	switch {
	case m.ctl.State() == blitz.Ended:
		m.setStatus(m.msgs.Text("blitz.ended", map[string]any{"Reason": m.ctl.Reason()}), false)
	case m.ctl.NeedsOpponentMove():
		m.setStatus(m.msgs.Text("blitz.thinking", nil), false)
	default:
		m.setStatus(m.msgs.Text("blitz.your_move", nil), false)
	}
}

func (m *Model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

// View implements tea.Model.
func (m *Model) View() string {
	setup := m.msgs.Text("blitz.setup", map[string]any{
		"Color":   m.color.Title(),
		"Skill":   m.skill,
		"Minutes": m.minutes,
	})
	lines := []string{titleStyle.Render("Blitz") + "  " + statusStyle.Render(setup)}

	game := m.ctl.Game()
	orientation := m.color
	if m.ctl.State() != blitz.Idle {
		orientation = m.ctl.Player()
	}
	boardView := board.Render(game.Position(), board.Options{
		Orientation: orientation,
		Styled:      true,
		Last:        board.LastMove(game),
	})
	side := lipgloss.JoinVertical(lipgloss.Left,
		m.renderClock(orientation.Opposite()),
		board.Tape(m.ctl.History(), tapeWidth, true),
		m.renderClock(orientation),
	)
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, boardView, "  ", side))

	if m.ctl.State() == blitz.Running {
		lines = append(lines, m.input.View())
	} else if m.ctl.State() == blitz.Idle {
		lines = append(lines, statusStyle.Render(m.msgs.Text("blitz.idle", nil)))
	}
	lines = append(lines, m.renderStatus(), footerStyle.Render(m.msgs.Text("blitz.help", nil)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderClock(side model.Color) string {
	remaining := m.ctl.Clock().Remaining(side)
	if m.ctl.State() == blitz.Idle {
		remaining = int64(m.minutes) * time.Minute.Milliseconds()
	}
	label := fmt.Sprintf("%s %s", side.Title(), FormatClock(remaining))
	style := clockStyle
	if m.ctl.State() == blitz.Running && m.ctl.Turn() == side {
		style = activeClockStyle
		if remaining < 10*time.Second.Milliseconds() {
			style = lowClockStyle
		}
	}
	return style.Render(label)
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

// FormatClock renders milliseconds as m:ss, with tenths under ten seconds.
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	if ms < 10_000 {
		return fmt.Sprintf("0:%02d.%d", ms/1000, ms%1000/100)
	}
	secs := (ms + 999) / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
