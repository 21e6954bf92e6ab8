package arena

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/board"
	"github.com/verte-zerg/chessex/internal/generator"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/report"
)

// GridLevels are the ratings paired in a grid run.
var GridLevels = []int{0, 1, 2, 3, 4}

// Match configures the two sides of a run.
type Match struct {
	Evaluated       Engine
	Baseline        Engine
	EvaluatedRating string
	BaselineRating  string
	// Eval is EvalAvg or EvalFrequency.
	Eval     string
	MaxMoves int
	// Generate replaces every opening with one played by the generator.
	Generate      *generator.Generator
	GeneratePlies int
}

// Game is the outcome of one arena game.
type Game struct {
	ID        string
	StartFEN  string
	Evaluated model.Color
	Moves     []string
	Values    []float64
	Reason    string
}

// Arena runs matches against a statistics source.
type Arena struct {
	src      Source
	logger   *zap.Logger
	progress io.Writer
}

// New returns an arena. Progress lines go to progress when it is not nil.
func New(src Source, logger *zap.Logger, progress io.Writer) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Arena{src: src, logger: logger, progress: progress}
}

// Play runs one game from fen with the evaluated engine on the given side.
func (a *Arena) Play(ctx context.Context, m Match, fen string, evaluated model.Color) (Game, error) {
	g := Game{ID: uuid.NewString(), StartFEN: fen, Evaluated: evaluated}
	game, err := board.NewGame(fen)
	if err != nil {
		return g, err
	}
	own := map[model.Color]int{}
	for {
		if err := ctx.Err(); err != nil {
			return g, err
		}
		if res := board.Outcome(game); res.Over {
			g.Reason = res.Reason
			break
		}
		if m.MaxMoves > 0 && len(g.Moves) >= m.MaxMoves {
			g.Reason = "move limit reached"
			break
		}
		cur := game.FEN()
		toMove := board.Turn(game)

		if m.Eval != EvalFrequency {
			v, ok, err := PositionScore(ctx, a.src, cur, m.EvaluatedRating)
			if err != nil {
				a.logger.Debug("position score unavailable", zap.String("fen", cur), zap.Error(err))
			}
			if ok {
				if evaluated == model.Black {
					v = -v
				}
				g.Values = append(g.Values, v)
			}
		}

		engine, rating := m.Baseline, m.BaselineRating
		if toMove == evaluated {
			engine, rating = m.Evaluated, m.EvaluatedRating
		}
		move, err := engine.Move(ctx, a.src, Turn{FEN: cur, Rating: rating, ToMove: toMove, OwnMoves: own[toMove]})
		if err != nil {
			if ctx.Err() != nil {
				return g, ctx.Err()
			}
			g.Reason = fmt.Sprintf("%s stopped: %v", engine.Name(), err)
			break
		}
		san, err := board.Push(game, move)
		if err != nil {
			g.Reason = fmt.Sprintf("%s played %q: %v", engine.Name(), move, err)
			break
		}

		if m.Eval == EvalFrequency && toMove == evaluated {
			v, ok, err := MoveFrequency(ctx, a.src, cur, m.EvaluatedRating, san)
			if err != nil {
				a.logger.Debug("move frequency unavailable", zap.String("fen", cur), zap.Error(err))
			}
			if ok {
				g.Values = append(g.Values, v)
			}
		}
		own[toMove]++
		g.Moves = append(g.Moves, san)
	}
	a.logger.Debug("arena game finished",
		zap.String("game_id", g.ID),
		zap.String("evaluated", m.Evaluated.Name()),
		zap.String("baseline", m.Baseline.Name()),
		zap.Int("plies", len(g.Moves)),
		zap.String("reason", g.Reason),
	)
	return g, nil
}

// Run plays one game per opening, alternating the evaluated side starting
// with white.
func (a *Arena) Run(ctx context.Context, m Match, openings []string, prefix string) ([]Game, error) {
	if prefix != "" {
		prefix += " "
	}
	games := make([]Game, 0, len(openings))
	for i, fen := range openings {
		side := model.White
		if i%2 == 1 {
			side = model.Black
		}
		if _, err := fmt.Fprintf(a.progress, "%sGame %d/%d: Evaluated plays as %s\n", prefix, i+1, len(openings), side.Title()); err != nil {
			return nil, err
		}
		if m.Generate != nil {
			gen, _, err := m.Generate.Opening(ctx, a.src, m.BaselineRating, m.GeneratePlies)
			if err != nil {
				return nil, err
			}
			fen = gen
		}
		g, err := a.Play(ctx, m, fen, side)
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		games = append(games, g)
	}
	return games, nil
}

// RunGrid plays recursive_best against avg_player for every pair of grid
// levels and writes one results file per pairing into dir.
func (a *Arena) RunGrid(ctx context.Context, base Match, openings []string, dir string, engines func(name string) (Engine, error)) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create grid dir: %w", err)
	}
	rec, err := engines(RecursiveBest)
	if err != nil {
		return err
	}
	avg, err := engines(AvgPlayer)
	if err != nil {
		return err
	}
	for _, r := range GridLevels {
		for _, av := range GridLevels {
			m := base
			m.Evaluated, m.Baseline = rec, avg
			m.EvaluatedRating, m.BaselineRating = strconv.Itoa(r), strconv.Itoa(av)
			games, err := a.Run(ctx, m, openings, fmt.Sprintf("[rec %d vs avg %d]", r, av))
			if err != nil {
				return err
			}
			if err := WriteCSVFile(filepath.Join(dir, report.GridFileName(r, av)), games); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteCSV writes one row of values per game.
func WriteCSV(w io.Writer, games []Game) error {
	cw := csv.NewWriter(w)
	for _, g := range games {
		row := make([]string, len(g.Values))
		for i, v := range g.Values {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes games to path, replacing any existing file.
func WriteCSVFile(path string, games []Game) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, games)
}

// Averages returns the per-move average over all games.
func Averages(games []Game) []float64 {
	rows := make([][]float64, 0, len(games))
	for _, g := range games {
		if len(g.Values) > 0 {
			rows = append(rows, g.Values)
		}
	}
	return report.Average(rows)
}
