package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/chessex/internal/arena"
	"github.com/verte-zerg/chessex/internal/config"
	"github.com/verte-zerg/chessex/internal/generator"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/openings"
	"github.com/verte-zerg/chessex/internal/report"
)

const (
	defaultGames  = 10
	defaultOutput = "results.csv"
)

var (
	evalEvaluated        string
	evalBaseline         string
	evalMode             string
	evalGames            int
	evalOutput           string
	evalEvaluatedRating  string
	evalBaselineRating   string
	evalOpenings         string
	evalAllStartPos      bool
	evalGenerateOpenings bool
	evalRecordFrequency  bool
	evalGridDir          string
	evalMaxMoves         int
	evalPlot             bool
	evalSeed             int64
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Play engines against each other and record per-move scores",
		Args:  cobra.NoArgs,
		RunE:  runEvalCmd,
	}
	names := strings.Join(arena.EngineNames(), ", ")
	cmd.Flags().StringVar(&evalEvaluated, "evaluated", "", "engine being evaluated ("+names+")")
	cmd.Flags().StringVar(&evalBaseline, "baseline", arena.AvgPlayer, "baseline engine")
	cmd.Flags().StringVar(&evalMode, "eval", arena.EvalAvg, "score recorded per move (avg, frequency)")
	cmd.Flags().IntVar(&evalGames, "games", defaultGames, "number of games to play")
	cmd.Flags().StringVar(&evalOutput, "output", defaultOutput, "output CSV file")
	cmd.Flags().StringVar(&evalEvaluatedRating, "evaluated-rating", defaultRating, "rating bucket for the evaluated engine")
	cmd.Flags().StringVar(&evalBaselineRating, "baseline-rating", defaultRating, "rating bucket for the baseline engine")
	cmd.Flags().StringVar(&evalOpenings, "openings", config.DefaultOpeningsPath(), "file with one FEN per line")
	cmd.Flags().BoolVar(&evalAllStartPos, "all-startpos", false, "start every game from the initial position (ignores --openings)")
	cmd.Flags().BoolVar(&evalGenerateOpenings, "generate-openings", false, "let avg_player play the first plies of every game (overrides --openings and --all-startpos)")
	cmd.Flags().BoolVar(&evalRecordFrequency, "record-move-frequency", false, "record the evaluated engine's move frequency instead of position scores")
	cmd.Flags().StringVar(&evalGridDir, "grid-dir", "", "run recursive_best vs avg_player over all rating pairs into this directory")
	cmd.Flags().IntVar(&evalMaxMoves, "max-moves", 0, "maximum plies per game (0 = unlimited)")
	cmd.Flags().BoolVar(&evalPlot, "plot", false, "plot the average score per move")
	cmd.Flags().Int64Var(&evalSeed, "seed", 0, "random seed (0 = time based)")
	return cmd
}

func runEvalCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}
	cfg := model.EvalConfig{
		Evaluated:        strings.TrimSpace(evalEvaluated),
		Baseline:         strings.TrimSpace(evalBaseline),
		Eval:             strings.TrimSpace(evalMode),
		Games:            evalGames,
		Output:           strings.TrimSpace(evalOutput),
		EvaluatedRating:  evalEvaluatedRating,
		BaselineRating:   evalBaselineRating,
		OpeningsPath:     evalOpenings,
		AllStartPos:      evalAllStartPos,
		GenerateOpenings: evalGenerateOpenings,
		RecordFrequency:  evalRecordFrequency,
		GridDir:          strings.TrimSpace(evalGridDir),
		MaxMoves:         evalMaxMoves,
		Plot:             evalPlot,
	}
	if cfg.RecordFrequency {
		cfg.Eval = arena.EvalFrequency
	}
	if err := validateEvalConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	gen := generator.New()
	if evalSeed != 0 {
		gen = generator.NewWithSeed(evalSeed)
	}
	fens, err := resolveOpenings(out, cfg)
	if err != nil {
		return err
	}

	newEngine := func(name string) (arena.Engine, error) {
		return arena.NewEngine(name, gen.Rand())
	}
	evaluated, err := newEngine(cfg.Evaluated)
	if err != nil {
		return err
	}
	baseline, err := newEngine(cfg.Baseline)
	if err != nil {
		return err
	}
	m := arena.Match{
		Evaluated:       evaluated,
		Baseline:        baseline,
		EvaluatedRating: cfg.EvaluatedRating,
		BaselineRating:  cfg.BaselineRating,
		Eval:            cfg.Eval,
		MaxMoves:        cfg.MaxMoves,
	}
	if cfg.GenerateOpenings {
		m.Generate = gen
		m.GeneratePlies = generator.DefaultPlies
	}

	ar := arena.New(newClient(logger), logger, out)
	if cfg.GridDir != "" {
		if _, err := fmt.Fprintf(out, "Running recursive vs avg grid (%d pairings) with %d games each...\n", len(arena.GridLevels)*len(arena.GridLevels), len(fens)); err != nil {
			return err
		}
		if err := ar.RunGrid(ctx, m, fens, cfg.GridDir, newEngine); err != nil {
			return err
		}
		logger.Info("grid written", zap.String("dir", cfg.GridDir))
		_, err := fmt.Fprintln(out, "Done.")
		return err
	}

	if _, err := fmt.Fprintf(out, "Playing %d games...\n", len(fens)); err != nil {
		return err
	}
	games, err := ar.Run(ctx, m, fens, "")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Saving results to %s...\n", cfg.Output); err != nil {
		return err
	}
	if err := arena.WriteCSVFile(cfg.Output, games); err != nil {
		return err
	}
	logger.Info("results written", zap.String("path", cfg.Output), zap.Int("games", len(games)))
	if cfg.Plot {
		title := fmt.Sprintf("%s vs %s (%s)", cfg.Evaluated, cfg.Baseline, cfg.Eval)
		series := []report.Series{{Name: cfg.Evaluated, Values: arena.Averages(games)}}
		if err := report.Plot(out, title, series, 0, 0); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(out, "Done.")
	return err
}

// resolveOpenings picks the starting positions: generated openings and
// --all-startpos both start from the initial position, otherwise the
// openings file is read and truncated to the game count.
func resolveOpenings(w io.Writer, cfg model.EvalConfig) ([]string, error) {
	switch {
	case cfg.GenerateOpenings:
		if _, err := fmt.Fprintf(w, "Generating openings: %d plies with avg_player on both sides for all %d games.\n", generator.DefaultPlies, cfg.Games); err != nil {
			return nil, err
		}
		return openings.StartPositions(cfg.Games), nil
	case cfg.AllStartPos:
		if _, err := fmt.Fprintf(w, "Using standard starting position for all %d games.\n", cfg.Games); err != nil {
			return nil, err
		}
		return openings.StartPositions(cfg.Games), nil
	}
	fens, err := openings.Load(cfg.OpeningsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("openings file not found: %s", cfg.OpeningsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load openings: %w", err)
	}
	fens = openings.Filter(fens, openings.Playable)
	fens = openings.Limit(fens, cfg.Games)
	if len(fens) == 0 {
		return nil, fmt.Errorf("no openings available")
	}
	return fens, nil
}

func validateEvalConfig(cfg model.EvalConfig) error {
	names := arena.EngineNames()
	if cfg.Evaluated == "" {
		return fmt.Errorf("--evaluated is required")
	}
	if !slices.Contains(names, cfg.Evaluated) {
		return fmt.Errorf("--evaluated must be one of %s", strings.Join(names, ", "))
	}
	if !slices.Contains(names, cfg.Baseline) {
		return fmt.Errorf("--baseline must be one of %s", strings.Join(names, ", "))
	}
	if cfg.Eval != arena.EvalAvg && cfg.Eval != arena.EvalFrequency {
		return fmt.Errorf("--eval must be avg or frequency")
	}
	if cfg.Games <= 0 {
		return fmt.Errorf("--games must be > 0")
	}
	if cfg.GridDir == "" && cfg.Output == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if err := validateRating("evaluated-rating", cfg.EvaluatedRating); err != nil {
		return err
	}
	if err := validateRating("baseline-rating", cfg.BaselineRating); err != nil {
		return err
	}
	if cfg.MaxMoves < 0 {
		return fmt.Errorf("--max-moves must be >= 0")
	}
	return nil
}
