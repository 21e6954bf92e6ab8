package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/chessex/internal/report"
)

const defaultMoveTarget = 10

var (
	plotHeight    int
	plotWidth     int
	plotQuartiles bool

	gridMoveTarget int
	gridMaxPrefix  int
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot FILE...",
		Short: "Plot average scores and survival of eval result files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlotCmd,
	}
	cmd.Flags().IntVar(&plotHeight, "height", 0, "plot height in rows (0 = default)")
	cmd.Flags().IntVar(&plotWidth, "width", 0, "plot width in columns (0 = fit terminal)")
	cmd.Flags().BoolVar(&plotQuartiles, "quartiles", false, "also plot the best and worst quartile averages per move")
	return cmd
}

func runPlotCmd(cmd *cobra.Command, args []string) error {
	if plotHeight < 0 {
		return fmt.Errorf("--height must be >= 0")
	}
	if plotWidth < 0 {
		return fmt.Errorf("--width must be >= 0")
	}
	results := make([]namedRows, 0, len(args))
	for _, path := range args {
		rows, err := report.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		results = append(results, namedRows{name: seriesName(path), rows: rows})
	}
	return writePlots(cmd.OutOrStdout(), results, plotWidth, plotHeight, plotQuartiles)
}

type namedRows struct {
	name string
	rows [][]float64
}

func writePlots(w io.Writer, results []namedRows, width, height int, quartiles bool) error {
	avg := make([]report.Series, 0, len(results))
	survival := make([]report.Series, 0, len(results))
	summary := report.Table{
		Headers: []string{"Series", "Games", "Mean length"},
		Right:   map[int]bool{1: true, 2: true},
	}
	for _, r := range results {
		avg = append(avg, report.Series{Name: r.name, Values: report.Average(r.rows)})
		survival = append(survival, report.Series{Name: r.name, Values: report.Survival(r.rows)})
		summary.Rows = append(summary.Rows, []string{
			r.name,
			strconv.Itoa(len(r.rows)),
			fmt.Sprintf("%.1f", report.MeanLength(r.rows)),
		})
	}
	if err := report.Plot(w, "Average score per move", avg, width, height); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := report.Plot(w, "Games still running", survival, width, height); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if quartiles {
		series := make([]report.Series, 0, 2*len(results))
		for _, r := range results {
			worst, best := report.Quartiles(r.rows)
			series = append(series,
				report.Series{Name: r.name + " best", Values: best},
				report.Series{Name: r.name + " worst", Values: worst},
			)
		}
		if err := report.Plot(w, "Best and worst quartile averages", series, width, height); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return summary.Write(w)
}

func seriesName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func newGridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid DIR",
		Short: "Summarize a recursive vs avg grid directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runGridCmd,
	}
	cmd.Flags().IntVar(&gridMoveTarget, "move-target", defaultMoveTarget, "1-based move whose value is averaged")
	cmd.Flags().IntVar(&gridMaxPrefix, "max-prefix", 0, "average the per-game maximum over the first N moves instead")
	return cmd
}

func runGridCmd(cmd *cobra.Command, args []string) error {
	if gridMaxPrefix < 0 {
		return fmt.Errorf("--max-prefix must be >= 0")
	}
	if gridMaxPrefix == 0 && gridMoveTarget < 1 {
		return fmt.Errorf("--move-target must be >= 1")
	}
	g, err := report.LoadGrid(args[0], report.GridOptions{MoveTarget: gridMoveTarget, MaxPrefix: gridMaxPrefix})
	if err != nil {
		return fmt.Errorf("failed to load grid: %w", err)
	}
	return g.Table().Write(cmd.OutOrStdout())
}
