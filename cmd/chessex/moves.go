package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/chessex/internal/explorer"
	"github.com/verte-zerg/chessex/internal/model"
	"github.com/verte-zerg/chessex/internal/report"
)

var (
	movesRating string
	movesColor  string
	movesSort   string
)

func newMovesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moves [SAN...]",
		Short: "Print the statistics table after the given moves",
		RunE:  runMovesCmd,
	}
	cmd.Flags().StringVar(&movesRating, "rating", defaultRating, "rating bucket")
	cmd.Flags().StringVar(&movesColor, "color", defaultColor, "perspective for win rates (white, black)")
	cmd.Flags().StringVar(&movesSort, "sort", string(explorer.ColumnPlayed), "sort column (move, played, percent, winrate, recursive)")
	return cmd
}

func runMovesCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "rating", &movesRating, fileCfg.Explorer.Rating)
	applyStringConfig(cmd, "color", &movesColor, fileCfg.Explorer.Color)

	color, err := model.ParseColor(movesColor)
	if err != nil {
		return fmt.Errorf("--color must be white or black")
	}
	if err := validateRating("rating", movesRating); err != nil {
		return err
	}
	column, err := explorer.ParseColumn(movesSort)
	if err != nil {
		return fmt.Errorf("--sort must be one of move, played, percent, winrate, recursive")
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
	client := newClient(logger)
	exp := explorer.New(model.ExplorerConfig{Rating: movesRating, Color: color}, logger)
	exp.SortBy(column)
	// Each position is fetched so child position ids carry over.
	exp.Refresh(ctx, client)
	for _, mv := range args {
		if _, err := exp.Play(mv); err != nil {
			return fmt.Errorf("failed to play %q: %w", mv, err)
		}
		exp.Refresh(ctx, client)
	}
	return writeMoves(os.Stdout, exp)
}

func writeMoves(w io.Writer, exp *explorer.Explorer) error {
	totals := exp.Totals()
	if _, err := fmt.Fprintf(w, "%s\nposition %d · moves %d\n\n", exp.FEN(), totals.Position, totals.Moves); err != nil {
		return err
	}
	rows := exp.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no statistics for this position")
		return err
	}
	t := report.Table{
		Headers: []string{"Move", "Played", "%", "Win %", "Recursive"},
		Right:   map[int]bool{1: true, 2: true, 3: true, 4: true},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SAN,
			strconv.FormatInt(r.Played, 10),
			fmt.Sprintf("%.1f", r.Percent*100),
			fmt.Sprintf("%.1f", r.WinRate*100),
			fmt.Sprintf("%.3f", r.Recursive),
		})
	}
	return t.Write(w)
}
