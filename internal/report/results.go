package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReadRows parses arena CSV output. Empty and unparsable cells are skipped
// and rows left without values are dropped.
func ReadRows(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var rows [][]float64
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read results: %w", err)
		}
		values := make([]float64, 0, len(rec))
		for _, cell := range rec {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
		if len(values) > 0 {
			rows = append(rows, values)
		}
	}
	return rows, nil
}

// ReadFile parses the results file at path.
func ReadFile(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only results.
			_ = cerr
		}
	}()
	return ReadRows(f)
}

// Average returns the mean of each column over the rows long enough to have it.
func Average(rows [][]float64) []float64 {
	var sums []float64
	var counts []int
	for _, row := range rows {
		for i, v := range row {
			if i == len(sums) {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[i] += v
			counts[i]++
		}
	}
	for i := range sums {
		sums[i] /= float64(counts[i])
	}
	return sums
}

// Survival returns, per column, the share of games still running.
func Survival(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	longest := 0
	for _, row := range rows {
		longest = max(longest, len(row))
	}
	out := make([]float64, longest)
	for _, row := range rows {
		for i := range row {
			out[i]++
		}
	}
	for i := range out {
		out[i] /= float64(len(rows))
	}
	return out
}

// Quartiles returns, per column, the mean of the lowest and of the highest
// quarter of the values in that column. A quarter holds at least one value.
func Quartiles(rows [][]float64) (worst, best []float64) {
	longest := 0
	for _, row := range rows {
		longest = max(longest, len(row))
	}
	worst = make([]float64, longest)
	best = make([]float64, longest)
	col := make([]float64, 0, len(rows))
	for i := 0; i < longest; i++ {
		col = col[:0]
		for _, row := range rows {
			if i < len(row) {
				col = append(col, row[i])
			}
		}
		sort.Float64s(col)
		q := max(1, len(col)/4)
		worst[i] = mean(col[:q])
		best[i] = mean(col[len(col)-q:])
	}
	return worst, best
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MeanLength is the average number of values per game.
func MeanLength(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	total := 0
	for _, row := range rows {
		total += len(row)
	}
	return float64(total) / float64(len(rows))
}

// GridFileName names the results file for one grid pairing.
func GridFileName(recursiveRating, avgRating int) string {
	return fmt.Sprintf("recursive_%d_avg_%d.csv", recursiveRating, avgRating)
}

var gridFileRE = regexp.MustCompile(`^recursive_(\d+)_avg_(\d+)\.csv$`)

// Grid is the aggregated score of every recursive-vs-average pairing.
type Grid struct {
	Recursive []int
	Avg       []int
	// Cells[i][j] is NaN when the pairing has no data.
	Cells [][]float64
}

// GridOptions selects the statistic taken from every game. With MaxPrefix
// above zero the per-game maximum over the first MaxPrefix values is used,
// otherwise the value at the 1-based MoveTarget.
type GridOptions struct {
	MoveTarget int
	MaxPrefix  int
}

// LoadGrid aggregates the grid files found in dir.
func LoadGrid(dir string, opts GridOptions) (Grid, error) {
	if opts.MaxPrefix <= 0 && opts.MoveTarget < 1 {
		return Grid{}, errors.New("move target must be >= 1")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Grid{}, err
	}
	recSet, avgSet := map[int]bool{}, map[int]bool{}
	for _, e := range entries {
		m := gridFileRE.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		r, _ := strconv.Atoi(m[1])
		a, _ := strconv.Atoi(m[2])
		recSet[r], avgSet[a] = true, true
	}
	if len(recSet) == 0 {
		return Grid{}, fmt.Errorf("no grid files in %s", dir)
	}
	g := Grid{Recursive: sortedKeys(recSet), Avg: sortedKeys(avgSet)}
	for _, r := range g.Recursive {
		row := make([]float64, len(g.Avg))
		for j, a := range g.Avg {
			row[j] = math.NaN()
			rows, err := ReadFile(filepath.Join(dir, GridFileName(r, a)))
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return Grid{}, err
			}
			row[j] = aggregate(rows, opts)
		}
		g.Cells = append(g.Cells, row)
	}
	return g, nil
}

func aggregate(rows [][]float64, opts GridOptions) float64 {
	var sum float64
	n := 0
	for _, row := range rows {
		if opts.MaxPrefix > 0 {
			prefix := row[:min(opts.MaxPrefix, len(row))]
			if len(prefix) == 0 {
				continue
			}
			best := prefix[0]
			for _, v := range prefix[1:] {
				best = math.Max(best, v)
			}
			sum += best
			n++
			continue
		}
		if idx := opts.MoveTarget - 1; idx < len(row) {
			sum += row[idx]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Table renders the grid with recursive ratings as rows.
func (g Grid) Table() Table {
	t := Table{Headers: []string{"rec \\ avg"}, Right: map[int]bool{}}
	for i, a := range g.Avg {
		t.Headers = append(t.Headers, strconv.Itoa(a))
		t.Right[i+1] = true
	}
	for i, r := range g.Recursive {
		row := []string{strconv.Itoa(r)}
		for _, v := range g.Cells[i] {
			if math.IsNaN(v) {
				row = append(row, "-")
				continue
			}
			row = append(row, fmt.Sprintf("%.2f", v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
