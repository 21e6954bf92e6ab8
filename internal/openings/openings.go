// Package openings loads starting positions for arena games.
package openings

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/chessex/internal/board"
)

// Load reads one FEN per line from path. Blank lines and lines starting with
// '#' are skipped; any other line must be a valid position.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only openings file.
			_ = cerr
		}
	}()

	var fens []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !Valid(line) {
			return nil, fmt.Errorf("%s:%d: invalid fen %q", path, lineNo, line)
		}
		fens = append(fens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(fens) == 0 {
		return nil, fmt.Errorf("openings file is empty")
	}
	return fens, nil
}

// StartPositions returns n copies of the standard starting position.
func StartPositions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = board.StartFEN
	}
	return out
}

// Limit truncates fens to at most n entries.
func Limit(fens []string, n int) []string {
	if n >= 0 && len(fens) > n {
		return fens[:n]
	}
	return fens
}
