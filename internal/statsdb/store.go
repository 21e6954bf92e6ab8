// Package statsdb reads aggregated move statistics from SQLite.
package statsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/chessex/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for statistics data.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing statistics database read-only.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open statistics db: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics db: %w", err)
	}
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on ping failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to open statistics db: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Create opens or creates a writable database and applies the schema.
func Create(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chessPosition (
			positionID BLOB PRIMARY KEY,
			timesPlayed INTEGER NOT NULL,
			whiteWins INTEGER NOT NULL,
			blackWins INTEGER NOT NULL,
			recursiveScoreWhite REAL NOT NULL,
			recursiveScoreBlack REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chessMove (
			startPosition BLOB NOT NULL,
			endPosition BLOB NOT NULL,
			timesPlayed INTEGER NOT NULL,
			moveSAN TEXT NOT NULL,
			PRIMARY KEY (startPosition, endPosition)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chessMove_start ON chessMove(startPosition);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// PutPosition inserts or replaces a position record.
func (s *Store) PutPosition(ctx context.Context, key Key, p model.Position) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chessPosition (positionID, timesPlayed, whiteWins, blackWins, recursiveScoreWhite, recursiveScoreBlack)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key[:], p.TimesPlayed, p.WhiteWins, p.BlackWins, p.RecursiveScoreWhite, p.RecursiveScoreBlack,
	)
	return err
}

// PutMove inserts or replaces a move edge.
func (s *Store) PutMove(ctx context.Context, start, end Key, san string, timesPlayed int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chessMove (startPosition, endPosition, timesPlayed, moveSAN) VALUES (?, ?, ?, ?)`,
		start[:], end[:], timesPlayed, san,
	)
	return err
}

// Position returns the record for key. Found is false when absent.
func (s *Store) Position(ctx context.Context, key Key) (model.Position, bool, error) {
	var (
		raw []byte
		p   model.Position
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT positionID, timesPlayed, whiteWins, blackWins, recursiveScoreWhite, recursiveScoreBlack
		 FROM chessPosition WHERE positionID = ?`, key[:],
	).Scan(&raw, &p.TimesPlayed, &p.WhiteWins, &p.BlackWins, &p.RecursiveScoreWhite, &p.RecursiveScoreBlack)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, false, nil
	}
	if err != nil {
		return model.Position{}, false, fmt.Errorf("failed to query position: %w", err)
	}
	id, err := keyFromBlob(raw)
	if err != nil {
		return model.Position{}, false, err
	}
	p.PositionID = id.String()
	p.Elo = id.Rating()
	return p, true, nil
}

// NextMoves returns the moves leaving key joined with their resulting positions.
func (s *Store) NextMoves(ctx context.Context, key Key) ([]model.MoveStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.positionID, p.timesPlayed, p.whiteWins, p.blackWins, p.recursiveScoreWhite, p.recursiveScoreBlack,
			m.timesPlayed, m.moveSAN
		 FROM chessMove m
		 JOIN chessPosition p ON m.endPosition = p.positionID
		 WHERE m.startPosition = ?`, key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.MoveStat
	for rows.Next() {
		var (
			raw []byte
			m   model.MoveStat
		)
		if err := rows.Scan(&raw, &m.TimesPlayed, &m.WhiteWins, &m.BlackWins, &m.RecursiveScoreWhite, &m.RecursiveScoreBlack, &m.MoveTimesPlayed, &m.SAN); err != nil {
			return nil, err
		}
		id, err := keyFromBlob(raw)
		if err != nil {
			return nil, err
		}
		m.PositionID = id.String()
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func keyFromBlob(raw []byte) (Key, error) {
	var k Key
	if len(raw) > len(k) {
		return Key{}, fmt.Errorf("position blob of %d bytes: %w", len(raw), ErrInvalidID)
	}
	copy(k[:], raw)
	return k, nil
}
