// Package storage persists analysis history in SQLite. The history is
// append-only: snapshots are inserted once and never updated or deleted.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mkrasilnikov/minusflow/internal/common"
	"github.com/mkrasilnikov/minusflow/internal/model"
	"github.com/mkrasilnikov/minusflow/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements service.HistoryStore using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage opens (creating if needed) the history database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, errors.New("dbPath must not be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveAnalysis appends one snapshot. A missing ID gets a fresh UUID and a
// zero CreatedAt gets the current time; both are written back to the
// snapshot so the caller can report them.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, snapshot *service.AnalysisSnapshot) error {
	if snapshot == nil {
		return errors.New("snapshot must not be nil")
	}
	if snapshot.Result == nil {
		return errors.New("snapshot result must not be nil")
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	resultJSON, err := json.Marshal(snapshot.Result)
	if err != nil {
		return fmt.Errorf("failed to serialize analysis result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, created_at, business_description, warning, result_json, raw_queries_count, filtered_count, used_ai)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.CreatedAt,
		snapshot.BusinessDescription,
		snapshot.Warning,
		string(resultJSON),
		snapshot.RawQueriesCount,
		snapshot.FilteredCount,
		snapshot.UsedAI,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", snapshot.ID, err)
	}
	return nil
}

// GetAnalysis loads one snapshot by ID.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, id string) (*service.AnalysisSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, business_description, warning, result_json, raw_queries_count, filtered_count, used_ai
		FROM analyses WHERE id = ?`, id)

	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis %s: %w", id, err)
	}
	return snapshot, nil
}

// ListAnalyses returns the most recent snapshots, newest first. A
// non-positive limit returns everything.
func (s *SQLiteStorage) ListAnalyses(ctx context.Context, limit int) ([]service.AnalysisSnapshot, error) {
	query := `
		SELECT id, created_at, business_description, warning, result_json, raw_queries_count, filtered_count, used_ai
		FROM analyses ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []service.AnalysisSnapshot
	for rows.Next() {
		snapshot, scanErr := scanSnapshot(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", scanErr)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analyses: %w", err)
	}
	return snapshots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*service.AnalysisSnapshot, error) {
	var (
		snapshot   service.AnalysisSnapshot
		warning    sql.NullString
		resultJSON string
	)
	err := row.Scan(
		&snapshot.ID,
		&snapshot.CreatedAt,
		&snapshot.BusinessDescription,
		&warning,
		&resultJSON,
		&snapshot.RawQueriesCount,
		&snapshot.FilteredCount,
		&snapshot.UsedAI,
	)
	if err != nil {
		return nil, err
	}
	snapshot.Warning = warning.String

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize analysis result: %w", err)
	}
	snapshot.Result = &result
	return &snapshot, nil
}
