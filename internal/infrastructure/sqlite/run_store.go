package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/messlens/backend/internal/domain"
)

// timestampLayout is fixed width so created_at sorts correctly as text
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunStore persists analysis runs in a SQLite database
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (or creates) the database at dbPath and applies the schema
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the underlying database
func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS analysis_runs (
        id TEXT PRIMARY KEY,
        created_at TEXT NOT NULL,
        window_name TEXT NOT NULL,
        window_size INTEGER NOT NULL,
        entry_count INTEGER NOT NULL,
        unmatched TEXT NOT NULL,
        risk_score INTEGER NOT NULL,
        risk_level TEXT NOT NULL,
        flags TEXT NOT NULL,
        macro_pct TEXT NOT NULL,
        deviation_score REAL NOT NULL,
        explanation TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs(created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRun inserts a completed analysis run
func (s *RunStore) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	unmatched, err := json.Marshal(nonNil(run.Unmatched))
	if err != nil {
		return fmt.Errorf("failed to encode unmatched dishes: %w", err)
	}
	flags, err := json.Marshal(nonNil(run.Result.Flags))
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	macroPct := run.Result.MacroPct
	if macroPct == nil {
		macroPct = map[string]float64{}
	}
	macros, err := json.Marshal(macroPct)
	if err != nil {
		return fmt.Errorf("failed to encode macro shares: %w", err)
	}

	query := `
        INSERT INTO analysis_runs (id, created_at, window_name, window_size, entry_count, unmatched,
            risk_score, risk_level, flags, macro_pct, deviation_score, explanation)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.CreatedAt.UTC().Format(timestampLayout), run.Window, run.WindowSize, run.EntryCount,
		string(unmatched), run.Result.RiskScore, run.Result.RiskLevel, string(flags), string(macros),
		run.Result.DeviationScore, run.Result.Explanation)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	return nil
}

const selectRunColumns = `
        SELECT id, created_at, window_name, window_size, entry_count, unmatched,
            risk_score, risk_level, flags, macro_pct, deviation_score, explanation
        FROM analysis_runs
    `

// GetRun loads one run by id
func (s *RunStore) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, selectRunColumns+" WHERE id = ?", id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	rows, err := s.db.QueryContext(ctx, selectRunColumns+" ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.AnalysisRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.AnalysisRun, error) {
	run := &domain.AnalysisRun{}
	var createdAt, unmatched, flags, macros string

	err := row.Scan(
		&run.ID, &createdAt, &run.Window, &run.WindowSize, &run.EntryCount, &unmatched,
		&run.Result.RiskScore, &run.Result.RiskLevel, &flags, &macros,
		&run.Result.DeviationScore, &run.Result.Explanation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan analysis run: %w", err)
	}

	if run.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(unmatched), &run.Unmatched); err != nil {
		return nil, fmt.Errorf("failed to decode unmatched dishes: %w", err)
	}
	if err := json.Unmarshal([]byte(flags), &run.Result.Flags); err != nil {
		return nil, fmt.Errorf("failed to decode flags: %w", err)
	}
	if err := json.Unmarshal([]byte(macros), &run.Result.MacroPct); err != nil {
		return nil, fmt.Errorf("failed to decode macro shares: %w", err)
	}

	return run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
