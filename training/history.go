package training

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// RunRecord is one persisted training run.
type RunRecord struct {
	RunID       string    `json:"run_id"`
	TrainedAt   time.Time `json:"trained_at"`
	BestModel   string    `json:"best_model"`
	ValR2       float64   `json:"val_r2"`
	TestMetrics Metrics   `json:"test_metrics"`
	Seed        int64     `json:"seed"`
	TrainRows   int       `json:"train_rows"`
}

// RunHistory stores training runs in SQLite for audit.
type RunHistory struct {
	db *sql.DB
}

// OpenRunHistory opens (creating if needed) the run-history database.
func OpenRunHistory(path string) (*RunHistory, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open run history: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS training_runs (
		run_id TEXT PRIMARY KEY,
		trained_at TIMESTAMP NOT NULL,
		best_model TEXT NOT NULL,
		val_r2 REAL NOT NULL,
		test_metrics TEXT NOT NULL,
		seed INTEGER NOT NULL,
		train_rows INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_trained_at ON training_runs(trained_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run history schema: %w", err)
	}

	return &RunHistory{db: db}, nil
}

// Close releases the database handle.
func (h *RunHistory) Close() error {
	return h.db.Close()
}

// Record inserts a completed training run.
func (h *RunHistory) Record(report *TrainReport) error {
	if report.Best == nil {
		return fmt.Errorf("report has no selected model")
	}
	metricsJSON, err := json.Marshal(report.TestMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal test metrics: %w", err)
	}

	_, err = h.db.Exec(`
		INSERT INTO training_runs (run_id, trained_at, best_model, val_r2, test_metrics, seed, train_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.TrainedAt,
		report.Best.Name,
		report.Best.ValMetrics.R2,
		string(metricsJSON),
		report.Seed,
		report.TrainRows,
	)
	if err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first.
func (h *RunHistory) List(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.Query(`
		SELECT run_id, trained_at, best_model, val_r2, test_metrics, seed, train_rows
		FROM training_runs
		ORDER BY trained_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var metricsJSON string
		if err := rows.Scan(&rec.RunID, &rec.TrainedAt, &rec.BestModel, &rec.ValR2,
			&metricsJSON, &rec.Seed, &rec.TrainRows); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &rec.TestMetrics); err != nil {
			return nil, fmt.Errorf("failed to parse test metrics: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
