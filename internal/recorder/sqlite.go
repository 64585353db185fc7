package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SessionScreener/internal/model"
)

// SQLiteRecorder persists screening runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id              TEXT PRIMARY KEY,
			screening_date  TEXT NOT NULL,
			started_at      INTEGER NOT NULL,
			finished_at     INTEGER NOT NULL,
			selected        TEXT,
			active          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL REFERENCES runs(id),
			serial       INTEGER NOT NULL,
			ticker_index INTEGER,
			ticker       TEXT NOT NULL,
			anchor       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id)`,

		`CREATE TABLE IF NOT EXISTS outcomes (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id  TEXT NOT NULL REFERENCES runs(id),
			ticker  TEXT NOT NULL,
			status  TEXT NOT NULL,
			reason  TEXT,
			bars    INTEGER,
			anchor  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run with its results and per-ticker outcomes in one transaction.
func (r *SQLiteRecorder) RecordRun(run *model.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO runs
		(id, screening_date, started_at, finished_at, selected, active)
		VALUES (?,?,?,?,?,?)`,
		run.ID, run.ScreeningDate.String(),
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		strings.Join(run.Selected, ","), run.Active,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range run.Results {
		if _, err := tx.Exec(`INSERT INTO results
			(run_id, serial, ticker_index, ticker, anchor)
			VALUES (?,?,?,?,?)`,
			run.ID, res.Serial, res.TickerIndex, res.Ticker, res.Anchor,
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Ticker, err)
		}
	}

	for _, o := range run.Outcomes {
		if _, err := tx.Exec(`INSERT INTO outcomes
			(run_id, ticker, status, reason, bars, anchor)
			VALUES (?,?,?,?,?,?)`,
			run.ID, o.Ticker, string(o.Status), o.Reason, o.Bars, o.Anchor,
		); err != nil {
			return fmt.Errorf("insert outcome %s: %w", o.Ticker, err)
		}
	}

	return tx.Commit()
}

// LatestRun loads the most recently started run.
func (r *SQLiteRecorder) LatestRun() (*model.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		run               model.Run
		date, selected    string
		started, finished int64
	)
	err := r.db.QueryRow(`SELECT id, screening_date, started_at, finished_at, selected, active
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&run.ID, &date, &started, &finished, &selected, &run.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	if run.ScreeningDate, err = model.ParseDate(date); err != nil {
		return nil, err
	}
	run.StartedAt = time.UnixMilli(started)
	run.FinishedAt = time.UnixMilli(finished)
	if selected != "" {
		run.Selected = strings.Split(selected, ",")
	}

	if err := r.loadResults(&run); err != nil {
		return nil, err
	}
	if err := r.loadOutcomes(&run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *SQLiteRecorder) loadResults(run *model.Run) error {
	rows, err := r.db.Query(`SELECT serial, ticker_index, ticker, anchor
		FROM results WHERE run_id = ? ORDER BY serial`, run.ID)
	if err != nil {
		return fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var res model.Result
		if err := rows.Scan(&res.Serial, &res.TickerIndex, &res.Ticker, &res.Anchor); err != nil {
			return err
		}
		run.Results = append(run.Results, res)
	}
	return rows.Err()
}

func (r *SQLiteRecorder) loadOutcomes(run *model.Run) error {
	rows, err := r.db.Query(`SELECT ticker, status, reason, bars, anchor
		FROM outcomes WHERE run_id = ? ORDER BY id`, run.ID)
	if err != nil {
		return fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			o      model.TickerOutcome
			status string
		)
		if err := rows.Scan(&o.Ticker, &status, &o.Reason, &o.Bars, &o.Anchor); err != nil {
			return err
		}
		o.Status = model.OutcomeStatus(status)
		run.Outcomes = append(run.Outcomes, o)
	}
	return rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
