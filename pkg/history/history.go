// Package history ведёт журнал прогонов батчевой загрузки в sqlite.
//
// Журнал — чисто наблюдательный: он никогда не влияет на состояние
// пайплайна, и любая его ошибка не должна прерывать загрузку.
// Отключён по умолчанию (history.enabled в config.yaml).
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // Регистрируем sqlite3 драйвер
	"github.com/rs/xid"

	"github.com/lenscraft/optibulk/pkg/config"
)

// Run — один прогон батчевой загрузки.
type Run struct {
	ID        string
	Mode      string
	Uploaded  int
	Failed    int
	Duration  time.Duration
	StartedAt time.Time
	Errors    []RunError
}

// RunError — поэлементная ошибка прогона.
type RunError struct {
	Item  string
	Error string
}

// Journal — журнал прогонов поверх sqlite файла.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS upload_runs (
    id          TEXT PRIMARY KEY,
    mode        TEXT NOT NULL,
    uploaded    INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    started_at  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS upload_errors (
    run_id TEXT NOT NULL REFERENCES upload_runs(id),
    item   TEXT NOT NULL,
    error  TEXT NOT NULL
);
`

// Open открывает (при необходимости создавая) файл журнала.
func Open(cfg config.HistoryConfig) (*Journal, error) {
	cfg = cfg.GetDefaults()

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close закрывает журнал.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record сохраняет прогон вместе с его поэлементными ошибками.
//
// Присваивает run.ID, если он пуст.
func (j *Journal) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		run.ID = xid.New().String()
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO upload_runs (id, mode, uploaded, failed, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Uploaded, run.Failed, run.Duration.Milliseconds(), run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, e := range run.Errors {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO upload_errors (run_id, item, error) VALUES (?, ?, ?)`,
			run.ID, e.Item, e.Error)
		if err != nil {
			return fmt.Errorf("insert run error: %w", err)
		}
	}

	return tx.Commit()
}

// Recent возвращает последние прогоны (без поэлементных ошибок),
// от новых к старым.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, mode, uploaded, failed, duration_ms, started_at FROM upload_runs ORDER BY started_at DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs int64
		if err := rows.Scan(&r.ID, &r.Mode, &r.Uploaded, &r.Failed, &durationMs, &r.StartedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunErrors возвращает поэлементные ошибки прогона.
func (j *Journal) RunErrors(ctx context.Context, runID string) ([]RunError, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT item, error FROM upload_errors WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run errors: %w", err)
	}
	defer rows.Close()

	var errs []RunError
	for rows.Next() {
		var e RunError
		if err := rows.Scan(&e.Item, &e.Error); err != nil {
			return nil, fmt.Errorf("scan run error: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
