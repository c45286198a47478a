package snapshot

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// Index is a small SQLite table recording one row per persisted analysis
// cycle. It backs history queries from the CLI and the HTTP API; the JSON
// snapshot files remain the source of truth.
type Index struct {
	db *sql.DB
}

// CycleRow is one persisted analysis cycle.
type CycleRow struct {
	ID            string `json:"id"`
	TS            int64  `json:"ts"`
	TotalCommands int    `json:"total_commands"`
	AttackFocus   string `json:"attack_focus"`
	Path          string `json:"path"`
}

func OpenIndex(path string) (*Index, error) {
	// Some environments restrict SQLite creating new files but allow opening
	// an existing one. Pre-create the DB file to avoid SQLITE_CANTOPEN.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("precreate sqlite db %s: %w", path, err)
	}
	_ = f.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return idx, nil
}

func (x *Index) init() error {
	_, err := x.db.Exec(`
CREATE TABLE IF NOT EXISTS cycles (
  id             TEXT PRIMARY KEY,
  ts             INTEGER NOT NULL,
  total_commands INTEGER NOT NULL,
  attack_focus   TEXT NOT NULL,
  path           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cycles_ts ON cycles(ts);
`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (x *Index) Insert(row CycleRow) error {
	_, err := x.db.Exec(
		`INSERT INTO cycles (id, ts, total_commands, attack_focus, path) VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.TS, row.TotalCommands, row.AttackFocus, row.Path,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

func (x *Index) List(limit int) ([]CycleRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := x.db.Query(
		`SELECT id, ts, total_commands, attack_focus, path FROM cycles ORDER BY ts DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CycleRow, 0, limit)
	for rows.Next() {
		var r CycleRow
		if err := rows.Scan(&r.ID, &r.TS, &r.TotalCommands, &r.AttackFocus, &r.Path); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (x *Index) DeleteByPath(path string) error {
	_, err := x.db.Exec(`DELETE FROM cycles WHERE path=?`, path)
	return err
}

func (x *Index) Close() error {
	return x.db.Close()
}
