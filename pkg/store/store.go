// deploywatch
// (C) 2026, the deploywatch authors
//
// The deploywatch authors and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package store persists monitoring runs between invocations, so a report
// can be generated after the monitoring process has exited.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/deploywatch/deploywatch/pkg/monitor"
	"github.com/deploywatch/deploywatch/pkg/probe"
)

// ErrNoRuns is returned when the store holds no monitoring run yet
var ErrNoRuns = errors.New("no monitoring runs recorded")

// Store wraps the sqlite database holding monitoring runs
type Store struct {
	db *sql.DB
}

// New opens the store at path, creating the schema if necessary
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// WAL allows the report command to read while a monitor is writing
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA synchronous=NORMAL")

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        start_time DATETIME NOT NULL,
        end_time DATETIME,
        status TEXT NOT NULL,
        reason TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS probe_results (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
        cycle INTEGER NOT NULL,
        cycle_start DATETIME NOT NULL,
        endpoint TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        code INTEGER NOT NULL,
        latency REAL NOT NULL,
        healthy BOOLEAN NOT NULL,
        error TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_probe_results_run ON probe_results(run_id, cycle);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// SaveRun persists a terminal run and returns its id
func (s *Store) SaveRun(ctx context.Context, run monitor.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var end any
	if !run.End.IsZero() {
		end = run.End
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (start_time, end_time, status, reason) VALUES (?, ?, ?, ?)`,
		run.Start, end, string(run.Status), run.Reason,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, c := range run.Cycles {
		for _, r := range c.Results {
			var cause any
			if r.Error != nil {
				cause = *r.Error
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO probe_results (run_id, cycle, cycle_start, endpoint, timestamp, code, latency, healthy, error)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, c.Index, c.Start, r.Endpoint, r.Timestamp, r.Code, r.Latency, r.Healthy, cause,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to insert probe result: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// LatestRun loads the most recently saved run.
// Returns ErrNoRuns when nothing has been saved yet.
func (s *Store) LatestRun(ctx context.Context) (monitor.Run, error) {
	var (
		id     int64
		run    monitor.Run
		end    sql.NullTime
		status string
		reason sql.NullString
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_time, end_time, status, reason FROM runs ORDER BY id DESC LIMIT 1`)
	if err := row.Scan(&id, &run.Start, &end, &status, &reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return monitor.Run{}, ErrNoRuns
		}
		return monitor.Run{}, fmt.Errorf("failed to load run: %w", err)
	}

	run.Status = monitor.Status(status)
	if end.Valid {
		run.End = end.Time
	}
	if reason.Valid {
		run.Reason = reason.String
	}

	cycles, err := s.loadCycles(ctx, id)
	if err != nil {
		return monitor.Run{}, err
	}
	run.Cycles = cycles
	return run, nil
}

func (s *Store) loadCycles(ctx context.Context, runID int64) ([]monitor.Cycle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cycle, cycle_start, endpoint, timestamp, code, latency, healthy, error
         FROM probe_results WHERE run_id = ? ORDER BY cycle, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load probe results: %w", err)
	}
	defer rows.Close()

	var cycles []monitor.Cycle
	for rows.Next() {
		var (
			index      int
			cycleStart time.Time
			res        probe.Result
			cause      sql.NullString
		)
		if err := rows.Scan(&index, &cycleStart, &res.Endpoint, &res.Timestamp,
			&res.Code, &res.Latency, &res.Healthy, &cause); err != nil {
			return nil, fmt.Errorf("failed to scan probe result: %w", err)
		}
		if cause.Valid {
			res.Error = &cause.String
		}

		if len(cycles) == 0 || cycles[len(cycles)-1].Index != index {
			cycles = append(cycles, monitor.Cycle{Index: index, Start: cycleStart})
		}
		last := len(cycles) - 1
		cycles[last].Results = append(cycles[last].Results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate probe results: %w", err)
	}
	return cycles, nil
}
