// Package history persists pipeline runs, per-stage records, and feature
// selection decisions in SQLite for later inspection and replay.
package history

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/prepflow/prepflow/internal/pipeline"
	"github.com/prepflow/prepflow/internal/selection"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	target       TEXT,
	config_yaml  TEXT,
	status       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	finished_at  TEXT
);

CREATE TABLE IF NOT EXISTS stage_records (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	stage_id      TEXT NOT NULL,
	status        TEXT NOT NULL,
	error         TEXT,
	duration_ms   REAL NOT NULL,
	columns_after INTEGER NOT NULL,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS selection_decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	stage_id    TEXT NOT NULL,
	column_name TEXT NOT NULL,
	decision    TEXT NOT NULL,
	criterion   TEXT,
	reason      TEXT,
	scores_json TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region records

// RunRecord is one pipeline run.
type RunRecord struct {
	RunID      string
	Target     string
	ConfigYAML string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// StageRow is one persisted stage execution.
type StageRow struct {
	RunID        string
	StageID      string
	Status       string
	Error        string
	DurationMS   float64
	ColumnsAfter int
	CreatedAt    time.Time
}

// DecisionRow is one persisted per-column selection decision.
type DecisionRow struct {
	RunID     string
	StageID   string
	Column    string
	Decision  string
	Criterion string
	Reason    string
	Scores    map[string]float64
}

// #endregion records

// #region store-struct

// Store manages run history in SQLite. It implements stages.DecisionSink
// for the run opened with BeginRun.
type Store struct {
	db    *sql.DB
	runID string
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region begin-finish

// BeginRun inserts a new run row and makes it the store's current run.
func (s *Store) BeginRun(target, configYAML string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, target, config_yaml, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, target, configYAML, string(pipeline.StatusRunning), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	s.runID = id
	return id, nil
}

// FinishRun records the terminal status of the current run.
func (s *Store) FinishRun(status pipeline.Status) error {
	if s.runID == "" {
		return fmt.Errorf("no run in progress")
	}
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		string(status), now.Format(time.RFC3339Nano), s.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// #endregion begin-finish

// #region record-stages

// RecordStages persists the per-stage records of the current run.
func (s *Store) RecordStages(records []pipeline.StageRecord) error {
	if s.runID == "" {
		return fmt.Errorf("no run in progress")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, r := range records {
		_, err := tx.Exec(
			`INSERT INTO stage_records (run_id, stage_id, status, error, duration_ms, columns_after, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.runID, r.StageID, string(r.Status), r.Error,
			float64(r.Duration)/float64(time.Millisecond), r.ColumnsAfter, now,
		)
		if err != nil {
			return fmt.Errorf("insert stage record: %w", err)
		}
	}
	return tx.Commit()
}

// #endregion record-stages

// #region decision-sink

// RecordDecisions persists one selection pass: a kept row per surviving
// column and a rejected row per rejection, each carrying the criterion
// scores that drove it.
func (s *Store) RecordDecisions(stageID string, res selection.Result) error {
	if s.runID == "" {
		return fmt.Errorf("no run in progress")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	insert := func(column, decision, criterion, reason string) error {
		scores := make(map[string]float64)
		for kind, m := range res.Scores {
			if v, ok := m[column]; ok {
				scores[string(kind)] = v
			}
		}
		scoresJSON, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("marshal scores: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO selection_decisions (run_id, stage_id, column_name, decision, criterion, reason, scores_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.runID, stageID, column, decision, criterion, reason, string(scoresJSON), now,
		)
		if err != nil {
			return fmt.Errorf("insert decision: %w", err)
		}
		return nil
	}

	for _, name := range res.Kept {
		if err := insert(name, "kept", "", ""); err != nil {
			return err
		}
	}
	names := make([]string, 0, len(res.Rejected))
	for name := range res.Rejected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rej := res.Rejected[name]
		if err := insert(name, "rejected", string(rej.Criterion), rej.Reason); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// #endregion decision-sink

// #region queries

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, target, config_yaml, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun retrieves a specific run by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, target, config_yaml, status, started_at, finished_at
		 FROM runs WHERE run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// StageRows returns the stage records of a run in execution order.
func (s *Store) StageRows(runID string) ([]StageRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, stage_id, status, error, duration_ms, columns_after, created_at
		 FROM stage_records WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("stage rows: %w", err)
	}
	defer rows.Close()

	var out []StageRow
	for rows.Next() {
		var r StageRow
		var errStr sql.NullString
		var createdStr string
		if err := rows.Scan(&r.RunID, &r.StageID, &r.Status, &errStr, &r.DurationMS, &r.ColumnsAfter, &createdStr); err != nil {
			return nil, fmt.Errorf("scan stage row: %w", err)
		}
		if errStr.Valid {
			r.Error = errStr.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Decisions returns the selection decisions of a run in insertion order.
func (s *Store) Decisions(runID string) ([]DecisionRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, stage_id, column_name, decision, criterion, reason, scores_json
		 FROM selection_decisions WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var d DecisionRow
		var criterion, reason, scoresJSON sql.NullString
		if err := rows.Scan(&d.RunID, &d.StageID, &d.Column, &d.Decision, &criterion, &reason, &scoresJSON); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if criterion.Valid {
			d.Criterion = criterion.String
		}
		if reason.Valid {
			d.Reason = reason.String
		}
		if scoresJSON.Valid && scoresJSON.String != "" {
			if err := json.Unmarshal([]byte(scoresJSON.String), &d.Scores); err != nil {
				return nil, fmt.Errorf("unmarshal scores: %w", err)
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// scanRun reads one runs row from either a *sql.Row or *sql.Rows.
func scanRun(row interface{ Scan(...any) error }) (RunRecord, error) {
	var rec RunRecord
	var config, finished sql.NullString
	var startedStr string
	if err := row.Scan(&rec.RunID, &rec.Target, &config, &rec.Status, &startedStr, &finished); err != nil {
		return RunRecord{}, err
	}
	if config.Valid {
		rec.ConfigYAML = config.String
	}
	rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	if finished.Valid {
		rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished.String)
	}
	return rec, nil
}

// #endregion queries
