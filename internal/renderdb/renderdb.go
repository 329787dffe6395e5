// Package renderdb persists yard map render runs to SQLite so parameter
// tuning sessions can be compared after the fact.
package renderdb

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// RenderDB wraps the SQLite handle for the render run store.
type RenderDB struct {
	*sql.DB
}

// Open opens (creating if needed) the render run database at path.
func Open(path string) (*RenderDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing render schema: %w", err)
	}
	log.Println("initialized render run database schema")
	return &RenderDB{db}, nil
}

// RunRecord is one persisted render request.
type RunRecord struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	Source     string          `json:"source"`
	Params     json.RawMessage `json:"params"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	PointCount int             `json:"point_count"`
	Stats      json.RawMessage `json:"stats,omitempty"`
	Error      string          `json:"error,omitempty"`
	ElapsedMS  float64         `json:"elapsed_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewRunID returns a fresh identifier for a render run.
func NewRunID() string {
	return uuid.NewString()
}

// InsertRun records a completed (or failed) render run and returns its run ID.
func (rdb *RenderDB) InsertRun(rec RunRecord) (string, error) {
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO render_runs (run_id, source, params_json, width, height,
			point_count, stats_json, error, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := rdb.Exec(query,
		rec.RunID,
		rec.Source,
		string(rec.Params),
		rec.Width,
		rec.Height,
		rec.PointCount,
		nullJSON(rec.Stats),
		nullStr(rec.Error),
		rec.ElapsedMS,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting render run %s: %w", rec.RunID, err)
	}
	return rec.RunID, nil
}

// GetRun returns a single run by ID, or nil when absent.
func (rdb *RenderDB) GetRun(runID string) (*RunRecord, error) {
	query := `
		SELECT id, run_id, source, params_json, width, height,
		       point_count, stats_json, error, elapsed_ms, created_at
		FROM render_runs
		WHERE run_id = ?
	`
	var rec RunRecord
	var params, stats, errMsg sql.NullString
	var createdAt string
	err := rdb.QueryRow(query, runID).Scan(
		&rec.ID, &rec.RunID, &rec.Source, &params, &rec.Width, &rec.Height,
		&rec.PointCount, &stats, &errMsg, &rec.ElapsedMS, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying render run %s: %w", runID, err)
	}
	rec.Params = jsonOrNil(params)
	rec.Stats = jsonOrNil(stats)
	if errMsg.Valid {
		rec.Error = errMsg.String
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for run %s: %w", runID, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}

// ListRuns returns the most recent runs, newest first. Limit is clamped to
// [1, 200] with a default of 20.
func (rdb *RenderDB) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}
	query := `
		SELECT id, run_id, source, params_json, width, height,
		       point_count, stats_json, error, elapsed_ms, created_at
		FROM render_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := rdb.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing render runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var params, stats, errMsg sql.NullString
		var createdAt string
		if err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.Source, &params, &rec.Width, &rec.Height,
			&rec.PointCount, &stats, &errMsg, &rec.ElapsedMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning render run row: %w", err)
		}
		rec.Params = jsonOrNil(params)
		rec.Stats = jsonOrNil(stats)
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at for run row: %w", err)
		}
		rec.CreatedAt = t
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run record.
func (rdb *RenderDB) DeleteRun(runID string) error {
	_, err := rdb.Exec(`DELETE FROM render_runs WHERE run_id = ?`, runID)
	return err
}

func nullStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullJSON(data json.RawMessage) *string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	return &s
}

func jsonOrNil(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}
