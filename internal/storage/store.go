// Package storage persists logged runs: CSV files in a data directory and a
// SQLite index of run metadata. Uses the pure-Go modernc.org/sqlite driver.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

const (
	indexFile   = "runs.db"
	samplesFile = "samples.csv"
	// fixed width so created_at sorts as text
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	db      *sql.DB
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Samples   int                `json:"samples"`
	Params    dynamo.Params      `json:"params"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Open prepares baseDir and its run index, creating both if needed.
func Open(baseDir string) (*Store, error) {
	if baseDir != "" && baseDir[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		baseDir = filepath.Join(home, baseDir[1:])
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", baseDir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, indexFile))
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to index: %w", err)
	}

	s := &Store{baseDir: baseDir, db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			dt REAL NOT NULL,
			steps INTEGER NOT NULL,
			samples INTEGER NOT NULL,
			params TEXT NOT NULL,
			metrics TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dir is the resolved data directory.
func (s *Store) Dir() string { return s.baseDir }

// Save writes the samples of a run and indexes its metadata. ID and
// Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, l *series.Log) (RunMetadata, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.Samples = l.Count()
	if meta.Params == nil {
		meta.Params = dynamo.Params{}
	}
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return meta, fmt.Errorf("storage: cannot create run directory: %w", err)
	}
	if err := SaveCSV(filepath.Join(runDir, samplesFile), l.ExportRows(dynamo.Header)); err != nil {
		return meta, err
	}

	params, err := json.Marshal(meta.Params)
	if err != nil {
		return meta, fmt.Errorf("storage: encode params: %w", err)
	}
	metrics, err := json.Marshal(finite(meta.Metrics))
	if err != nil {
		return meta, fmt.Errorf("storage: encode metrics: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (id, name, created_at, dt, steps, samples, params, metrics)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Timestamp.UTC().Format(timeLayout),
		meta.Dt, meta.Steps, meta.Samples, string(params), string(metrics),
	)
	if err != nil {
		return meta, fmt.Errorf("storage: cannot index run: %w", err)
	}
	return meta, nil
}

// List returns every indexed run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_at, dt, steps, samples, params, metrics
		 FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	row := s.db.QueryRow(
		`SELECT id, name, created_at, dt, steps, samples, params, metrics
		 FROM runs WHERE id = ?`, runID,
	)
	meta, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads the logged samples of a run back into a Log.
func (s *Store) LoadSamples(runID string) (*series.Log, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("storage: open samples: %w", err)
	}
	defer f.Close()

	l, _, err := ReadLogCSV(f)
	return l, err
}

// Delete removes a run's samples and its index entry.
func (s *Store) Delete(runID string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

// finite drops values JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (RunMetadata, error) {
	var (
		meta            RunMetadata
		created         string
		params, metrics string
	)
	if err := r.Scan(&meta.ID, &meta.Name, &created, &meta.Dt, &meta.Steps, &meta.Samples, &params, &metrics); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return meta, err
		}
		return meta, fmt.Errorf("storage: scan run: %w", err)
	}

	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return meta, fmt.Errorf("storage: bad timestamp %q: %w", created, err)
	}
	meta.Timestamp = ts

	if err := json.Unmarshal([]byte(params), &meta.Params); err != nil {
		return meta, fmt.Errorf("storage: decode params: %w", err)
	}
	if err := json.Unmarshal([]byte(metrics), &meta.Metrics); err != nil {
		return meta, fmt.Errorf("storage: decode metrics: %w", err)
	}
	return meta, nil
}
