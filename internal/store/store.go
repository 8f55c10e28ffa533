// Package store archives completed model runs in a local SQLite database so
// that repeated invocations of the pipeline can be compared after the fact.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bayesarima/pkg/models/bsarima"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id             TEXT PRIMARY KEY,
	created_at     TEXT NOT NULL,
	series         TEXT NOT NULL,
	observations   INTEGER NOT NULL,
	model          TEXT NOT NULL,
	prior_location REAL NOT NULL,
	prior_scale    REAL NOT NULL,
	seed           INTEGER NOT NULL,
	waic           REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS run_params (
	run_id TEXT NOT NULL REFERENCES runs(id),
	param  TEXT NOT NULL,
	mean   REAL NOT NULL,
	sd     REAL NOT NULL,
	q5     REAL NOT NULL,
	q50    REAL NOT NULL,
	q95    REAL NOT NULL,
	n_eff  REAL NOT NULL,
	r_hat  REAL NOT NULL,
	PRIMARY KEY (run_id, param)
);`

// Store is a SQLite-backed run archive. It is safe for use from a single
// goroutine, which is all the linear pipeline needs.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening run archive %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run archive schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one archived run.
type Record struct {
	RunID         uuid.UUID
	CreatedAt     time.Time
	Series        string
	Observations  int
	Model         string
	PriorLocation float64
	PriorScale    float64
	Seed          uint64
	WAIC          float64
}

// ArchiveRun inserts the run header and its per-parameter posterior summary
// in one transaction.
func (s *Store) ArchiveRun(rec Record, params []bsarima.ParamSummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("archiving run %s: %w", rec.RunID, err)
	}

	_, err = tx.Exec(
		`INSERT INTO runs
		 (id, created_at, series, observations, model, prior_location, prior_scale, seed, waic)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID.String(),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Series,
		rec.Observations,
		rec.Model,
		rec.PriorLocation,
		rec.PriorScale,
		int64(rec.Seed),
		rec.WAIC)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("archiving run %s: %w", rec.RunID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO run_params
		 (run_id, param, mean, sd, q5, q50, q95, n_eff, r_hat)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("archiving run %s: %w", rec.RunID, err)
	}
	defer stmt.Close()

	for _, p := range params {
		_, err := stmt.Exec(rec.RunID.String(),
			p.Name, p.Mean, p.SD, p.Q5, p.Q50, p.Q95, p.NEff, p.RHat)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("archiving run %s param %s: %w", rec.RunID, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archiving run %s: %w", rec.RunID, err)
	}
	return nil
}

// Runs returns all archived run headers, newest first.
func (s *Store) Runs() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, series, observations, model,
		        prior_location, prior_scale, seed, waic
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing archived runs: %w", err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var (
			rec       Record
			id        string
			createdAt string
			seed      int64
		)
		err := rows.Scan(&id, &createdAt, &rec.Series, &rec.Observations,
			&rec.Model, &rec.PriorLocation, &rec.PriorScale, &seed, &rec.WAIC)
		if err != nil {
			return nil, fmt.Errorf("scanning archived run: %w", err)
		}
		if rec.RunID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scanning archived run id %q: %w", id, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("scanning archived run timestamp %q: %w", createdAt, err)
		}
		rec.Seed = uint64(seed)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Params returns the archived posterior summary for one run.
func (s *Store) Params(runID uuid.UUID) ([]bsarima.ParamSummary, error) {
	rows, err := s.db.Query(
		`SELECT param, mean, sd, q5, q50, q95, n_eff, r_hat
		 FROM run_params WHERE run_id = ? ORDER BY rowid`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("loading params for run %s: %w", runID, err)
	}
	defer rows.Close()

	var params []bsarima.ParamSummary
	for rows.Next() {
		var p bsarima.ParamSummary
		err := rows.Scan(&p.Name, &p.Mean, &p.SD, &p.Q5, &p.Q50, &p.Q95, &p.NEff, &p.RHat)
		if err != nil {
			return nil, fmt.Errorf("scanning params for run %s: %w", runID, err)
		}
		params = append(params, p)
	}
	return params, rows.Err()
}
