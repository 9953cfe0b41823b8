// Package archive persists run telemetry to sqlite: one row per run
// plus one row per generation, and the final best layout. It stores
// no population state; runs cannot be resumed from it.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"reactorai/internal/engine"
	"reactorai/internal/grid"
)

// Store is a sqlite-backed run archive.
type Store struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewStore returns an unopened store for the given database path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the schema if needed.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("archive: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			fuel          TEXT NOT NULL,
			shape         TEXT NOT NULL,
			population    INTEGER NOT NULL,
			generations   INTEGER NOT NULL,
			started_at    TEXT NOT NULL,
			finished_at   TEXT,
			best_fitness  REAL,
			best_cells    TEXT,
			evaluations   INTEGER,
			regenerated   INTEGER
		)`, `
		CREATE TABLE IF NOT EXISTS run_generations (
			run_id          TEXT NOT NULL,
			generation      INTEGER NOT NULL,
			best_fitness    REAL NOT NULL,
			mean_fitness    REAL NOT NULL,
			std_fitness     REAL NOT NULL,
			mutation_rate   REAL NOT NULL,
			tournament_size INTEGER NOT NULL,
			cache_size      INTEGER NOT NULL,
			regenerated     INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, errors.New("archive: store is not initialized")
	}
	return s.db, nil
}

// BeginRun inserts a run row and returns its generated ID.
func (s *Store) BeginRun(ctx context.Context, fuel string, shape grid.Shape, population, generations int) (string, error) {
	db, err := s.getDB()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, fuel, shape, population, generations, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, fuel, shape.String(), population, generations, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// RecordGeneration appends one generation's statistics to a run.
func (s *Store) RecordGeneration(ctx context.Context, runID string, st engine.GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO run_generations
			(run_id, generation, best_fitness, mean_fitness, std_fitness,
			 mutation_rate, tournament_size, cache_size, regenerated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			best_fitness = excluded.best_fitness,
			mean_fitness = excluded.mean_fitness,
			std_fitness = excluded.std_fitness,
			mutation_rate = excluded.mutation_rate,
			tournament_size = excluded.tournament_size,
			cache_size = excluded.cache_size,
			regenerated = excluded.regenerated
	`, runID, st.Generation, st.BestFitness, st.MeanFitness, st.StdFitness,
		st.MutationRate, st.TournamentSize, st.CacheSize, st.Regenerated)
	return err
}

// FinishRun records the outcome of a completed run.
func (s *Store) FinishRun(ctx context.Context, runID string, res engine.Result) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	cells, err := json.Marshal(res.Best.Cells)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = ?,
			best_fitness = ?,
			best_cells = ?,
			evaluations = ?,
			regenerated = ?
		WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), res.Fitness, string(cells),
		res.Evaluations, res.Regenerated, runID)
	return err
}

// BestFitness returns the recorded final fitness for a run.
func (s *Store) BestFitness(ctx context.Context, runID string) (float64, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return 0, false, err
	}

	var fitness sql.NullFloat64
	err = db.QueryRowContext(ctx, `SELECT best_fitness FROM runs WHERE id = ?`, runID).Scan(&fitness)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return fitness.Float64, fitness.Valid, nil
}
