package sink

import (
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

// ErrRunNotFound is returned when a run id is not in the store.
var ErrRunNotFound = errors.New("sink: run not found")

// Run describes one detection: the engine setup, the frames it compared and
// the resulting summary.
type Run struct {
	ID         string             `json:"id"`
	Previous   string             `json:"previous"`
	Next       string             `json:"next"`
	Parameters motion.Parameters  `json:"parameters"`
	Iterations int                `json:"iterations"`
	Seed       motion.SeedMode    `json:"seed"`
	Update     motion.UpdateOrder `json:"update"`
	Summary    motion.Summary     `json:"summary"`
	CreatedAt  time.Time          `json:"created_at"`
}

// StoredGrid is one grid written under a run.
type StoredGrid struct {
	Name   string
	Width  int
	Height int
	// Moving is the number of non-zero pixels.
	Moving int
}

// Store keeps runs and their grids in a SQLite database. Grids are stored as
// grayscale PNG blobs.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at dbPath and runs migrations.
// ":memory:" gives a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	s := &Store{db: db, path: dbPath}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Begin inserts run and returns a Sink whose writes are stored under it.
// A missing ID is filled with a new UUID and CreatedAt with the current time.
// Each write commits on its own; use Record to store a whole result atomically.
func (s *Store) Begin(run Run) (Run, Sink, error) {
	run, err := insertRun(s.db, run)
	if err != nil {
		return Run{}, nil, err
	}
	return run, &runSink{db: s.db, runID: run.ID}, nil
}

// Record stores run together with every grid of result in one transaction:
// if any grid fails, nothing is stored. The run summary is computed from
// result.
func (s *Store) Record(run Run, result motion.Result) (Run, error) {
	run.Summary = result.Summary()

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, errors.Wrap(err, "begin record")
	}
	defer tx.Rollback()

	run, err = insertRun(tx, run)
	if err != nil {
		return Run{}, err
	}
	if err := WriteResult(&runSink{db: tx, runID: run.ID}, result); err != nil {
		return Run{}, err
	}
	if err := tx.Commit(); err != nil {
		return Run{}, errors.Wrapf(err, "commit run %s", run.ID)
	}
	return run, nil
}

// Runs lists all runs, oldest first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, previous, next, theta, sigma_s, temperature,
			iterations, seed, update_order, summary, created_at
		 FROM runs
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run returns the run with the given id, or ErrRunNotFound.
func (s *Store) Run(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT id, previous, next, theta, sigma_s, temperature,
			iterations, seed, update_order, summary, created_at
		 FROM runs
		 WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrRunNotFound, "id %s", id)
	}
	return run, err
}

// Grids lists the grids stored under a run, in insertion order.
func (s *Store) Grids(runID string) ([]StoredGrid, error) {
	rows, err := s.db.Query(
		`SELECT name, width, height, moving FROM grids WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grids []StoredGrid
	for rows.Next() {
		var g StoredGrid
		if err := rows.Scan(&g.Name, &g.Width, &g.Height, &g.Moving); err != nil {
			return nil, err
		}
		grids = append(grids, g)
	}
	return grids, rows.Err()
}

// Grid loads the grid stored under runID and name.
func (s *Store) Grid(runID, name string) (motion.Grid, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT png FROM grids WHERE run_id = ? AND name = ?`,
		runID, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return motion.Grid{}, errors.Wrapf(ErrRunNotFound, "grid %s of run %s", name, runID)
	}
	if err != nil {
		return motion.Grid{}, err
	}
	f, err := images.Decode(data)
	if err != nil {
		return motion.Grid{}, err
	}
	return f.Grid, nil
}

// Mask loads a stored grid and checks that it is binary.
func (s *Store) Mask(runID, name string) (motion.Mask, error) {
	g, err := s.Grid(runID, name)
	if err != nil {
		return motion.Mask{}, err
	}
	return motion.NewMask(g.Width, g.Height, g.Pix)
}

// Delete removes a run and, through the foreign key, its grids.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(ErrRunNotFound, "id %s", id)
	}
	return nil
}

// execer is the part of *sql.DB and *sql.Tx the writes need.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRun(db execer, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return Run{}, errors.Wrap(err, "encode summary")
	}

	_, err = db.Exec(
		`INSERT INTO runs (id, previous, next, theta, sigma_s, temperature,
			iterations, seed, update_order, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Previous, run.Next,
		run.Parameters.Theta, run.Parameters.SigmaS, temperatureValue(run.Parameters.T),
		run.Iterations, string(run.Seed), string(run.Update), string(summary), run.CreatedAt,
	)
	if err != nil {
		return Run{}, errors.Wrapf(err, "insert run %s", run.ID)
	}
	return run, nil
}

func writeGrid(db execer, runID, name string, g motion.Grid) error {
	if g.Width <= 0 || g.Height <= 0 || len(g.Pix) != g.Width*g.Height {
		return errors.Wrapf(motion.ErrInvalidFrame, "grid %s: %dx%d with %d pixels", name, g.Width, g.Height, len(g.Pix))
	}
	data, err := images.EncodePNG(g)
	if err != nil {
		return err
	}
	moving := 0
	for _, v := range g.Pix {
		if v != 0 {
			moving++
		}
	}
	_, err = db.Exec(
		`INSERT INTO grids (run_id, name, width, height, moving, png)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, name) DO UPDATE SET
			width = excluded.width, height = excluded.height,
			moving = excluded.moving, png = excluded.png`,
		runID, name, g.Width, g.Height, moving, data,
	)
	return errors.Wrapf(err, "insert grid %s", name)
}

type runSink struct {
	db    execer
	runID string
}

func (r *runSink) Write(name string, g motion.Grid) error {
	return writeGrid(r.db, r.runID, name, g)
}

func (r *runSink) Close() error {
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		temperature sql.NullFloat64
		seed        string
		update      string
		summary     string
	)
	err := row.Scan(&run.ID, &run.Previous, &run.Next,
		&run.Parameters.Theta, &run.Parameters.SigmaS, &temperature,
		&run.Iterations, &seed, &update, &summary, &run.CreatedAt)
	if err != nil {
		return Run{}, err
	}
	run.Parameters.T = math.Inf(1)
	if temperature.Valid {
		run.Parameters.T = temperature.Float64
	}
	run.Seed = motion.SeedMode(seed)
	run.Update = motion.UpdateOrder(update)
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return Run{}, errors.Wrapf(err, "decode summary of run %s", run.ID)
	}
	return run, nil
}

// temperatureValue stores an infinite temperature as NULL.
func temperatureValue(t float64) sql.NullFloat64 {
	if math.IsInf(t, 1) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: t, Valid: true}
}
