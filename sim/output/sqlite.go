package output

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/sugawarayuuta/sonnet"

	"github.com/hard-disks/ecmc/sim"
)

const schema = `
CREATE TABLE parameters (
	id   INTEGER PRIMARY KEY CHECK (id = 1),
	body TEXT NOT NULL
);
CREATE TABLE series (
	name  TEXT    NOT NULL,
	idx   INTEGER NOT NULL,
	value REAL,
	PRIMARY KEY (name, idx)
);
CREATE TABLE snapshots (
	idx  INTEGER NOT NULL,
	disk INTEGER NOT NULL,
	x    REAL    NOT NULL,
	y    REAL    NOT NULL,
	PRIMARY KEY (idx, disk)
);
CREATE TABLE scalars (
	name  TEXT PRIMARY KEY,
	value REAL
);`

// SQLite stores a run in a SQLite database. Writes go into one open transaction
// that Flush commits, so a run that dies between flushes leaves the last flushed
// state on disk.
type SQLite struct {
	path string
	db   *sql.DB
	tx   *sql.Tx
}

// CreateSQLite creates a fresh database at path, removing any previous file.
func CreateSQLite(path string) (*SQLite, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("removing old store %s: %w", path, err)
	}
	db, err := sql.Open("sqlite3", fileDSN(path, "rwc"))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// one connection keeps the open transaction and the schema on the same handle
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema in %s: %w", path, err)
	}
	logrus.Debugf("Writing SQLite store %s", path)
	return &SQLite{path: path, db: db}, nil
}

func (s *SQLite) exec(query string, args ...any) error {
	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		s.tx = tx
	}
	_, err := s.tx.Exec(query, args...)
	return err
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func (s *SQLite) WriteStaticParameters(p sim.StaticParameters) error {
	body, err := sonnet.Marshal(p)
	if err != nil {
		return err
	}
	return s.exec(`INSERT OR REPLACE INTO parameters (id, body) VALUES (1, ?)`, string(body))
}

func (s *SQLite) WriteSnapshot(index int, positions []sim.Vec2) error {
	for disk, p := range positions {
		if err := s.exec(`INSERT INTO snapshots (idx, disk, x, y) VALUES (?, ?, ?, ?)`, index, disk, p[0], p[1]); err != nil {
			return fmt.Errorf("snapshot %d disk %d: %w", index, disk, err)
		}
	}
	return nil
}

func (s *SQLite) AppendSeries(name string, index int, value float64) error {
	return s.exec(`INSERT INTO series (name, idx, value) VALUES (?, ?, ?)`, name, index, nullable(value))
}

func (s *SQLite) RecordScalar(name string, value float64) error {
	return s.exec(`INSERT OR REPLACE INTO scalars (name, value) VALUES (?, ?)`, name, nullable(value))
}

// Flush commits the pending transaction.
func (s *SQLite) Flush() error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

// Close commits pending writes and closes the database.
func (s *SQLite) Close() error {
	logrus.Debugf("Closing SQLite store %s", s.path)
	return errors.Join(s.Flush(), s.db.Close())
}

func openReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return sql.Open("sqlite3", fileDSN(path, "ro"))
}

// fileDSN returns a SQLite URI filename for path. The path is escaped so that '?'
// and '#' in a file name do not start the query or the fragment.
func fileDSN(path, mode string) string {
	u := url.URL{Scheme: "file", Opaque: (&url.URL{Path: path}).EscapedPath(), RawQuery: "mode=" + mode}
	return u.String()
}

// LoadSQLite reads a finished store. Null series values come back as NaN.
func LoadSQLite(path string) (*sim.MemoryRecorder, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	m := sim.NewMemoryRecorder()

	var body string
	switch err := db.QueryRow(`SELECT body FROM parameters WHERE id = 1`).Scan(&body); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("reading parameters from %s: %w", path, err)
	default:
		var p sim.StaticParameters
		if err := sonnet.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decoding parameters from %s: %w", path, err)
		}
		m.WriteStaticParameters(p)
	}

	rows, err := db.Query(`SELECT name, idx, value FROM series ORDER BY name, idx`)
	if err != nil {
		return nil, fmt.Errorf("reading series from %s: %w", path, err)
	}
	for rows.Next() {
		var name string
		var idx int
		var v sql.NullFloat64
		if err := rows.Scan(&name, &idx, &v); err != nil {
			rows.Close()
			return nil, err
		}
		value := math.NaN()
		if v.Valid {
			value = v.Float64
		}
		if err := m.AppendSeries(name, idx, value); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snaps, err := readSnapshots(db, nil)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots from %s: %w", path, err)
	}
	for idx, positions := range snaps {
		m.WriteSnapshot(idx, positions)
	}

	rows, err = db.Query(`SELECT name, value FROM scalars`)
	if err != nil {
		return nil, fmt.Errorf("reading scalars from %s: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var v sql.NullFloat64
		if err := rows.Scan(&name, &v); err != nil {
			return nil, err
		}
		value := math.NaN()
		if v.Valid {
			value = v.Float64
		}
		m.RecordScalar(name, value)
	}
	return m, rows.Err()
}

// readSnapshots returns every snapshot in db, or just snapshot *only when it is set.
func readSnapshots(db *sql.DB, only *int) (map[int][]sim.Vec2, error) {
	query := `SELECT idx, disk, x, y FROM snapshots ORDER BY idx, disk`
	var args []any
	if only != nil {
		query = `SELECT idx, disk, x, y FROM snapshots WHERE idx = ? ORDER BY disk`
		args = append(args, *only)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]sim.Vec2)
	for rows.Next() {
		var idx, disk int
		var p sim.Vec2
		if err := rows.Scan(&idx, &disk, &p[0], &p[1]); err != nil {
			return nil, err
		}
		if disk != len(out[idx]) {
			return nil, fmt.Errorf("snapshot %d: disk %d out of sequence", idx, disk)
		}
		out[idx] = append(out[idx], p)
	}
	return out, rows.Err()
}

// ReadInitialSQLite returns the initial configuration stored by a previous run.
func ReadInitialSQLite(path string) ([]sim.Vec2, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	idx := sim.InitialSnapshotIndex
	snaps, err := readSnapshots(db, &idx)
	if err != nil {
		return nil, fmt.Errorf("reading initial configuration from %s: %w", path, err)
	}
	positions, ok := snaps[idx]
	if !ok {
		return nil, fmt.Errorf("%s holds no initial configuration", path)
	}
	return positions, nil
}
