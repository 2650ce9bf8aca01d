// Package output persists what an engine produces and reads it back.
//
// Two stores implement sim.Recorder: a SQLite database (tables parameters, series,
// snapshots and scalars) and a JSON-lines stream with one record per call. Both can
// be replayed into a sim.MemoryRecorder for analysis.
package output

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hard-disks/ecmc/sim"
)

// Format is an on-disk store layout.
type Format string

const (
	FormatSQLite    Format = "sqlite"
	FormatJSONLines Format = "jsonl"
)

// FormatOf infers the store format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	case ".jsonl", ".ndjson":
		return FormatJSONLines, nil
	default:
		return "", fmt.Errorf("unrecognized output extension %q (want .db, .sqlite or .jsonl)", filepath.Ext(path))
	}
}

// Open creates a new store at path, replacing any existing file.
func Open(path string) (sim.Recorder, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatSQLite:
		return CreateSQLite(path)
	default:
		return CreateJSONLines(path)
	}
}

// OpenAll creates one store per path. A single path gives that store, several give a
// Tee over them in order. Stores already created are closed if a later one fails.
func OpenAll(paths ...string) (sim.Recorder, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no output paths")
	}
	tee := make(Tee, 0, len(paths))
	for _, path := range paths {
		r, err := Open(path)
		if err != nil {
			return nil, errors.Join(err, tee.Close())
		}
		tee = append(tee, r)
	}
	if len(tee) == 1 {
		return tee[0], nil
	}
	return tee, nil
}

// Load replays a finished store into memory.
func Load(path string) (*sim.MemoryRecorder, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatSQLite:
		return LoadSQLite(path)
	default:
		return LoadJSONLines(path)
	}
}

// Tee forwards every call to each recorder in order. Writes stop at the first
// failure; Flush and Close reach every recorder and join their errors.
type Tee []sim.Recorder

func (t Tee) WriteStaticParameters(p sim.StaticParameters) error {
	for _, r := range t {
		if err := r.WriteStaticParameters(p); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) WriteSnapshot(index int, positions []sim.Vec2) error {
	for _, r := range t {
		if err := r.WriteSnapshot(index, positions); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) AppendSeries(name string, index int, value float64) error {
	for _, r := range t {
		if err := r.AppendSeries(name, index, value); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) RecordScalar(name string, value float64) error {
	for _, r := range t {
		if err := r.RecordScalar(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Flush() error {
	var errs []error
	for _, r := range t {
		errs = append(errs, r.Flush())
	}
	return errors.Join(errs...)
}

func (t Tee) Close() error {
	var errs []error
	for _, r := range t {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
