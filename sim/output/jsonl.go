package output

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sugawarayuuta/sonnet"

	"github.com/hard-disks/ecmc/sim"
)

// Record kinds of the JSON-lines store.
const (
	kindParameters = "parameters"
	kindSnapshot   = "snapshot"
	kindSeries     = "series"
	kindScalar     = "scalar"
)

// maxLineBytes bounds one JSON line when reading; a snapshot of 10^5 disks is about 4 MB.
const maxLineBytes = 64 << 20

// line is one record. Values that are not finite are written as null.
type line struct {
	Kind       string                `json:"kind"`
	Name       string                `json:"name,omitempty"`
	Index      *int                  `json:"index,omitempty"`
	Value      *float64              `json:"value,omitempty"`
	Positions  []sim.Vec2            `json:"positions,omitempty"`
	Parameters *sim.StaticParameters `json:"parameters,omitempty"`
}

// JSONLines appends one JSON object per recorder call to a file.
type JSONLines struct {
	file *os.File
	w    *bufio.Writer
	next map[string]int
}

// CreateJSONLines truncates or creates path.
func CreateJSONLines(path string) (*JSONLines, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	logrus.Debugf("Writing JSON lines to %s", path)
	return &JSONLines{file: f, w: bufio.NewWriter(f), next: make(map[string]int)}, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (j *JSONLines) write(l line) error {
	b, err := sonnet.Marshal(l)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

func (j *JSONLines) WriteStaticParameters(p sim.StaticParameters) error {
	return j.write(line{Kind: kindParameters, Parameters: &p})
}

func (j *JSONLines) WriteSnapshot(index int, positions []sim.Vec2) error {
	return j.write(line{Kind: kindSnapshot, Index: &index, Positions: positions})
}

func (j *JSONLines) AppendSeries(name string, index int, value float64) error {
	if want := j.next[name]; index != want {
		return fmt.Errorf("series %q: append at index %d, expected %d", name, index, want)
	}
	if err := j.write(line{Kind: kindSeries, Name: name, Index: &index, Value: finite(value)}); err != nil {
		return err
	}
	j.next[name]++
	return nil
}

func (j *JSONLines) RecordScalar(name string, value float64) error {
	return j.write(line{Kind: kindScalar, Name: name, Value: finite(value)})
}

func (j *JSONLines) Flush() error {
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *JSONLines) Close() error {
	if err := j.w.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}

// LoadJSONLines replays a JSON-lines store. Scalars keep their last value; null
// series values come back as NaN.
func LoadJSONLines(path string) (*sim.MemoryRecorder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := sim.NewMemoryRecorder()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1<<16), maxLineBytes)
	n := 0
	for sc.Scan() {
		n++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l line
		if err := sonnet.Unmarshal(sc.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
		if err := replay(m, l); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, n, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

func replay(m *sim.MemoryRecorder, l line) error {
	value := math.NaN()
	if l.Value != nil {
		value = *l.Value
	}
	switch l.Kind {
	case kindParameters:
		if l.Parameters == nil {
			return fmt.Errorf("parameters record without body")
		}
		return m.WriteStaticParameters(*l.Parameters)
	case kindSnapshot:
		if l.Index == nil {
			return fmt.Errorf("snapshot record without index")
		}
		return m.WriteSnapshot(*l.Index, l.Positions)
	case kindSeries:
		if l.Index == nil {
			return fmt.Errorf("series record without index")
		}
		return m.AppendSeries(l.Name, *l.Index, value)
	case kindScalar:
		return m.RecordScalar(l.Name, value)
	default:
		return fmt.Errorf("unknown record kind %q", l.Kind)
	}
}

// ReadInitialJSON reads an initial configuration stored as a JSON array of [x, y]
// pairs.
func ReadInitialJSON(path string) ([]sim.Vec2, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var positions []sim.Vec2
	if err := sonnet.Unmarshal(b, &positions); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return positions, nil
}
