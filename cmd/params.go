package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"

	"github.com/hard-disks/ecmc/sim"
)

// gcfgParams is the layout of a .gcfg parameter file: one [run] section.
type gcfgParams struct {
	Run sim.RunParams
}

// LoadRunParams reads a parameter file over base. Keys absent from the file keep
// their value in base. The format follows the extension: .yaml/.yml or .gcfg/.ini.
func LoadRunParams(path string, base sim.RunParams) (sim.RunParams, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return loadYAMLParams(path, base)
	case ".gcfg", ".ini":
		file := gcfgParams{Run: base}
		if err := gcfg.ReadFileInto(&file, path); err != nil {
			return base, fmt.Errorf("parsing parameter file %s: %w", path, err)
		}
		return file.Run, nil
	default:
		return base, fmt.Errorf("unknown parameter file extension %q (want .yaml, .yml, .gcfg or .ini)", ext)
	}
}

func loadYAMLParams(path string, base sim.RunParams) (sim.RunParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("reading parameter file: %w", err)
	}
	defer f.Close()

	p := base
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("parsing parameter file %s: %w", path, err)
	}
	return p, nil
}
