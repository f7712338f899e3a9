// Package yaml implements config.Loader for YAML sweep files.
package yaml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/mismipgen/internal/config"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/fsutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Extensions recognised by the loader.
var Extensions = []string{".yaml", ".yml"}

type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

type document struct {
	Initials     string    `yaml:"initials"`
	Executable   string    `yaml:"executable"`
	Semianalytic *bool     `yaml:"semianalytic"`
	Runs         []runSpec `yaml:"runs"`
}

type runSpec struct {
	Experiment string `yaml:"experiment"`
	Models     []int  `yaml:"models"`
	Modes      []int  `yaml:"modes"`
	Mx         int    `yaml:"mx"`
	Mz         int    `yaml:"mz"`
	Step       int    `yaml:"step"`
}

// Load decodes every YAML file under paths. Unknown keys are rejected.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Sweep, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.ExpandPaths(paths, Extensions...)
	if err != nil {
		return nil, err
	}

	sweep := &config.Sweep{}
	for _, file := range files {
		doc, err := decodeFile(file)
		if err != nil {
			return nil, err
		}
		if err := sweep.Merge(doc.toSweep()); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		logger.Debug("YAML sweep file loaded.", zap.String("file", file), zap.Int("runs", len(doc.Runs)))
	}
	return sweep, nil
}

func decodeFile(path string) (*document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return &doc, nil
}

func (d *document) toSweep() *config.Sweep {
	s := &config.Sweep{
		Initials:     d.Initials,
		Executable:   d.Executable,
		Semianalytic: d.Semianalytic,
	}
	for _, r := range d.Runs {
		s.Runs = append(s.Runs, &config.Run{
			Experiment: r.Experiment,
			Models:     r.Models,
			Modes:      r.Modes,
			Mx:         r.Mx,
			Mz:         r.Mz,
			Step:       r.Step,
		})
	}
	return s
}
