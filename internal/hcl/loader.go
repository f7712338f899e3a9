package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mismipgen/internal/config"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
)

// Extension is the file extension recognised by the loader.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// environ is exposed to expressions as the `env` object.
	environ func() []string
}

// NewLoader creates a new HCL sweep loader reading the process environment.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

// fileRoot is the schema of a single sweep file.
type fileRoot struct {
	Initials     *string     `hcl:"initials,optional"`
	Executable   *string     `hcl:"executable,optional"`
	Semianalytic *bool       `hcl:"semianalytic,optional"`
	Runs         []*runBlock `hcl:"run,block"`
}

type runBlock struct {
	Experiment string `hcl:"experiment,label"`
	Models     []int  `hcl:"models,optional"`
	Modes      []int  `hcl:"modes,optional"`
	Mx         int    `hcl:"mx,optional"`
	Mz         int    `hcl:"mz,optional"`
	Step       int    `hcl:"step,optional"`
}

// Load parses every .hcl file under paths and merges them, in path order,
// into one sweep.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Sweep, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", zap.Int("path_count", len(paths)))

	files, err := fsutil.ExpandPaths(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", zap.Int("count", len(files)))

	parser := hclparse.NewParser()
	evalCtx := l.evalContext()
	sweep := &config.Sweep{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if err := sweep.Merge(translate(&root)); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", zap.Int("runs", len(sweep.Runs)))
	return sweep, nil
}

func translate(root *fileRoot) *config.Sweep {
	s := &config.Sweep{Semianalytic: root.Semianalytic}
	if root.Initials != nil {
		s.Initials = *root.Initials
	}
	if root.Executable != nil {
		s.Executable = *root.Executable
	}
	for _, r := range root.Runs {
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

// evalContext exposes the environment so sweep files can write, for example,
// initials = env.USER_INITIALS.
func (l *Loader) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range l.environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
