package experiment

import (
	"errors"
	"fmt"

	"github.com/vk/mismipgen/internal/mismip"
)

const (
	// DefaultInitials prefixes the output file names.
	DefaultInitials = "ABC"
	// DefaultExecutable relies on the variables set by the script preamble.
	DefaultExecutable = "$PISM_DO $PISM_MPIDO $NN ${PISM_BIN}pism"
	// DefaultMz is the number of vertical levels.
	DefaultMz = 15
	// DefaultCustomMx is the grid size used in mode 3 when none is given.
	DefaultCustomMx = 601

	flowlineMy = 3
)

// ErrInvalidModel is returned for a model other than 1 or 2.
var ErrInvalidModel = errors.New("invalid MISMIP model")

// Config holds the caller's choices for one experiment run. Zero-valued
// Initials, Executable and Mz fall back to the defaults above; Mx is read
// only in mode 3.
type Config struct {
	Experiment   mismip.Experiment
	Model        int // 1: SSA only, 2: SIA+SSA
	Mode         int // 1, 2 or 3 (custom Mx)
	Mx           int
	Mz           int
	Semianalytic bool
	Initials     string
	Executable   string
}

// grid is the resolved PISM grid of an experiment.
type grid struct {
	Mx, My, Mz int
	Lz         int
}

func (c Config) withDefaults() Config {
	if c.Initials == "" {
		c.Initials = DefaultInitials
	}
	if c.Executable == "" {
		c.Executable = DefaultExecutable
	}
	if c.Mz == 0 {
		c.Mz = DefaultMz
	}
	return c
}

func (c Config) validate() error {
	if !c.Experiment.Valid() {
		return fmt.Errorf("%w: %q", mismip.ErrUnknownExperiment, string(c.Experiment))
	}
	if c.Model != 1 && c.Model != 2 {
		return fmt.Errorf("%w: %d (want 1 or 2)", ErrInvalidModel, c.Model)
	}
	if c.Mode < 1 || c.Mode > 3 {
		return fmt.Errorf("%w: %d (want 1, 2 or 3)", mismip.ErrInvalidMode, c.Mode)
	}
	return nil
}

// resolveGrid computes Mx from the mode; mode 3 takes the caller's Mx as is.
func (c Config) resolveGrid() (grid, error) {
	g := grid{My: flowlineMy, Mz: c.Mz, Lz: 6000}
	if c.Experiment == mismip.Exp2b {
		g.Lz = 7000
	}
	if c.Mode == 3 {
		g.Mx = c.Mx
		return g, nil
	}
	mx, err := mismip.GridSize(c.Mode)
	if err != nil {
		return grid{}, err
	}
	g.Mx = mx
	return g, nil
}
