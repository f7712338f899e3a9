package config

import (
	"errors"
	"fmt"

	"github.com/vk/mismipgen/internal/experiment"
	"github.com/vk/mismipgen/internal/mismip"
)

var ErrConflict = errors.New("conflicting sweep setting")

// Sweep is the unified representation of one or more sweep files.
type Sweep struct {
	Initials   string
	Executable string
	// Semianalytic defaults to true when unset.
	Semianalytic *bool
	Runs         []*Run
}

// Run is one `run` entry: an experiment over a set of models and modes.
type Run struct {
	Experiment string
	Models     []int
	Modes      []int
	Mx         int
	Mz         int
	// Step, when non-zero, restricts the run to that single bootstrapped step.
	Step int
}

// Job is one expanded experiment together with its optional single step.
type Job struct {
	Config experiment.Config
	Step   int
}

// Merge folds other into s. Scalar settings may be set by only one source
// unless both agree.
func (s *Sweep) Merge(other *Sweep) error {
	if other == nil {
		return nil
	}
	if err := mergeString(&s.Initials, other.Initials, "initials"); err != nil {
		return err
	}
	if err := mergeString(&s.Executable, other.Executable, "executable"); err != nil {
		return err
	}
	if other.Semianalytic != nil {
		if s.Semianalytic != nil && *s.Semianalytic != *other.Semianalytic {
			return fmt.Errorf("%w: semianalytic is set to both %t and %t", ErrConflict, *s.Semianalytic, *other.Semianalytic)
		}
		v := *other.Semianalytic
		s.Semianalytic = &v
	}
	s.Runs = append(s.Runs, other.Runs...)
	return nil
}

func mergeString(dst *string, src, name string) error {
	if src == "" {
		return nil
	}
	if *dst != "" && *dst != src {
		return fmt.Errorf("%w: %s is set to both %q and %q", ErrConflict, name, *dst, src)
	}
	*dst = src
	return nil
}

// Expand turns every run into concrete experiment configurations, in file
// order, iterating models before modes. Runs without models or modes use
// model 1 and mode 1.
func (s *Sweep) Expand() ([]Job, error) {
	semianalytic := true
	if s.Semianalytic != nil {
		semianalytic = *s.Semianalytic
	}

	var jobs []Job
	for i, r := range s.Runs {
		exp, err := mismip.ParseExperiment(r.Experiment)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		if r.Step < 0 {
			return nil, fmt.Errorf("run %d: %w: %d", i+1, mismip.ErrInvalidStep, r.Step)
		}
		models := r.Models
		if len(models) == 0 {
			models = []int{1}
		}
		modes := r.Modes
		if len(modes) == 0 {
			modes = []int{1}
		}
		mx := r.Mx
		if mx == 0 {
			mx = experiment.DefaultCustomMx
		}
		for _, model := range models {
			for _, mode := range modes {
				jobs = append(jobs, Job{
					Config: experiment.Config{
						Experiment:   exp,
						Model:        model,
						Mode:         mode,
						Mx:           mx,
						Mz:           r.Mz,
						Semianalytic: semianalytic,
						Initials:     s.Initials,
						Executable:   s.Executable,
					},
					Step: r.Step,
				})
			}
		}
	}
	return jobs, nil
}

// AllExperiments is the complete benchmark: both models, all three modes and
// every experiment, with Mx = 601 for mode 3.
func AllExperiments(initials, executable string, semianalytic bool) *Sweep {
	s := &Sweep{Initials: initials, Executable: executable, Semianalytic: &semianalytic}
	for _, model := range []int{1, 2} {
		for _, mode := range []int{1, 2, 3} {
			for _, exp := range mismip.Experiments {
				s.Runs = append(s.Runs, &Run{
					Experiment: string(exp),
					Models:     []int{model},
					Modes:      []int{mode},
					Mx:         experiment.DefaultCustomMx,
				})
			}
		}
	}
	return s
}
