package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vk/mismipgen/internal/config"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/experiment"
	"github.com/vk/mismipgen/internal/fsutil"
	"github.com/vk/mismipgen/internal/mismip"
	"github.com/vk/mismipgen/internal/script"
	"go.uber.org/zap"
)

// Run writes the script selected by the configuration: the full benchmark,
// the runs of one or more sweep files, or a single experiment.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.")
	defer func() { _ = a.logger.Sync() }()

	var err error
	switch {
	case a.config.All:
		err = a.runAll(ctx)
	case len(a.config.SweepPaths) > 0:
		err = a.runSweep(ctx)
	default:
		err = a.runSingle(ctx)
	}
	if err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runAll(ctx context.Context) error {
	if _, err := io.WriteString(a.outW, script.Preamble); err != nil {
		return err
	}
	sweep := config.AllExperiments(a.config.Initials, a.config.Executable, a.config.Semianalytic)
	return a.runJobs(ctx, sweep)
}

func (a *App) runSweep(ctx context.Context) error {
	sweep, err := a.loadSweep(ctx, a.config.SweepPaths)
	if err != nil {
		return fmt.Errorf("failed to load sweep: %w", err)
	}

	// Command-line settings fill whatever the sweep files leave unset.
	if sweep.Initials == "" {
		sweep.Initials = a.config.Initials
	}
	if sweep.Executable == "" {
		sweep.Executable = a.config.Executable
	}
	if sweep.Semianalytic == nil {
		v := a.config.Semianalytic
		sweep.Semianalytic = &v
	}

	if err := a.writeHeader(sweep.Executable); err != nil {
		return err
	}
	return a.runJobs(ctx, sweep)
}

func (a *App) runSingle(ctx context.Context) error {
	exp, err := mismip.ParseExperiment(a.config.Experiment)
	if err != nil {
		return err
	}
	if err := a.writeHeader(a.config.Executable); err != nil {
		return err
	}
	return a.runJob(ctx, config.Job{
		Config: experiment.Config{
			Experiment:   exp,
			Model:        a.config.Model,
			Mode:         a.config.Mode,
			Mx:           a.config.Mx,
			Semianalytic: a.config.Semianalytic,
			Initials:     a.config.Initials,
			Executable:   a.config.Executable,
		},
		Step: a.config.Step,
	})
}

// writeHeader records the command line. The preamble defining the default
// executable's variables follows only when no executable was chosen.
func (a *App) writeHeader(executable string) error {
	text := script.Header(a.config.Args)
	if executable == "" {
		text += script.Preamble
	}
	_, err := io.WriteString(a.outW, text)
	return err
}

func (a *App) runJobs(ctx context.Context, sweep *config.Sweep) error {
	jobs, err := sweep.Expand()
	if err != nil {
		return err
	}
	a.logger.Info("Writing experiments.", zap.Int("count", len(jobs)))
	for _, job := range jobs {
		if err := a.runJob(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) runJob(ctx context.Context, job config.Job) error {
	e, err := experiment.New(job.Config, a.preparer)
	if err != nil {
		return err
	}
	if job.Step != 0 {
		return e.RunSingle(ctx, a.outW, job.Step)
	}
	return e.Run(ctx, a.outW)
}

// loadSweep reads every path with the loader matching its extension.
// Directories are read by every loader, HCL files first.
func (a *App) loadSweep(ctx context.Context, paths []string) (*config.Sweep, error) {
	logger := ctxlog.FromContext(ctx)
	sweep := &config.Sweep{}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		var loaded []*config.Sweep
		if info.IsDir() {
			for _, l := range a.loaders {
				files, err := fsutil.FindFilesByExtension(path, l.extensions...)
				if err != nil {
					return nil, err
				}
				if len(files) == 0 {
					continue
				}
				s, err := l.loader.Load(ctx, files...)
				if err != nil {
					return nil, err
				}
				loaded = append(loaded, s)
			}
		} else {
			l, ok := a.loaderFor(path)
			if !ok {
				return nil, fmt.Errorf("%s: unsupported sweep file", path)
			}
			s, err := l.Load(ctx, path)
			if err != nil {
				return nil, err
			}
			loaded = append(loaded, s)
		}

		for _, s := range loaded {
			if err := sweep.Merge(s); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
		logger.Debug("Sweep path loaded.", zap.String("path", path), zap.Int("runs", len(sweep.Runs)))
	}

	if len(sweep.Runs) == 0 {
		return nil, fmt.Errorf("no runs found in %s", strings.Join(paths, ", "))
	}
	return sweep, nil
}

func (a *App) loaderFor(path string) (config.Loader, bool) {
	for _, l := range a.loaders {
		for _, ext := range l.extensions {
			if strings.HasSuffix(path, ext) {
				return l.loader, true
			}
		}
	}
	return nil, false
}
