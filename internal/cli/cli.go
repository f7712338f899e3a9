package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/vk/mismipgen/internal/app"
	"github.com/vk/mismipgen/internal/experiment"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. args[0] is the program name. It
// returns a populated Config, a boolean indicating if the program should
// exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	name := "mismipgen"
	var rest []string
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprintf(output, `
mismipgen - Creates a script running MISMIP experiments with PISM.

Usage:
  %s [options] > mismip.sh

Options:
`, name)
		flagSet.PrintDefaults()
	}

	initials := flagSet.String("initials", experiment.DefaultInitials, "Initials (3 letters)")
	exp := flagSet.StringP("experiment", "e", "1a", "MISMIP experiments (one of '1a', '1b', '2a', '2b', '3a', '3b')")
	step := flagSet.IntP("step", "s", 0, "MISMIP step number")
	uniform := flagSet.BoolP("uniform_thickness", "u", false, "Use uniform 10 m ice thickness")
	all := flagSet.BoolP("all", "a", false, "Run all experiments")
	mode := flagSet.IntP("mode", "m", 1, "MISMIP grid mode")
	mx := flagSet.Int("Mx", experiment.DefaultCustomMx, "Custom grid size; use with --mode=3")
	model := flagSet.Int("model", 1, "Models: 1 - SSA only; 2 - SIA+SSA")
	executable := flagSet.String("executable", "", "Executable to run, e.g. 'mpiexec -n 4 pism'")
	sweep := flagSet.StringArrayP("sweep", "f", nil, "Sweep file (.hcl, .yaml, .yml) or directory; repeatable")
	bootstrapDir := flagSet.String("bootstrap-dir", ".", "Directory receiving the bootstrap NetCDF files")
	noBootstrap := flagSet.Bool("no-bootstrap", false, "Do not write bootstrap files")
	logFormat := flagSet.String("log-format", "console", "Log output format. Options: 'console' or 'json'")
	logLevel := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'")

	if err := flagSet.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	if flagSet.Changed("step") && *step < 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid step %d: must be positive", *step)}
	}

	config, err := app.NewConfig(app.Config{
		Initials:     *initials,
		Experiment:   *exp,
		Step:         *step,
		Semianalytic: !*uniform,
		Mode:         *mode,
		Mx:           *mx,
		Model:        *model,
		Executable:   *executable,
		All:          *all,
		SweepPaths:   *sweep,
		BootstrapDir: *bootstrapDir,
		NoBootstrap:  *noBootstrap,
		LogFormat:    strings.ToLower(*logFormat),
		LogLevel:     strings.ToLower(*logLevel),
		Args:         args,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
