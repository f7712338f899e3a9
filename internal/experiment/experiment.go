// Package experiment turns a MISMIP experiment configuration into the shell
// commands that run it with PISM: one block per step, each step continuing
// from the output of the previous one.
package experiment

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vk/mismipgen/internal/bootstrap"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/mismip"
	"go.uber.org/zap"
)

const (
	extraTimes = "0:50:3e4"
	tsTimes    = "0:50:3e4"

	retreatMaskVariable = "land_ice_area_fraction_retreat"
	retreatMaskOutput   = "sftgif"

	finalAdvanceStep = 9
)

// Experiment is an immutable, validated experiment run.
type Experiment struct {
	cfg      Config
	grid     grid
	steps    int // softness steps of the experiment
	preparer bootstrap.Preparer
}

// New validates cfg and resolves its grid. The preparer is called once for
// every bootstrapped step.
func New(cfg Config, preparer bootstrap.Preparer) (*Experiment, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	g, err := cfg.resolveGrid()
	if err != nil {
		return nil, err
	}
	n, err := mismip.StepCount(cfg.Experiment)
	if err != nil {
		return nil, err
	}
	if preparer == nil {
		preparer = bootstrap.Nop{}
	}
	return &Experiment{cfg: cfg, grid: g, steps: n, preparer: preparer}, nil
}

// Config returns the configuration with defaults applied.
func (e *Experiment) Config() Config { return e.cfg }

// Mx is the number of grid points along the flowline.
func (e *Experiment) Mx() int { return e.grid.Mx }

// My is the number of grid points across the flowline.
func (e *Experiment) My() int { return e.grid.My }

// Mz is the number of vertical levels.
func (e *Experiment) Mz() int { return e.grid.Mz }

// Lz is the height of the computational box in meters.
func (e *Experiment) Lz() int { return e.grid.Lz }

func (e *Experiment) stressBalance() string {
	if e.cfg.Model == 1 {
		return "ssa"
	}
	return "ssa+sia"
}

// PhysicsOptions returns the modeling flags for a step. inputFile is the file
// prescribing the maximum ice extent.
func (e *Experiment) PhysicsOptions(inputFile string, step int) ([]string, error) {
	exp := e.cfg.Experiment
	m, err := mismip.SlidingExponent(exp)
	if err != nil {
		return nil, err
	}
	c, err := mismip.YieldStress(exp)
	if err != nil {
		return nil, err
	}
	a, err := mismip.Softness(exp, step)
	if err != nil {
		return nil, err
	}
	length, err := mismip.RunLength(exp, step)
	if err != nil {
		return nil, err
	}

	return []string{
		"-basal_resistance.pseudo_plastic.enabled",
		fmt.Sprintf("-basal_resistance.pseudo_plastic.q %e", m),
		fmt.Sprintf("-basal_resistance.pseudo_plastic.u_threshold %e", mismip.Secpera()),
		fmt.Sprintf("-basal_yield_stress.constant.value %e", c),
		"-basal_yield_stress.model constant",
		"-bootstrapping.defaults.geothermal_flux 0.0",
		"-constants.ice.density " + formatFloat(mismip.RhoI()),
		"-constants.sea_water.density " + formatFloat(mismip.RhoW()),
		"-constants.standard_gravity " + formatFloat(mismip.G()),
		"-energy.model none",
		"-flow_law.isothermal_Glen.ice_softness " + formatFloat(a),
		"-geometry.front_retreat.prescribed.file " + inputFile,
		"-geometry.part_grid.enabled",
		"-geometry.update.use_basal_melt_rate no",
		"-grid.periodicity y",
		"-ocean.sub_shelf_heat_flux_into_ice 0.0",
		"-options_left",
		"-ssafd_ksp_rtol 1e-7",
		"-stress_balance " + e.stressBalance(),
		"-stress_balance.calving_front_stress_bc",
		"-stress_balance.sia.bed_smoother.range 0.0",
		"-stress_balance.sia.flow_law isothermal_glen",
		"-stress_balance.sia.surface_gradient_method eta",
		"-stress_balance.ssa.Glen_exponent " + formatFloat(mismip.GlenExponent()),
		"-stress_balance.ssa.compute_surface_gradient_inward no",
		"-stress_balance.ssa.fd.flow_line_mode on",
		"-stress_balance.ssa.flow_law isothermal_glen",
		"-stress_balance.ssa.method fd",
		fmt.Sprintf("-time.end %d", int64(length)),
		"-time.start 0",
	}, nil
}

// BootstrapFilename names the bootstrap file of a step.
func (e *Experiment) BootstrapFilename(step int) string {
	return fmt.Sprintf("MISMIP_boot_%s_M%d_A%d.nc", e.cfg.Experiment, e.cfg.Mode, step)
}

// BootstrapOptions prepares the bootstrap file for a step and returns the
// grid options that read it, together with the file name.
func (e *Experiment) BootstrapOptions(ctx context.Context, step int) ([]string, string, error) {
	filename := e.BootstrapFilename(step)
	err := e.preparer.Prepare(ctx, bootstrap.Request{
		Filename:     filename,
		Experiment:   e.cfg.Experiment,
		Step:         step,
		Mode:         e.cfg.Mode,
		Mx:           e.grid.Mx,
		Semianalytic: e.cfg.Semianalytic,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to prepare %s: %w", filename, err)
	}

	return []string{
		"-i " + filename,
		"-bootstrap",
		fmt.Sprintf("-Mx %d", e.grid.Mx),
		fmt.Sprintf("-My %d", e.grid.My),
		fmt.Sprintf("-Mz %d", e.grid.Mz),
		fmt.Sprintf("-Lz %d", e.grid.Lz),
	}, filename, nil
}

// OutputFilename names the output of a step of the given experiment, using
// this run's initials, model and mode.
func (e *Experiment) OutputFilename(exp mismip.Experiment, step int) string {
	return OutputFilename(e.cfg.Initials, e.cfg.Model, exp, e.cfg.Mode, step)
}

// OutputFilename is <initials><model>_<experiment>_M<mode>_A<step>.nc.
func OutputFilename(initials string, model int, exp mismip.Experiment, mode, step int) string {
	return fmt.Sprintf("%s%d_%s_M%d_A%d.nc", initials, model, exp, mode, step)
}

// OutputOptions returns the output file of a step and the flags that write
// it along with its spatial and scalar time series.
func (e *Experiment) OutputOptions(step int) (string, []string) {
	output := e.OutputFilename(e.cfg.Experiment, step)
	return output, []string{
		"-extra_file ex_" + output,
		"-extra_times " + extraTimes,
		"-extra_vars $extra_vars",
		"-ts_file ts_" + output,
		"-ts_times " + tsTimes,
		"-output.sizes.medium " + retreatMaskOutput,
		"-o " + output,
	}
}

// Options assembles every flag of a step. An empty inputFile bootstraps the
// step; otherwise the step continues from inputFile.
func (e *Experiment) Options(ctx context.Context, step int, inputFile string) (string, []string, error) {
	var input []string
	if inputFile == "" {
		var err error
		input, inputFile, err = e.BootstrapOptions(ctx, step)
		if err != nil {
			return "", nil, err
		}
	} else {
		input = []string{"-i " + inputFile}
	}

	physics, err := e.PhysicsOptions(inputFile, step)
	if err != nil {
		return "", nil, err
	}
	output, outputOpts := e.OutputOptions(step)

	opts := make([]string, 0, len(input)+len(physics)+len(outputOpts))
	opts = append(opts, input...)
	opts = append(opts, physics...)
	opts = append(opts, outputOpts...)
	return output, opts, nil
}

// RunStep writes the shell block of one step and returns its output file.
func (e *Experiment) RunStep(ctx context.Context, w io.Writer, step int, inputFile string) (string, error) {
	output, opts, err := e.Options(ctx, step, inputFile)
	if err != nil {
		return "", err
	}
	sorted := append([]string(nil), opts...)
	sort.Strings(sorted)

	var b strings.Builder
	fmt.Fprintf(&b, "echo \"# Step %s-%d\"\n", e.cfg.Experiment, step)
	fmt.Fprintf(&b, "%s \\\n  %s \\\n  ;\n", e.cfg.Executable, strings.Join(sorted, " \\\n  "))
	fmt.Fprintf(&b, "ncrename -O -v %s,%s %s %s\n", retreatMaskOutput, retreatMaskVariable, output, output)
	b.WriteString("echo \"Done.\"\n\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return "", err
	}
	ctxlog.FromContext(ctx).Debug("Step written.",
		zap.Int("step", step),
		zap.String("output", output),
	)
	return output, nil
}

// Steps returns the fixed step sequence of the experiment and the file the
// first step continues from (empty when it bootstraps).
func (e *Experiment) Steps() ([]int, string) {
	exp := e.cfg.Experiment
	if exp.Family() == '2' {
		steps := make([]int, 0, finalAdvanceStep-1)
		for s := finalAdvanceStep - 1; s >= 1; s-- {
			steps = append(steps, s)
		}
		return steps, e.OutputFilename(exp.Advance(), finalAdvanceStep)
	}
	steps := make([]int, e.steps)
	for i := range steps {
		steps[i] = i + 1
	}
	return steps, ""
}

// Run writes every step of the experiment, chaining each step's output into
// the next step's input.
func (e *Experiment) Run(ctx context.Context, w io.Writer) error {
	steps, input := e.Steps()
	return e.run(ctx, w, steps, input)
}

// RunSingle writes one bootstrapped step.
func (e *Experiment) RunSingle(ctx context.Context, w io.Writer, step int) error {
	return e.run(ctx, w, []int{step}, "")
}

func (e *Experiment) run(ctx context.Context, w io.Writer, steps []int, input string) error {
	ctx = ctxlog.With(ctx,
		zap.Stringer("experiment", e.cfg.Experiment),
		zap.Int("model", e.cfg.Model),
		zap.Int("mode", e.cfg.Mode),
	)
	ctxlog.FromContext(ctx).Debug("Writing experiment.", zap.Ints("steps", steps))

	if _, err := fmt.Fprintf(w, "echo \"# Experiment %s\"\n", e.cfg.Experiment); err != nil {
		return err
	}
	for _, step := range steps {
		out, err := e.RunStep(ctx, w, step, input)
		if err != nil {
			return fmt.Errorf("experiment %s step %d: %w", e.cfg.Experiment, step, err)
		}
		input = out
	}
	return nil
}
