// Package bootstrap prepares the initial-condition files that PISM reads with
// -bootstrap at the start of each MISMIP step.
package bootstrap

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/vk/mismipgen/internal/ctxlog"
	"github.com/vk/mismipgen/internal/mismip"
	"go.uber.org/zap"
)

// DefaultCalvingFront is the maximum ice extent, in meters from the divide.
const DefaultCalvingFront = 1600e3

const iceSurfaceTemp = 273.15 // K; the setup is isothermal

// Request describes one bootstrap file.
type Request struct {
	Filename     string
	Experiment   mismip.Experiment
	Step         int
	Mode         int
	Mx           int
	Semianalytic bool
	// CalvingFront defaults to DefaultCalvingFront when zero.
	CalvingFront float64
}

// Preparer creates the bootstrap file named by a request.
type Preparer interface {
	Prepare(ctx context.Context, req Request) error
}

// Nop skips file creation. Generated scripts still reference the file names.
type Nop struct{}

func (Nop) Prepare(ctx context.Context, req Request) error {
	ctxlog.FromContext(ctx).Debug("Skipping bootstrap file.", zap.String("file", req.Filename))
	return nil
}

// NetCDFPreparer writes bootstrap files into Dir.
type NetCDFPreparer struct {
	Dir string
}

func NewNetCDFPreparer(dir string) *NetCDFPreparer {
	if dir == "" {
		dir = "."
	}
	return &NetCDFPreparer{Dir: dir}
}

// Prepare computes geometry and climate fields for the request and writes
// them to Dir/req.Filename.
func (p *NetCDFPreparer) Prepare(ctx context.Context, req Request) error {
	logger := ctxlog.FromContext(ctx)

	d, err := Build(req)
	if err != nil {
		return err
	}
	path := filepath.Join(p.Dir, req.Filename)
	if err := d.Write(path); err != nil {
		return fmt.Errorf("failed to write bootstrap file: %w", err)
	}
	logger.Debug("Bootstrap file written.",
		zap.String("path", path),
		zap.Stringer("experiment", req.Experiment),
		zap.Int("step", req.Step),
		zap.Int("Mx", req.Mx),
	)
	return nil
}

// Dataset is the in-memory content of a bootstrap file. Variables are
// written in the order of Names.
type Dataset struct {
	Attributes *util.OrderedMap
	Names      []string
	Variables  map[string]api.Variable
}

func newDataset() (*Dataset, error) {
	attrs, err := util.NewOrderedMap(nil, nil)
	if err != nil {
		return nil, err
	}
	return &Dataset{Attributes: attrs, Variables: make(map[string]api.Variable)}, nil
}

// add defines a variable. attrs are name/value pairs.
func (d *Dataset) add(name string, dims []string, values any, attrs ...string) error {
	if _, ok := d.Variables[name]; ok {
		return fmt.Errorf("duplicate variable %q", name)
	}
	am, err := util.NewOrderedMap(nil, nil)
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		am.Add(attrs[i], attrs[i+1])
	}
	d.Names = append(d.Names, name)
	d.Variables[name] = api.Variable{Values: values, Dimensions: dims, Attributes: am}
	return nil
}

// Write encodes the dataset as a NetCDF classic file at path.
func (d *Dataset) Write(path string) (err error) {
	w, err := netcdf.OpenWriter(path, netcdf.KindCDF)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	if err := w.AddAttributes(d.Attributes); err != nil {
		return err
	}
	for _, name := range d.Names {
		if err := w.AddVar(name, d.Variables[name]); err != nil {
			return fmt.Errorf("variable %s: %w", name, err)
		}
	}
	return nil
}

// Build assembles the in-memory dataset for a request.
func Build(req Request) (*Dataset, error) {
	if req.Mx < 2 {
		return nil, fmt.Errorf("bootstrap grid needs at least 2 points in x, got %d", req.Mx)
	}
	front := req.CalvingFront
	if front == 0 {
		front = DefaultCalvingFront
	}

	xs := mismip.X(req.Mx)
	dx := xs[1] - xs[0]
	ys := []float64{-dx, 0, dx}

	var thk []float64
	if req.Semianalytic {
		var err error
		thk, err = mismip.Thickness(req.Experiment, req.Step, xs)
		if err != nil {
			return nil, fmt.Errorf("failed to compute thickness profile: %w", err)
		}
	} else {
		thk = make([]float64, len(xs))
		for i, x := range xs {
			if math.Abs(x) < front {
				thk[i] = mismip.UniformThickness()
			}
		}
	}

	topg := make([]float64, len(xs))
	retreat := make([]float64, len(xs))
	for i, x := range xs {
		depth, err := mismip.BedDepth(req.Experiment, x)
		if err != nil {
			return nil, err
		}
		topg[i] = -depth
		if math.Abs(x) > front {
			thk[i] = 0
		} else {
			retreat[i] = 1
		}
	}

	smb := mismip.Accumulation() * mismip.RhoI()

	d, err := newDataset()
	if err != nil {
		return nil, err
	}
	d.Attributes.Add("Conventions", "CF-1.4")
	d.Attributes.Add("title", fmt.Sprintf("MISMIP experiment %s, step %d, mode %d", req.Experiment, req.Step, req.Mode))

	ny := len(ys)
	fields := []struct {
		name   string
		dims   []string
		values any
		attrs  []string
	}{
		{"x", []string{"x"}, xs, []string{"units", "m", "axis", "X", "long_name", "X-coordinate in Cartesian system"}},
		{"y", []string{"y"}, ys, []string{"units", "m", "axis", "Y", "long_name", "Y-coordinate in Cartesian system"}},
		{"thk", []string{"y", "x"}, rows(thk, ny), []string{"units", "m", "standard_name", "land_ice_thickness"}},
		{"topg", []string{"y", "x"}, rows(topg, ny), []string{"units", "m", "standard_name", "bedrock_altitude"}},
		{"climatic_mass_balance", []string{"y", "x"}, rows(constant(len(xs), smb), ny), []string{"units", "kg m-2 s-1", "standard_name", "land_ice_surface_specific_mass_balance_flux"}},
		{"ice_surface_temp", []string{"y", "x"}, rows(constant(len(xs), iceSurfaceTemp), ny), []string{"units", "Kelvin"}},
		{"land_ice_area_fraction_retreat", []string{"y", "x"}, rows(retreat, ny), []string{"units", "1", "long_name", "mask prescribing the maximum ice extent"}},
	}
	for _, field := range fields {
		if err := d.add(field.name, field.dims, field.values, field.attrs...); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// rows repeats a flowline profile along y.
func rows(profile []float64, ny int) [][]float64 {
	out := make([][]float64, ny)
	for j := range out {
		out[j] = append([]float64(nil), profile...)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
