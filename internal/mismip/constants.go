package mismip

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownExperiment = errors.New("unknown MISMIP experiment")
	ErrInvalidMode       = errors.New("invalid MISMIP grid mode")
	ErrInvalidStep       = errors.New("invalid MISMIP step")
)

// Experiment is one of the six MISMIP experiment identifiers.
type Experiment string

const (
	Exp1a Experiment = "1a"
	Exp1b Experiment = "1b"
	Exp2a Experiment = "2a"
	Exp2b Experiment = "2b"
	Exp3a Experiment = "3a"
	Exp3b Experiment = "3b"
)

// Experiments lists all identifiers in protocol order.
var Experiments = []Experiment{Exp1a, Exp1b, Exp2a, Exp2b, Exp3a, Exp3b}

// ParseExperiment validates s as an experiment identifier.
func ParseExperiment(s string) (Experiment, error) {
	e := Experiment(s)
	if !e.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownExperiment, s)
	}
	return e, nil
}

func (e Experiment) Valid() bool {
	switch e {
	case Exp1a, Exp1b, Exp2a, Exp2b, Exp3a, Exp3b:
		return true
	}
	return false
}

// Family is the leading digit: 1 (advance), 2 (retreat) or 3 (overdeepened bed).
func (e Experiment) Family() byte {
	if len(e) == 0 {
		return 0
	}
	return e[0]
}

// Variant is the trailing letter selecting the sliding law.
func (e Experiment) Variant() byte {
	if len(e) < 2 {
		return 0
	}
	return e[1]
}

// Advance returns the family-1 experiment that a family-2 experiment
// continues from. Other experiments are returned unchanged.
func (e Experiment) Advance() Experiment {
	if e.Family() == '2' {
		return Experiment("1" + string(e.Variant()))
	}
	return e
}

func (e Experiment) String() string { return string(e) }

const (
	secondsPerYear = 3.15569259747e7
	halfLength     = 1.8e6
	iceDensity     = 900.0
	seaWaterDens   = 1000.0
	gravity        = 9.8
	glenExponent   = 3.0
	accumulation   = 0.3 // m/year
)

// Secpera is the number of seconds in a year.
func Secpera() float64 { return secondsPerYear }

// L is the distance from the ice divide to the domain edge, in meters.
func L() float64 { return halfLength }

func RhoI() float64 { return iceDensity }
func RhoW() float64 { return seaWaterDens }
func G() float64    { return gravity }

// GlenExponent is n in Glen's flow law.
func GlenExponent() float64 { return glenExponent }

// Accumulation is the surface mass balance rate in m/s of ice equivalent.
func Accumulation() float64 { return accumulation / secondsPerYear }

// N is the number of grid intervals between the divide and the domain edge.
func N(mode int) (int, error) {
	switch mode {
	case 1:
		return 150, nil
	case 2:
		return 1500, nil
	}
	return 0, fmt.Errorf("%w: %d (N is defined for modes 1 and 2)", ErrInvalidMode, mode)
}

// GridSize returns Mx = 2*N(mode)+1, the number of points on [-L, L].
func GridSize(mode int) (int, error) {
	n, err := N(mode)
	if err != nil {
		return 0, err
	}
	return 2*n + 1, nil
}

// SlidingExponent is m in the basal sliding law tau_b = C |u|^(m-1) u.
func SlidingExponent(e Experiment) (float64, error) {
	switch e.Variant() {
	case 'a':
		if e.Valid() {
			return 1.0 / 3.0, nil
		}
	case 'b':
		if e.Valid() {
			return 1.0, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

// YieldStress is C in the basal sliding law, in Pa m^(-1/3) s^(1/3) or Pa m^-1 s.
func YieldStress(e Experiment) (float64, error) {
	switch e.Variant() {
	case 'a':
		if e.Valid() {
			return 7.624e6, nil
		}
	case 'b':
		if e.Valid() {
			return 7.2082e10, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

var (
	softness12 = []float64{
		4.6416e-24, 2.1544e-24, 1.0e-24,
		4.6416e-25, 2.1544e-25, 1.0e-25,
		4.6416e-26, 2.1544e-26, 1.0e-26,
	}
	softness3a = []float64{
		3.0e-25, 2.5e-25, 2.0e-25,
		1.5e-25, 1.0e-25, 5.0e-26,
		2.5e-26, 5.0e-26, 1.0e-25,
		1.5e-25, 2.0e-25, 2.5e-25,
		3.0e-25,
	}
	softness3b = []float64{
		1.6e-24, 1.4e-24, 1.2e-24,
		1.0e-24, 8.0e-25, 6.0e-25,
		4.0e-25, 2.0e-25, 4.0e-25,
		6.0e-25, 8.0e-25, 1.0e-24,
		1.2e-24, 1.4e-24, 1.6e-24,
	}

	runLength3a = []float64{
		3.0e4, 1.5e4, 1.5e4, 1.5e4, 1.5e4, 3.0e4, 3.0e4,
		1.5e4, 1.5e4, 3.0e4, 3.0e4, 3.0e4, 1.5e4,
	}
	runLength3b = []float64{
		3.0e4, 1.5e4, 1.5e4, 1.5e4, 1.5e4, 1.5e4, 1.5e4, 3.0e4,
		1.5e4, 1.5e4, 1.5e4, 1.5e4, 1.5e4, 3.0e4, 1.5e4,
	}
)

func softnessTable(e Experiment) ([]float64, error) {
	switch e {
	case Exp1a, Exp1b, Exp2a, Exp2b:
		return softness12, nil
	case Exp3a:
		return softness3a, nil
	case Exp3b:
		return softness3b, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

func lookup(table []float64, e Experiment, step int) (float64, error) {
	if step < 1 || step > len(table) {
		return 0, fmt.Errorf("%w: %d for experiment %s (want 1..%d)", ErrInvalidStep, step, e, len(table))
	}
	return table[step-1], nil
}

// StepCount is the number of softness steps defined for e.
func StepCount(e Experiment) (int, error) {
	t, err := softnessTable(e)
	if err != nil {
		return 0, err
	}
	return len(t), nil
}

// Softness is the ice softness A in Pa^-3 s^-1 for a step.
func Softness(e Experiment, step int) (float64, error) {
	t, err := softnessTable(e)
	if err != nil {
		return 0, err
	}
	return lookup(t, e, step)
}

// RunLength is the duration of a step in years.
func RunLength(e Experiment, step int) (float64, error) {
	switch e {
	case Exp1a, Exp1b, Exp2a, Exp2b:
		if _, err := lookup(softness12, e, step); err != nil {
			return 0, err
		}
		return 3e4, nil
	case Exp3a:
		return lookup(runLength3a, e, step)
	case Exp3b:
		return lookup(runLength3b, e, step)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

// Retreating reports whether the step belongs to the retreat branch of a
// hysteresis experiment, i.e. its softness is larger than the previous step's.
func Retreating(e Experiment, step int) (bool, error) {
	if e.Family() == '2' {
		return true, nil
	}
	t, err := softnessTable(e)
	if err != nil {
		return false, err
	}
	if _, err := lookup(t, e, step); err != nil {
		return false, err
	}
	if step == 1 {
		return false, nil
	}
	return t[step-1] > t[step-2], nil
}
