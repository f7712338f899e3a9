package mismip

import (
	"fmt"
	"math"
	"sort"
)

const (
	bedScale     = 7.5e5  // horizontal scale of the MISMIP bed, m
	scanSamples  = 20000  // grounding line search resolution on (0, L]
	bisectSteps  = 200    // upper bound on bisection iterations
	maxODEStep   = 1000.0 // RK4 step for the grounded profile, m
	bisectXTol   = 1e-6   // m
	uniformThick = 10.0   // m
)

// UniformThickness is the ice thickness used when the semi-analytic profile
// is disabled.
func UniformThickness() float64 { return uniformThick }

// BedDepth is the depth of the bed below sea level at distance x from the
// divide. Positive values are below sea level.
func BedDepth(e Experiment, x float64) (float64, error) {
	x = math.Abs(x)
	switch e.Family() {
	case '1', '2':
		if e.Valid() {
			return -720 + 778.5*(x/bedScale), nil
		}
	case '3':
		if e.Valid() {
			xx := x / bedScale
			return -(729 - 2184.8*math.Pow(xx, 2) + 1031.72*math.Pow(xx, 4) - 151.72*math.Pow(xx, 6)), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

// BedSlope is d(BedDepth)/dx for x >= 0.
func BedSlope(e Experiment, x float64) (float64, error) {
	x = math.Abs(x)
	switch e.Family() {
	case '1', '2':
		if e.Valid() {
			return 778.5 / bedScale, nil
		}
	case '3':
		if e.Valid() {
			xx := x / bedScale
			return -(-2*2184.8*xx + 4*1031.72*math.Pow(xx, 3) - 6*151.72*math.Pow(xx, 5)) / bedScale, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownExperiment, string(e))
}

// X returns mx evenly spaced points on [-L, L].
func X(mx int) []float64 {
	if mx <= 0 {
		return nil
	}
	if mx == 1 {
		return []float64{0}
	}
	xs := make([]float64, mx)
	dx := 2 * halfLength / float64(mx-1)
	for i := range xs {
		xs[i] = -halfLength + float64(i)*dx
	}
	xs[mx-1] = halfLength
	return xs
}

// params bundles the per-step constants used by the profile computations.
type params struct {
	e    Experiment
	m, c float64
	a    float64 // softness
}

func newParams(e Experiment, step int) (params, error) {
	m, err := SlidingExponent(e)
	if err != nil {
		return params{}, err
	}
	c, err := YieldStress(e)
	if err != nil {
		return params{}, err
	}
	a, err := Softness(e, step)
	if err != nil {
		return params{}, err
	}
	return params{e: e, m: m, c: c, a: a}, nil
}

// floatation is the thickness at which ice of density rho_i floats in
// water of the given depth.
func floatation(depth float64) float64 {
	return depth * seaWaterDens / iceDensity
}

// flux mismatch at x: the balance flux a*x minus the boundary-layer flux of
// Schoof (2007) evaluated with floatation thickness. Zeros are grounding lines.
func (p params) mismatch(x float64) (float64, bool) {
	depth, _ := BedDepth(p.e, x)
	if depth <= 0 {
		return 0, false
	}
	n := glenExponent
	r := iceDensity / seaWaterDens
	hf := floatation(depth)
	k := p.a * math.Pow(iceDensity*gravity, n+1) * math.Pow(1-r, n) / (math.Pow(4, n) * p.c)
	q := math.Pow(k, 1/(p.m+1)) * math.Pow(hf, (p.m+n+3)/(p.m+1))
	return Accumulation()*x - q, true
}

func (p params) bisect(lo, hi float64) float64 {
	flo, _ := p.mismatch(lo)
	for i := 0; i < bisectSteps && hi-lo > bisectXTol; i++ {
		mid := 0.5 * (lo + hi)
		fmid, _ := p.mismatch(mid)
		if (fmid > 0) == (flo > 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// GroundingLine returns the steady-state grounding line position for a step.
// When the bed admits several positions, advancing steps take the one
// closest to the divide and retreating steps the one furthest from it.
func GroundingLine(e Experiment, step int) (float64, error) {
	p, err := newParams(e, step)
	if err != nil {
		return 0, err
	}
	retreat, err := Retreating(e, step)
	if err != nil {
		return 0, err
	}

	var roots []float64
	dx := halfLength / scanSamples
	prevX, prevF, havePrev, marine := 0.0, 0.0, false, false
	for i := 1; i <= scanSamples; i++ {
		x := float64(i) * dx
		f, ok := p.mismatch(x)
		if !ok {
			havePrev = false
			continue
		}
		marine = true
		if havePrev && (f > 0) != (prevF > 0) {
			roots = append(roots, p.bisect(prevX, x))
		}
		prevX, prevF, havePrev = x, f, true
	}
	if len(roots) == 0 {
		if marine && prevF > 0 {
			// Balance flux exceeds the boundary-layer flux everywhere: the
			// sheet is grounded across the whole domain.
			return halfLength, nil
		}
		return 0, fmt.Errorf("no grounding line on (0, %g] for experiment %s step %d", halfLength, e, step)
	}
	if retreat {
		return roots[len(roots)-1], nil
	}
	return roots[0], nil
}

// slope is dh/dx of the grounded sheet where basal drag balances the
// driving stress.
func (p params) slope(x, h float64) float64 {
	bx, _ := BedSlope(p.e, x)
	s := Accumulation() * math.Abs(x)
	return bx - (p.c/(iceDensity*gravity))*math.Pow(s, p.m)/math.Pow(h, p.m+1)
}

func (p params) rk4(x0, x1, h float64) float64 {
	span := x1 - x0
	steps := int(math.Ceil(math.Abs(span) / maxODEStep))
	if steps == 0 {
		return h
	}
	dx := span / float64(steps)
	x := x0
	for i := 0; i < steps; i++ {
		k1 := p.slope(x, h)
		k2 := p.slope(x+dx/2, h+dx/2*k1)
		k3 := p.slope(x+dx/2, h+dx/2*k2)
		k4 := p.slope(x+dx, h+dx*k3)
		h += dx / 6 * (k1 + 2*k2 + 2*k3 + k4)
		x += dx
	}
	return h
}

// shelf is the thickness of the unconfined floating shelf downstream of the
// grounding line xg with grounding line thickness hf.
func (p params) shelf(x, xg, hf float64) float64 {
	n := glenExponent
	a := Accumulation()
	r := iceDensity / seaWaterDens
	q0 := a * xg
	q := q0 + a*(x-xg)
	k := math.Pow((1-r)*iceDensity*gravity/4, n) * p.a
	return hf * q / math.Pow(math.Pow(q0, n+1)+math.Pow(hf, n+1)*k*(math.Pow(q, n+1)-math.Pow(q0, n+1))/a, 1/(n+1))
}

// Thickness evaluates the semi-analytic steady-state profile at each x.
// The profile is symmetric about the divide at x = 0.
func Thickness(e Experiment, step int, xs []float64) ([]float64, error) {
	p, err := newParams(e, step)
	if err != nil {
		return nil, err
	}
	xg, err := GroundingLine(e, step)
	if err != nil {
		return nil, err
	}
	depth, err := BedDepth(e, xg)
	if err != nil {
		return nil, err
	}
	hf := floatation(depth)

	out := make([]float64, len(xs))

	// Grounded points, integrated inward from the grounding line.
	var grounded []int
	for i, x := range xs {
		ax := math.Abs(x)
		if ax < xg {
			grounded = append(grounded, i)
			continue
		}
		out[i] = p.shelf(ax, xg, hf)
	}
	sort.SliceStable(grounded, func(i, j int) bool {
		return math.Abs(xs[grounded[i]]) > math.Abs(xs[grounded[j]])
	})
	cur, h := xg, hf
	for _, i := range grounded {
		ax := math.Abs(xs[i])
		h = p.rk4(cur, ax, h)
		cur = ax
		out[i] = h
	}
	return out, nil
}
