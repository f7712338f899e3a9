package mismip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSize(t *testing.T) {
	testCases := []struct {
		mode      int
		expected  int
		expectErr bool
	}{
		{mode: 1, expected: 301},
		{mode: 2, expected: 3001},
		{mode: 3, expectErr: true},
		{mode: 0, expectErr: true},
	}

	for _, tc := range testCases {
		mx, err := GridSize(tc.mode)
		if tc.expectErr {
			require.ErrorIs(t, err, ErrInvalidMode)
			continue
		}
		require.NoError(t, err)
		n, err := N(tc.mode)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, mx)
		assert.Equal(t, 2*n+1, mx)
		assert.Equal(t, 1, mx%2, "Mx must be odd")
	}
}

func TestParseExperiment(t *testing.T) {
	for _, e := range Experiments {
		got, err := ParseExperiment(string(e))
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	_, err := ParseExperiment("4a")
	require.ErrorIs(t, err, ErrUnknownExperiment)
	_, err = ParseExperiment("")
	require.ErrorIs(t, err, ErrUnknownExperiment)
}

func TestAdvance(t *testing.T) {
	assert.Equal(t, Exp1a, Exp2a.Advance())
	assert.Equal(t, Exp1b, Exp2b.Advance())
	assert.Equal(t, Exp3a, Exp3a.Advance())
}

func TestSlidingLaw(t *testing.T) {
	m, err := SlidingExponent(Exp2a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3.0, m, 1e-15)

	m, err = SlidingExponent(Exp3b)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m)

	c, err := YieldStress(Exp1a)
	require.NoError(t, err)
	assert.Equal(t, 7.624e6, c)

	c, err = YieldStress(Exp1b)
	require.NoError(t, err)
	assert.Equal(t, 7.2082e10, c)

	_, err = SlidingExponent("1c")
	require.ErrorIs(t, err, ErrUnknownExperiment)
	_, err = YieldStress("xb")
	require.ErrorIs(t, err, ErrUnknownExperiment)
}

func TestStepTables(t *testing.T) {
	expected := map[Experiment]int{Exp1a: 9, Exp1b: 9, Exp2a: 9, Exp2b: 9, Exp3a: 13, Exp3b: 15}
	for e, n := range expected {
		got, err := StepCount(e)
		require.NoError(t, err)
		assert.Equal(t, n, got, "experiment %s", e)

		for step := 1; step <= n; step++ {
			a, err := Softness(e, step)
			require.NoError(t, err)
			assert.Positive(t, a)

			length, err := RunLength(e, step)
			require.NoError(t, err)
			assert.Contains(t, []float64{1.5e4, 3e4}, length)
		}

		_, err = Softness(e, 0)
		require.ErrorIs(t, err, ErrInvalidStep)
		_, err = Softness(e, n+1)
		require.ErrorIs(t, err, ErrInvalidStep)
		_, err = RunLength(e, n+1)
		require.ErrorIs(t, err, ErrInvalidStep)
	}

	a, err := Softness(Exp1a, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.6416e-24, a)

	length, err := RunLength(Exp3a, 2)
	require.NoError(t, err)
	assert.Equal(t, 1.5e4, length)
}

func TestRetreating(t *testing.T) {
	r, err := Retreating(Exp3a, 7)
	require.NoError(t, err)
	assert.False(t, r)

	r, err = Retreating(Exp3a, 8)
	require.NoError(t, err)
	assert.True(t, r)

	r, err = Retreating(Exp2b, 3)
	require.NoError(t, err)
	assert.True(t, r)

	_, err = Retreating(Exp3b, 16)
	require.ErrorIs(t, err, ErrInvalidStep)
}

func TestBed(t *testing.T) {
	d, err := BedDepth(Exp1a, 0)
	require.NoError(t, err)
	assert.Equal(t, -720.0, d)

	d, err = BedDepth(Exp1a, -7.5e5)
	require.NoError(t, err)
	assert.InDelta(t, 58.5, d, 1e-9)

	d, err = BedDepth(Exp3a, 0)
	require.NoError(t, err)
	assert.Equal(t, -729.0, d)

	// Slope matches a centred finite difference.
	for _, e := range []Experiment{Exp1b, Exp3b} {
		x, h := 9e5, 1.0
		lo, _ := BedDepth(e, x-h)
		hi, _ := BedDepth(e, x+h)
		s, err := BedSlope(e, x)
		require.NoError(t, err)
		assert.InDelta(t, (hi-lo)/(2*h), s, 1e-9)
	}

	_, err = BedDepth("5a", 0)
	require.ErrorIs(t, err, ErrUnknownExperiment)
}

func TestX(t *testing.T) {
	xs := X(301)
	require.Len(t, xs, 301)
	assert.Equal(t, -L(), xs[0])
	assert.Equal(t, L(), xs[300])
	assert.InDelta(t, 0, xs[150], 1e-6)
	assert.InDelta(t, 12e3, xs[151]-xs[150], 1e-6)

	assert.Nil(t, X(0))
	assert.Equal(t, []float64{0}, X(1))
}

func TestGroundingLine(t *testing.T) {
	prev := 0.0
	for step := 1; step <= 9; step++ {
		xg, err := GroundingLine(Exp1a, step)
		require.NoError(t, err)

		depth, err := BedDepth(Exp1a, xg)
		require.NoError(t, err)
		assert.Positive(t, depth, "grounding line must be marine")
		assert.Less(t, xg, L())
		assert.Greater(t, xg, prev, "stiffer ice must advance the grounding line (step %d)", step)
		prev = xg

		p, err := newParams(Exp1a, step)
		require.NoError(t, err)
		f, ok := p.mismatch(xg)
		require.True(t, ok)
		assert.InDelta(t, 0, f, 1e-6)
	}

	_, err := GroundingLine(Exp1a, 10)
	require.ErrorIs(t, err, ErrInvalidStep)
}

func TestThickness(t *testing.T) {
	xs := X(301)
	thk, err := Thickness(Exp1b, 4, xs)
	require.NoError(t, err)
	require.Len(t, thk, len(xs))

	xg, err := GroundingLine(Exp1b, 4)
	require.NoError(t, err)

	for i := range xs {
		assert.False(t, math.IsNaN(thk[i]), "NaN at x=%g", xs[i])
		assert.Positive(t, thk[i], "x=%g", xs[i])
		assert.InDelta(t, thk[i], thk[len(xs)-1-i], 1e-6, "profile must be symmetric")
	}

	// The surface is highest at the divide.
	mid := len(xs) / 2
	d0, _ := BedDepth(Exp1b, xs[mid])
	d1, _ := BedDepth(Exp1b, xs[mid+1])
	assert.Greater(t, thk[mid]-d0, thk[mid+1]-d1)

	// Continuous across the grounding line.
	depth, err := BedDepth(Exp1b, xg)
	require.NoError(t, err)
	hf := depth * RhoW() / RhoI()
	around, err := Thickness(Exp1b, 4, []float64{xg - 1, xg + 1})
	require.NoError(t, err)
	assert.InDelta(t, hf, around[0], 1)
	assert.InDelta(t, hf, around[1], 1)

	_, err = Thickness(Exp1b, 0, xs)
	require.ErrorIs(t, err, ErrInvalidStep)
}
