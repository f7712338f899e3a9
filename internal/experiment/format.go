package experiment

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat prints the shortest decimal that round-trips, keeping a ".0"
// on integral values and switching to exponent form outside [1e-4, 1e16).
// PISM reads either form; the fixed shape keeps scripts diffable.
func formatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
