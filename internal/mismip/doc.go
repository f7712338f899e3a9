// Package mismip holds the constants and closed-form pieces of the MISMIP
// flowline benchmark: experiment identifiers, grid modes, basal sliding and
// ice softness tables, bed topography and the semi-analytic steady-state
// thickness profile used to bootstrap runs.
//
// Every lookup fails with a sentinel error (ErrUnknownExperiment,
// ErrInvalidMode, ErrInvalidStep) instead of guessing a value.
package mismip
