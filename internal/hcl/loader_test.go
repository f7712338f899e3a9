package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mismipgen/internal/config"
	"github.com/vk/mismipgen/internal/ctxlog"
	"go.uber.org/zap"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), zap.NewNop())
}

func writeHCL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeHCL(t, dir, "sweep.hcl", `
initials     = env.SWEEP_INITIALS
executable   = "$PISM_DO mpiexec -n 8 $${PISM_BIN}pism"
semianalytic = false

run "1a" {
  models = [1, 2]
  modes  = [1, 3]
  mx     = 401
}

run "3b" {
  step = 7
}
`)

	loader := &Loader{environ: func() []string { return []string{"SWEEP_INITIALS=XYZ", "MALFORMED"} }}
	sweep, err := loader.Load(testContext(), path)
	require.NoError(t, err)

	assert.Equal(t, "XYZ", sweep.Initials)
	assert.Equal(t, "$PISM_DO mpiexec -n 8 ${PISM_BIN}pism", sweep.Executable)
	require.NotNil(t, sweep.Semianalytic)
	assert.False(t, *sweep.Semianalytic)

	require.Len(t, sweep.Runs, 2)
	assert.Equal(t, &config.Run{Experiment: "1a", Models: []int{1, 2}, Modes: []int{1, 3}, Mx: 401}, sweep.Runs[0])
	assert.Equal(t, &config.Run{Experiment: "3b", Step: 7}, sweep.Runs[1])
}

func TestLoad_DirectoryMergesFiles(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", `
initials = "AB"
run "1b" {}
`)
	writeHCL(t, dir, "b.hcl", `
run "2b" {
  models = [2]
}
`)
	writeHCL(t, dir, "ignored.txt", `not hcl`)

	sweep, err := NewLoader().Load(testContext(), dir)
	require.NoError(t, err)
	assert.Equal(t, "AB", sweep.Initials)
	assert.Nil(t, sweep.Semianalytic)
	require.Len(t, sweep.Runs, 2)
	assert.Equal(t, "1b", sweep.Runs[0].Experiment)
	assert.Equal(t, "2b", sweep.Runs[1].Experiment)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	broken := writeHCL(t, dir, "broken.hcl", `run "1a" {`)
	_, err := NewLoader().Load(testContext(), broken)
	require.ErrorContains(t, err, "failed to parse")

	unknown := writeHCL(t, dir, "unknown.hcl", `colour = "blue"`)
	_, err = NewLoader().Load(testContext(), unknown)
	require.ErrorContains(t, err, "failed to decode")

	other := t.TempDir()
	first := writeHCL(t, other, "first.hcl", `initials = "AA"`)
	second := writeHCL(t, other, "second.hcl", `initials = "BB"`)
	_, err = NewLoader().Load(testContext(), first, second)
	require.ErrorIs(t, err, config.ErrConflict)

	_, err = NewLoader().Load(testContext(), filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
}
