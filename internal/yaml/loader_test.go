package yaml

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

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
initials: QRS
executable: "mpiexec -n 4 pism"
semianalytic: true
runs:
  - experiment: 2a
    models: [1, 2]
    modes: [2]
  - experiment: 3a
    modes: [3]
    mx: 1201
    mz: 21
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.yml"), nil, 0o600))

	sweep, err := NewLoader().Load(testContext(), dir)
	require.NoError(t, err)

	assert.Equal(t, "QRS", sweep.Initials)
	assert.Equal(t, "mpiexec -n 4 pism", sweep.Executable)
	require.NotNil(t, sweep.Semianalytic)
	assert.True(t, *sweep.Semianalytic)
	require.Len(t, sweep.Runs, 2)
	assert.Equal(t, &config.Run{Experiment: "2a", Models: []int{1, 2}, Modes: []int{2}}, sweep.Runs[0])
	assert.Equal(t, &config.Run{Experiment: "3a", Modes: []int{3}, Mx: 1201, Mz: 21}, sweep.Runs[1])
}

func TestLoad_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("initals: typo\n"), 0o600))

	_, err := NewLoader().Load(testContext(), path)
	require.ErrorContains(t, err, "failed to decode YAML file")
}
