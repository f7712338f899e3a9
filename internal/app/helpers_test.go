package app

import (
	"bytes"
	"os"
	"testing"
)

// SetupAppTest creates a new app instance with its script and log output
// captured. Bootstrap files go to a temporary directory.
func SetupAppTest(t *testing.T, cfg Config) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	if cfg.Initials == "" {
		cfg.Initials = "ABC"
	}
	if cfg.Model == 0 {
		cfg.Model = 1
	}
	if cfg.Mode == 0 {
		cfg.Mode = 1
	}
	if cfg.Mx == 0 {
		cfg.Mx = 601
	}
	if cfg.BootstrapDir == "" {
		cfg.BootstrapDir = t.TempDir()
	}
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	testApp := NewApp(out, logs, validated)

	t.Cleanup(func() {
		if os.Getenv("MISMIPGEN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}
