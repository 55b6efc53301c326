// Package integration provides end-to-end tests that exercise the built
// lifelists binary via os/exec against isolated temp directories.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	lifelistsBin string
	buildOnce    sync.Once
	buildErr     error
	buildTmpDir  string
)

// ensureBinary builds the lifelists binary once and returns the path to it.
func ensureBinary(t *testing.T) string {
	t.Helper()
	buildOnce.Do(func() {
		buildTmpDir, buildErr = os.MkdirTemp("", "lifelists-cli-test-*")
		if buildErr != nil {
			return
		}
		binPath := filepath.Join(buildTmpDir, "lifelists")
		cmd := exec.Command("go", "build", "-o", binPath, "./cmd/lifelists")
		cmd.Dir = projectRoot()
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		buildErr = cmd.Run()
		if buildErr == nil {
			lifelistsBin = binPath
		}
	})
	require.NoError(t, buildErr, "build lifelists binary")
	return lifelistsBin
}

// projectRoot returns the absolute path to the project root by walking up
// from the working directory until go.mod is found.
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("go.mod not found")
		}
		dir = parent
	}
}

// testEnv is one isolated config and data directory pair.
type testEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
}

// newTestEnv creates an isolated environment. The config directory starts
// empty; the first command run populates it with the default config.json.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir := t.TempDir()
	return &testEnv{
		t:         t,
		ConfigDir: filepath.Join(tempDir, "config"),
		DataDir:   filepath.Join(tempDir, "data"),
	}
}

// writeConfig replaces the environment's config.json.
func (e *testEnv) writeConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.ConfigDir, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.ConfigDir, "config.json"), []byte(content), 0o644))
}

// run executes the lifelists binary against this environment's directories.
func (e *testEnv) run(args ...string) (stdout, stderr string, exitCode int) {
	e.t.Helper()
	bin := ensureBinary(e.t)
	fullArgs := append([]string{"--config-dir", e.ConfigDir, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(bin, fullArgs...)
	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("run lifelists: %v", err)
		}
	}
	return stdout, stderr, exitCode
}

// mustRun executes the binary and fails the test on a non-zero exit.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	stdout, stderr, code := e.run(args...)
	require.Equal(e.t, 0, code, "lifelists %s failed: stdout=%s stderr=%s",
		strings.Join(args, " "), stdout, stderr)
	return stdout
}
