package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, dir string, name string, data string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "/datadir", cfg.Fio.Directory)
	assert.Equal(t, "/datadir", cfg.Vdbench.Anchor)
	assert.Equal(t, 10, cfg.Memcheck.Samples)
	assert.Equal(t, 20*time.Second, cfg.Memcheck.Interval)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := writeFile(t, t.TempDir(), "benchgen.yaml", `
logging:
  level: debug
fio:
  directory: /mnt/fio
vdbench:
  depth: 2
memcheck:
  samples: 3
  interval: 1s
  source: gopsutil
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, zapcore.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "/mnt/fio", cfg.Fio.Directory)
	assert.Equal(t, "job", cfg.Fio.Section)
	assert.Equal(t, 2, cfg.Vdbench.Depth)
	assert.Equal(t, 1, cfg.Vdbench.Width)
	assert.Equal(t, 3, cfg.Memcheck.Samples)
	assert.Equal(t, time.Second, cfg.Memcheck.Interval)
	assert.Equal(t, 30.0, cfg.Memcheck.Threshold)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"removed section": "fio: null\n",
		"empty suffix":    "vdbench:\n  suffix: \"\"\n",
		"empty section":   "fio:\n  section: \"\"\n",
		"bad source":      "memcheck:\n  source: procfs\n",
		"bad yaml":        "fio: [\n",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "benchgen.yaml", data)
			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDataDir, "/mnt/bench")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "/mnt/bench", cfg.Fio.Directory)
	assert.Equal(t, "/mnt/bench", cfg.Vdbench.Anchor)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BENCHGEN_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("BENCHGEN_TEST_VALUE"))

	path := writeFile(t, dir, ".env", "BENCHGEN_TEST_VALUE=loaded\n")
	require.NoError(t, LoadEnvFile(path, true))
	assert.Equal(t, "loaded", os.Getenv("BENCHGEN_TEST_VALUE"))

	missing := filepath.Join(dir, "missing.env")
	require.NoError(t, LoadEnvFile(missing, false))
	require.Error(t, LoadEnvFile(missing, true))
}
