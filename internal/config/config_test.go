package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{
	EnvLogPath, EnvReplayPath, EnvReplayJSON, EnvReportEndpoint, EnvReportTimeout,
	EnvReportDev, EnvHistoryPath, EnvWatchSettle, EnvWatchPoll, EnvLogLevel, EnvLogFile,
}

// isolate clears WARNLOG_* variables and points the user config dir at an
// empty directory. Variables are restored when the test ends.
func isolate(t *testing.T) {
	t.Helper()
	for _, env := range allEnv {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := load("", "")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 5*time.Second, cfg.Watch.Settle)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAML(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", `
log_path: C:\Users\me\Documents\My Games\Dawn of War II - Retribution\Logfiles\warnings.txt
replay_json: replay.json
report:
  endpoint: https://ladder.example.com/report
  timeout: 10s
  dev: true
history:
  path: history.db
watch:
  settle: 2s
  poll: true
log:
  level: debug
  file: warnlog.log
`)

	cfg, err := load(path, "")
	require.NoError(t, err)
	assert.Equal(t, `C:\Users\me\Documents\My Games\Dawn of War II - Retribution\Logfiles\warnings.txt`, cfg.LogPath)
	assert.Equal(t, "replay.json", cfg.ReplayJSON)
	assert.Equal(t, "https://ladder.example.com/report", cfg.Report.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Report.Timeout)
	assert.True(t, cfg.Report.Dev)
	assert.Equal(t, "history.db", cfg.History.Path)
	assert.Equal(t, 2*time.Second, cfg.Watch.Settle)
	assert.True(t, cfg.Watch.Poll)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "warnlog.log", cfg.Log.File)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", "log:\n  level: debug\nwatch:\n  settle: 2s\n")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvWatchSettle, "750ms")
	t.Setenv(EnvWatchPoll, "true")
	t.Setenv(EnvHistoryPath, "/tmp/history.db")

	cfg, err := load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 750*time.Millisecond, cfg.Watch.Settle)
	assert.True(t, cfg.Watch.Poll)
	assert.Equal(t, "/tmp/history.db", cfg.History.Path)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	dotenv := writeFile(t, ".env", "WARNLOG_REPORT_DEV=true\nWARNLOG_LOG_FILE=debug.log\n")

	cfg, err := load("", dotenv)
	require.NoError(t, err)
	assert.True(t, cfg.Report.Dev)
	assert.Equal(t, "debug.log", cfg.Log.File)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	isolate(t)

	_, err := load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
}

func TestLoad_DefaultPath(t *testing.T) {
	isolate(t)
	def := DefaultPath()
	require.NotEmpty(t, def)
	require.NoError(t, os.MkdirAll(filepath.Dir(def), 0755))
	require.NoError(t, os.WriteFile(def, []byte("log:\n  level: error\n"), 0644))

	cfg, err := load("", "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   map[string]string
		field string
	}{
		{name: "bad level", yaml: "log:\n  level: verbose\n", field: "log.level"},
		{name: "zero timeout", yaml: "report:\n  timeout: 0s\n", field: "report.timeout"},
		{name: "negative settle", yaml: "watch:\n  settle: -1s\n", field: "watch.settle"},
		{name: "relative endpoint", yaml: "report:\n  endpoint: /report\n", field: "report.endpoint"},
		{name: "bad env duration", env: map[string]string{EnvReportTimeout: "soon"}, field: EnvReportTimeout},
		{name: "bad env bool", env: map[string]string{EnvWatchPoll: "sometimes"}, field: EnvWatchPoll},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "config.yaml", tt.yaml)
			}

			_, err := load(path, "")
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	isolate(t)
	path := writeFile(t, "config.yaml", "log_pth: typo.txt\n")

	_, err := load(path, "")
	require.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoad_MissingFile(t *testing.T) {
	isolate(t)

	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBytes(t *testing.T) {
	cfg, err := LoadBytes([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	_, err = LoadBytes(make([]byte, MaxConfigFileSize+1))
	require.ErrorContains(t, err, "too large")
}
