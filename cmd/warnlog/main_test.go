package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eslreporter/warnlog/internal/reporter"
	"github.com/eslreporter/warnlog/internal/store"
	"github.com/eslreporter/warnlog/pkg/warnlog"
	"github.com/eslreporter/warnlog/pkg/warnlog/report"
)

var (
	testLog    = filepath.Join("testdata", "warnings.txt")
	testReplay = filepath.Join("..", "..", "pkg", "warnlog", "report", "testdata", "replay.json")
)

// resetFlags restores every flag to its default so commands can run more
// than once in the same process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolate clears the user config, the WARNLOG_* environment and every flag
// before a command runs.
func isolate(t *testing.T) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("APPDATA", home)
	for _, env := range []string{"WARNLOG_LOG_PATH", "WARNLOG_REPLAY_PATH", "WARNLOG_HISTORY_PATH", "WARNLOG_REPORT_ENDPOINT"} {
		t.Setenv(env, "")
	}

	resetFlags(rootCmd)
	rootCmd.SetContext(context.Background())
	t.Cleanup(func() {
		_ = closeLog()
		cfg = defaultConfig()
	})
}

// executeCommand runs the root command with args in an isolated
// environment and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolate(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "warnlog dev (commit: none, built: unknown)\n", out)
}

func TestKindsCommand(t *testing.T) {
	out, _, err := executeCommand(t, "kinds")
	require.NoError(t, err)

	kinds := strings.Fields(out)
	assert.Contains(t, kinds, "mission_end")
	assert.Contains(t, kinds, "player_result")
	assert.IsIncreasing(t, kinds)
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "warnlog")

	out, _, err = executeCommand(t, "completion", "powershell")
	require.NoError(t, err)
	assert.Contains(t, out, "Register-ArgumentCompleter")

	_, _, err = executeCommand(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestParseCommand_JSONL(t *testing.T) {
	out, _, err := executeCommand(t, "parse", testLog)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)

	var rec warnlog.MatchRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, uint64(54926186), rec.ID)
	assert.Equal(t, "2p_calderisrefinery", rec.Map)
	assert.Len(t, rec.Players, 2)
}

func TestParseCommand_LatestPretty(t *testing.T) {
	log := filepath.Join("..", "..", "pkg", "warnlog", "testdata", "warnings.txt")
	out, _, err := executeCommand(t, "parse", log, "--latest", "--format", "pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "match 54931002  6p_estia  22,010 frames  finished")
	assert.NotContains(t, out, "54926186")
}

func TestParseCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "parse", testLog, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, _, err = executeCommand(t, "parse", filepath.Join(t.TempDir(), "warnings.txt"))
	assert.ErrorIs(t, err, warnlog.ErrLogNotFound)
}

func TestParseCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand(t, "--log-level", "loud", "parse", testLog)
	assert.ErrorContains(t, err, "unknown log level")
}

func TestReportCommand_DryRun(t *testing.T) {
	out, _, err := executeCommand(t, "report", testLog,
		"--replay-json", testReplay, "--no-replay", "--dry-run", "--dev")
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "54926186", rep.ID)
	assert.Equal(t, "2p_calderisrefinery", rep.Map)
	assert.Equal(t, 1, rep.Winner)
	assert.True(t, rep.Dev)
	assert.Empty(t, rep.Replay)
	require.Len(t, rep.Players, 2)
	assert.Equal(t, "Waaagh", rep.Players[1].Name)
	assert.Equal(t, uint64(76561198012345671), rep.Players[1].SteamID)
}

func TestReportCommand_RequiresReplayJSON(t *testing.T) {
	_, _, err := executeCommand(t, "report", testLog, "--dry-run")
	assert.ErrorIs(t, err, errNoReplayJSON)
}

func TestReportCommand_SendAndHistory(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		var rep report.Report
		if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	db := filepath.Join(t.TempDir(), "history.db")

	out, _, err := executeCommand(t, "report", testLog,
		"--replay-json", testReplay, "--no-replay", "--no-archive", "--endpoint", srv.URL, "--history", db)
	require.NoError(t, err)
	assert.Equal(t, "match 54926186 reported\n", out)
	assert.Equal(t, int32(1), received.Load())

	out, _, err = executeCommand(t, "history", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "54926186")
	assert.Contains(t, out, "2p_calderisrefinery")
	assert.Contains(t, out, "13,034")
	assert.Contains(t, out, statusSent)

	out, _, err = executeCommand(t, "history", "show", "54926186", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "match 54926186")
	assert.Contains(t, out, "winner team 1, report sent")

	_, _, err = executeCommand(t, "history", "delete", "54926186", "--db", db)
	require.NoError(t, err)

	_, _, err = executeCommand(t, "history", "show", "54926186", "--db", db)
	assert.ErrorIs(t, err, store.ErrMatchNotFound)
}

func TestReportCommand_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := executeCommand(t, "report", testLog,
		"--replay-json", testReplay, "--no-replay", "--no-archive", "--endpoint", srv.URL, "--history", db)
	var statusErr *reporter.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)

	out, _, err := executeCommand(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, statusFailed)
}

func TestHistoryCommand_Errors(t *testing.T) {
	_, _, err := executeCommand(t, "history", "list")
	assert.ErrorIs(t, err, errNoHistory)

	_, _, err = executeCommand(t, "history", "show", "abc", "--db", filepath.Join(t.TempDir(), "h.db"))
	assert.ErrorContains(t, err, "invalid match id")
}

func TestReportCommand_ArchivesReplay(t *testing.T) {
	dir := t.TempDir()
	replay := filepath.Join(dir, "temp.rec")
	data := []byte("raw replay bytes")
	require.NoError(t, os.WriteFile(replay, data, 0o644))

	var got report.Report
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	_, _, err := executeCommand(t, "report", testLog,
		"--replay-json", testReplay, "--replay", replay, "--endpoint", srv.URL)
	require.NoError(t, err)

	archived, err := os.ReadFile(filepath.Join(dir, "54926186_2p_calderisrefinery.rec"))
	require.NoError(t, err)
	assert.Equal(t, data, archived)
	assert.Equal(t, base64.StdEncoding.EncodeToString(data), got.Replay)
}

func TestReportCommand_DryRunSkipsArchive(t *testing.T) {
	dir := t.TempDir()
	replay := filepath.Join(dir, "temp.rec")
	require.NoError(t, os.WriteFile(replay, []byte("raw replay bytes"), 0o644))

	_, _, err := executeCommand(t, "report", testLog,
		"--replay-json", testReplay, "--replay", replay, "--dry-run")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "54926186_2p_calderisrefinery.rec"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// lockedBuffer is a bytes.Buffer safe for a running command and the test to
// share.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand_OutputsFinishedMatch(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "warnings.txt")
	f, err := os.Create(logPath)
	require.NoError(t, err)
	defer f.Close()

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("log_path: "+logPath+"\n"), 0o644))

	block, err := os.ReadFile(testLog)
	require.NoError(t, err)

	isolate(t)
	var stdout, stderr lockedBuffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"watch", "--config", configPath, "--settle", "100ms"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	time.Sleep(200 * time.Millisecond)
	_, err = f.Write(block)
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	require.Eventually(t, func() bool {
		return strings.Count(stdout.String(), "\n") >= 1
	}, 5*time.Second, 50*time.Millisecond, "watch printed no match")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 1)
	var rec warnlog.MatchRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, uint64(54926186), rec.ID)
	assert.Equal(t, "2p_calderisrefinery", rec.Map)
	assert.True(t, rec.Complete)
}
