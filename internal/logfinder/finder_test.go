package logfinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("USERPROFILE", home)
	t.Setenv("HOME", home)
	t.Setenv(EnvLogPath, "")
	t.Setenv(EnvReplayPath, "")
	return home
}

func TestFindLog_AutoDetect(t *testing.T) {
	home := fakeHome(t)
	gameDir := filepath.Join(home, "Documents", "My Games", "Dawn of War II - Retribution")
	require.NoError(t, os.MkdirAll(gameDir, 0755))

	got, err := FindLog("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(gameDir, "Logfiles", "warnings.txt"), got)

	replay, err := FindReplay("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(gameDir, "Playback", "temp.rec"), replay)
}

func TestFindLog_NoGameDir(t *testing.T) {
	fakeHome(t)

	_, err := FindLog("")
	require.ErrorIs(t, err, ErrLogNotFound)
	require.ErrorIs(t, err, ErrGameDirNotFound)

	_, err = FindReplay("")
	require.ErrorIs(t, err, ErrReplayNotFound)
}

func TestFindLog_EnvVar(t *testing.T) {
	fakeHome(t)
	path := filepath.Join(t.TempDir(), "warnings.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	t.Setenv(EnvLogPath, path)

	got, err := FindLog("")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestFindLog_ExplicitWins(t *testing.T) {
	fakeHome(t)
	t.Setenv(EnvLogPath, filepath.Join(t.TempDir(), "env.txt"))

	explicit := filepath.Join(t.TempDir(), "not-yet-created.txt")
	got, err := FindLog(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestFindLog_RejectsDirectory(t *testing.T) {
	fakeHome(t)

	_, err := FindLog(t.TempDir())
	require.ErrorIs(t, err, ErrLogNotFound)

	t.Setenv(EnvReplayPath, t.TempDir())
	_, err = FindReplay("")
	require.ErrorIs(t, err, ErrReplayNotFound)
	assert.Contains(t, err.Error(), EnvReplayPath)
}

func TestDefaultGameDirs(t *testing.T) {
	home := fakeHome(t)

	dirs := DefaultGameDirs()
	require.NotEmpty(t, dirs)
	assert.Equal(t, filepath.Join(home, "Documents", "My Games", "Dawn of War II - Retribution"), dirs[0])
}
