// Package logfinder locates the Dawn of War II: Retribution log and replay.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Environment variables that override auto-detection.
const (
	EnvLogPath    = "WARNLOG_LOG_PATH"
	EnvReplayPath = "WARNLOG_REPLAY_PATH"
)

// Sentinel errors.
var (
	ErrGameDirNotFound = errors.New("game documents directory not found")
	ErrLogNotFound     = errors.New("warnings.txt not found")
	ErrReplayNotFound  = errors.New("replay not found")
)

const gameDirName = "Dawn of War II - Retribution"

// DefaultGameDirs returns candidate game documents directories in priority
// order. The game only runs on Windows but keeps its files under the user's
// documents folder, which Proton mirrors on Linux.
func DefaultGameDirs() []string {
	var homes []string
	if p := os.Getenv("USERPROFILE"); p != "" {
		homes = append(homes, p)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" && (len(homes) == 0 || homes[0] != h) {
		homes = append(homes, h)
	}

	dirs := make([]string, 0, len(homes)*2)
	for _, home := range homes {
		dirs = append(dirs,
			filepath.Join(home, "Documents", "My Games", gameDirName),
			filepath.Join(home, "My Documents", "My Games", gameDirName),
		)
	}
	return dirs
}

// LogPath returns the warnings.txt path inside a game documents directory.
func LogPath(gameDir string) string {
	return filepath.Join(gameDir, "Logfiles", "warnings.txt")
}

// ReplayPath returns the path of the last played match's replay inside a
// game documents directory.
func ReplayPath(gameDir string) string {
	return filepath.Join(gameDir, "Playback", "temp.rec")
}

// FindGameDir returns the first existing directory of DefaultGameDirs.
func FindGameDir() (string, error) {
	for _, dir := range DefaultGameDirs() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", ErrGameDirNotFound
}

// FindLog returns the warnings.txt path.
//
// Priority:
//  1. explicit (if non-empty)
//  2. WARNLOG_LOG_PATH environment variable
//  3. Auto-detect from DefaultGameDirs()
//
// Explicit and environment paths are returned even if the file does not
// exist yet, so a watcher can wait for the game to create it. Auto-detected
// paths require the game documents directory to exist.
func FindLog(explicit string) (string, error) {
	return find(explicit, EnvLogPath, LogPath, ErrLogNotFound)
}

// FindReplay returns the replay path, with the same priority as FindLog
// using WARNLOG_REPLAY_PATH.
func FindReplay(explicit string) (string, error) {
	return find(explicit, EnvReplayPath, ReplayPath, ErrReplayNotFound)
}

func find(explicit, env string, inGameDir func(string) string, notFound error) (string, error) {
	if explicit != "" {
		return checkPath(explicit, notFound)
	}
	if p := os.Getenv(env); p != "" {
		path, err := checkPath(p, notFound)
		if err != nil {
			return "", fmt.Errorf("%s: %w", env, err)
		}
		return path, nil
	}

	dir, err := FindGameDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", notFound, err)
	}
	return inGameDir(dir), nil
}

// checkPath rejects paths that exist but are not regular files.
func checkPath(path string, notFound error) (string, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return path, nil
	case err != nil:
		return "", fmt.Errorf("%w: %w", notFound, err)
	case !info.Mode().IsRegular():
		return "", fmt.Errorf("%w: %s is not a regular file", notFound, path)
	}
	return path, nil
}
