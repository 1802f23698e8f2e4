package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// archiveNameReplacer keeps a map name from escaping the replay directory.
var archiveNameReplacer = strings.NewReplacer(`\`, "_", "/", "_", ":", "_")

// ArchiveName returns the file name a game's replay is archived under:
// "<id>_<map>.rec".
func ArchiveName(g Game) string {
	return fmt.Sprintf("%d_%s.rec", g.ID, archiveNameReplacer.Replace(MapName(g.Map.Path)))
}

// ArchiveReplay copies the replay at src next to itself under ArchiveName
// and returns the path of the copy. An existing archive is overwritten.
//
// The game reuses one replay file for every match, so the copy is the only
// replay left once the next match starts.
func ArchiveReplay(src string, g Game) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening replay: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(filepath.Dir(src), ArchiveName(g))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("creating replay archive: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("copying replay: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing replay archive: %w", err)
	}
	return dst, nil
}
