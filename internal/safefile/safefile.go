// Package safefile reads snapshots of files that another process keeps writing.
package safefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Sentinel errors.
var (
	// ErrNotRegularFile is returned for FIFOs, devices, sockets and directories.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrTooLarge is returned when a file exceeds the read limit.
	ErrTooLarge = errors.New("file too large")
)

// OpenRegular opens path if it is a regular file. Symlinks are followed; the
// game writes its logs under the user's Documents folder, which is commonly
// redirected.
//
// The path is checked before opening, so a FIFO never blocks the open, and
// the descriptor is checked again after opening in case the file was swapped.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	pathInfo, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if !pathInfo.Mode().IsRegular() {
		return nil, nil, ErrNotRegularFile
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, ErrNotRegularFile
	}

	return f, info, nil
}

// ReadAll reads the current content of a regular file, up to limit bytes.
// A limit <= 0 means unlimited.
//
// The file may still be growing while it is read: only the bytes present
// when reading starts are guaranteed, anything appended later is read
// opportunistically until EOF or the limit.
func ReadAll(path string, limit int64) ([]byte, error) {
	f, info, err := OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if limit > 0 && info.Size() > limit {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), limit)
	}

	var r io.Reader = f
	if limit > 0 {
		// Read one byte past the limit to detect growth during the read
		r = io.LimitReader(f, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
