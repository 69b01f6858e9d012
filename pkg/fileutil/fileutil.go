// Package fileutil provides file lookup helpers for script paths.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no directory entry matches the requested name.
var ErrNotFound = errors.New("file not found")

// FindFileCaseInsensitive searches dir for a regular file whose name equals
// filename ignoring case. The first match in directory order wins.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("scripts", "Hello.RCL")
//	// finds "hello.rcl", "HELLO.RCL", "Hello.rcl", ...
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: %s (searched in %s)", ErrNotFound, filename, dir)
}

// ResolvePath returns path unchanged when it exists. Otherwise it looks for a
// file in the same directory whose name differs only in case, so scripts
// written on case-insensitive file systems still resolve.
func ResolvePath(path string) (string, error) {
	_, err := os.Stat(path)
	if err == nil {
		return path, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	found, ferr := FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
	if ferr != nil {
		return "", err
	}
	return found, nil
}
