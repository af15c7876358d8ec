package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrDirNotFound is returned when a directory to scan does not exist.
var ErrDirNotFound = errors.New("directory not found")

// Entry describes a single file found by FindFiles.
type Entry struct {
	// Path is the absolute path of the file
	Path string
	// Name is the base name, used as the sort key
	Name    string
	Size    int64
	ModTime time.Time
}

// FindFiles lists the regular files in dir whose extension matches one of exts.
// Symlinks are followed; links to anything but a regular file are skipped.
//
// Extension matching is case-insensitive, so ".MP4" matches ".mp4". The result is
// sorted lexicographically by base name; for files named with a leading
// timestamp this is chronological order. Subdirectories are not descended into.
//
// An empty exts slice matches every regular file.
func FindFiles(dir string, exts []string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	dirEntries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	wanted := make(map[string]bool, len(exts))
	for _, ext := range NormalizeExtensions(exts) {
		wanted[ext] = true
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if len(wanted) > 0 && !wanted[strings.ToLower(filepath.Ext(de.Name()))] {
			continue
		}

		// Stat follows symlinks, so linked clips count as their targets.
		path := filepath.Join(absDir, de.Name())
		fi, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // Dangling symlink
			}
			return nil, fmt.Errorf("failed to stat %s: %w", de.Name(), err)
		}
		if !fi.Mode().IsRegular() {
			continue
		}

		entries = append(entries, Entry{
			Path:    path,
			Name:    de.Name(),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// WriteFile writes content to path, creating parent directories as needed.
//
// The content is written to a temporary file next to path and then renamed
// into place, so readers never observe a partially written file.
func WriteFile(path string, content []byte, perm os.FileMode) error {
	// Create parent directories
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// Write to temporary file first
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmpPath, err)
	}

	// Rename to final path (atomic on most systems)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file
		return fmt.Errorf("failed to rename %s to %s: %w", tmpPath, path, err)
	}

	return nil
}

// FileExists reports whether a regular file exists at path.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.Mode().IsRegular(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// NormalizeExtensions lower-cases extensions and ensures each starts with a dot.
// Blank entries are dropped.
func NormalizeExtensions(exts []string) []string {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return normalized
}
