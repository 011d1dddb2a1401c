package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"imgmin.io/cli/internal/core/pipeline"
)

// Resolve expands glob patterns to concrete regular-file paths, preserving
// pattern order and dropping duplicates. Patterns (or literal paths) that
// match nothing are dropped silently; an empty result is a valid no-op run,
// not an error.
func Resolve(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if info, err := os.Stat(pattern); err == nil && info.Mode().IsRegular() {
				add(pattern)
			}
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				add(m)
			}
		}
	}
	return paths, nil
}

// DestPath maps a source path to its location beneath the destination
// directory, mirroring relative structure. Absolute sources and paths that
// climb out of the working tree collapse to their base name.
func DestPath(outDir, src string) string {
	rel := filepath.Clean(src)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(rel)
	}
	return filepath.Join(outDir, rel)
}

// WriteTree persists every result beneath outDir, filling in OutputPath on
// the returned copies. Parent directories are created as needed.
func WriteTree(results []pipeline.FileResult, outDir string) ([]pipeline.FileResult, error) {
	written := make([]pipeline.FileResult, 0, len(results))
	for _, res := range results {
		dest := DestPath(outDir, res.SourcePath)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, res.Data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", dest, err)
		}
		res.OutputPath = dest
		written = append(written, res)
	}
	return written, nil
}

// Overwrite replaces a file's content in place, preserving its mode.
func Overwrite(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("overwrite %s: %w", path, err)
	}
	return nil
}

// StdinPiped reports whether the given file (normally os.Stdin) carries piped
// data rather than an interactive terminal.
func StdinPiped(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice == 0
}
