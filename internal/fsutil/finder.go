// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), extension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Collect expands a mix of file and directory paths into a sorted,
// de-duplicated list of files carrying one of the given extensions.
// Directories are searched recursively. Files named explicitly must exist
// and carry an accepted extension.
func Collect(paths []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if !hasExtension(path, extensions) {
				return nil, fmt.Errorf("%s: unsupported file type (want %s)", path, strings.Join(extensions, ", "))
			}
			add(path)
			continue
		}

		for _, ext := range extensions {
			found, err := FindFilesByExtension(path, ext)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		}
	}

	slices.Sort(out)
	return out, nil
}

func hasExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
