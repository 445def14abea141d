package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// CollectPrograms lists program documents under root. Each pattern is a glob relative to
// root; a match that is a directory is searched recursively. With no patterns the whole
// root is searched. Hidden directories are skipped.
func CollectPrograms(root string, patterns []string) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("collect: empty root")
	}
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	var found []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
		if err != nil {
			return nil, fmt.Errorf("collect: pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("collect: %w", err)
			}
			if !info.IsDir() {
				if IsProgramFile(match) {
					found = append(found, match)
				}
				continue
			}
			files, err := walkPrograms(match)
			if err != nil {
				return nil, err
			}
			found = append(found, files...)
		}
	}
	found = lo.Uniq(lo.Map(found, func(path string, _ int) string { return filepath.Clean(path) }))
	slices.Sort(found)
	return found, nil
}

// IsProgramFile reports whether path names a program document.
func IsProgramFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), ProgramExtension)
}

func walkPrograms(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsProgramFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect: walk %s: %w", dir, err)
	}
	return files, nil
}
