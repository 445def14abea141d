package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"

	"simple/interpreter-go/pkg/driver"
)

// sourceInstaller resolves the manifest's program sources into lockfile entries.
type sourceInstaller struct {
	manifest *driver.Manifest
	cacheDir string
	git      *gitFetcher
}

func newSourceInstaller(manifest *driver.Manifest, cacheDir string) *sourceInstaller {
	return &sourceInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		git:      newGitFetcher(cacheDir),
	}
}

// Install refreshes lock so it holds exactly one entry per declared source. It reports
// whether lock changed along with one log line per source.
func (i *sourceInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	if lock == nil {
		return false, nil, fmt.Errorf("deps: nil lockfile")
	}
	var logs []string
	changed := false
	resolved := make([]*driver.LockedSource, 0, len(i.manifest.Sources))
	for _, name := range i.manifest.SourceNames() {
		entry, err := i.resolve(name, i.manifest.Sources[name])
		if err != nil {
			return false, logs, err
		}
		previous, ok := lock.Find(name)
		switch {
		case !ok:
			changed = true
			logs = append(logs, fmt.Sprintf("Locked %s %s (%d programs)", entry.Name, entry.Version, len(entry.Programs)))
		case !lockedSourceEqual(previous, entry):
			changed = true
			logs = append(logs, fmt.Sprintf("Updated %s %s -> %s", entry.Name, previous.Version, entry.Version))
		default:
			logs = append(logs, fmt.Sprintf("Unchanged %s %s", entry.Name, entry.Version))
		}
		resolved = append(resolved, entry)
	}

	declared := lo.Associate(resolved, func(src *driver.LockedSource) (string, struct{}) { return src.Name, struct{}{} })
	for _, stale := range lock.Sources {
		if stale == nil {
			continue
		}
		if _, ok := declared[stale.Name]; !ok {
			changed = true
			logs = append(logs, fmt.Sprintf("Removed %s", stale.Name))
		}
	}
	lock.Sources = resolved
	return changed, logs, nil
}

func (i *sourceInstaller) resolve(name string, spec *driver.SourceSpec) (*driver.LockedSource, error) {
	if spec == nil {
		return nil, fmt.Errorf("source %q: empty specification", name)
	}
	entry := &driver.LockedSource{Name: sanitizeName(name)}
	var base string
	switch {
	case strings.TrimSpace(spec.Path) != "":
		base = resolveSourcePath(i.manifest.Root(), spec.Path)
		info, err := os.Stat(base)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("source %q: %s is not a directory", name, base)
		}
		entry.Version = "path"
		entry.Source = "path:" + filepath.ToSlash(spec.Path)
	case strings.TrimSpace(spec.Git) != "":
		fetched, err := i.git.Fetch(name, spec)
		if err != nil {
			return nil, err
		}
		base = fetched.Dir
		entry.Version = fetched.Version
		entry.Source = fmt.Sprintf("git+%s@%s", strings.TrimSpace(spec.Git), fetched.Commit)
	default:
		return nil, fmt.Errorf("source %q: expected path or git", name)
	}

	dir := base
	if spec.Dir != "" {
		dir = filepath.Join(base, filepath.FromSlash(spec.Dir))
	}
	programs, err := driver.CollectPrograms(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", name, err)
	}
	for _, program := range programs {
		rel, err := filepath.Rel(dir, program)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", name, err)
		}
		entry.Programs = append(entry.Programs, filepath.ToSlash(rel))
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, fmt.Errorf("source %q: checksum %s: %w", name, dir, err)
	}
	entry.Checksum = checksum
	return entry, nil
}

func lockedSourceEqual(a, b *driver.LockedSource) bool {
	return a.Name == b.Name &&
		a.Version == b.Version &&
		a.Source == b.Source &&
		a.Checksum == b.Checksum &&
		slices.Equal(a.Programs, b.Programs)
}
