package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"simple/interpreter-go/pkg/driver"
)

var errManifestNotFound = errors.New("simple.yml not found")

func findManifest(start string) (string, error) {
	path, ok := driver.FindManifest(start)
	if !ok {
		return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, start, errManifestNotFound)
	}
	return path, nil
}

// resolveSimpleCache returns the directory fetched sources are stored under.
func resolveSimpleCache() (string, error) {
	if cache := strings.TrimSpace(os.Getenv("SIMPLE_CACHE")); cache != "" {
		abs, err := filepath.Abs(cache)
		if err != nil {
			return "", fmt.Errorf("resolve SIMPLE_CACHE %q: %w", cache, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".simple"), nil
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Root(), driver.LockfileName)
}

// loadLockfileForManifest returns nil when the workspace declares no sources and has no
// lockfile.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	path := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Sources) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `simple deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", path, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

// lockedSourceDir maps a lock entry back to the directory its programs live in.
func lockedSourceDir(entry *driver.LockedSource, manifest *driver.Manifest, cacheDir string) (string, error) {
	source := strings.TrimSpace(entry.Source)
	var base string
	switch {
	case strings.HasPrefix(source, "path:"):
		spec := strings.TrimSpace(strings.TrimPrefix(source, "path:"))
		if spec == "" {
			return "", fmt.Errorf("source %s: empty path", entry.Name)
		}
		base = resolveSourcePath(manifest.Root(), spec)
	case strings.HasPrefix(source, "git+"):
		base = gitCheckoutDir(cacheDir, entry.Name, entry.Version)
	default:
		return "", fmt.Errorf("source %s: unsupported locked source %q", entry.Name, source)
	}
	if spec, ok := manifest.Sources[entry.Name]; ok && spec != nil && spec.Dir != "" {
		base = filepath.Join(base, filepath.FromSlash(spec.Dir))
	}
	return base, nil
}

func resolveSourcePath(root, spec string) string {
	spec = filepath.FromSlash(spec)
	if filepath.IsAbs(spec) {
		return filepath.Clean(spec)
	}
	return filepath.Join(root, spec)
}

func gitCheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "sources", sanitizeName(name), sanitizePathSegment(version))
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
}
