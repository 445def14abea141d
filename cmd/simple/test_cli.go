package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"simple/interpreter-go/pkg/driver"
	"simple/interpreter-go/pkg/interpreter"
)

// defaultTestMaxSteps bounds programs that declare no limits anywhere, so a runaway loop
// fails its test instead of hanging the run.
const defaultTestMaxSteps = 100000

type TestCliConfig struct {
	Targets  []string
	Filter   string
	ListOnly bool
	FailFast bool
}

// testTarget is one program document queued for `simple test`.
type testTarget struct {
	Path   string
	Label  string
	Limits driver.Limits
}

type testSummary struct {
	Passed int
	Failed int
}

func runTest(args []string, opts cliOptions) int {
	config, err := parseTestArguments(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simple test: %v\n", err)
		return 1
	}

	targets, err := resolveTestTargets(config.Targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simple test: %v\n", err)
		return 2
	}
	if config.Filter != "" {
		targets = lo.Filter(targets, func(target testTarget, _ int) bool {
			return strings.Contains(target.Label, config.Filter)
		})
	}

	if len(targets) == 0 {
		fmt.Fprintln(os.Stdout, "simple test: no program documents found")
		return 0
	}

	if config.ListOnly {
		for _, target := range targets {
			fmt.Fprintln(os.Stdout, target.Label)
		}
		return 0
	}

	summary := testSummary{}
	for _, target := range targets {
		problems := runTestTarget(target, opts)
		if len(problems) == 0 {
			summary.Passed++
			fmt.Fprintf(os.Stdout, "PASS %s\n", target.Label)
			continue
		}
		summary.Failed++
		fmt.Fprintf(os.Stdout, "FAIL %s\n", target.Label)
		for _, problem := range problems {
			fmt.Fprintf(os.Stdout, "    %s\n", problem)
		}
		if config.FailFast {
			break
		}
	}

	fmt.Fprintf(os.Stdout, "simple test: %d passed, %d failed\n", summary.Passed, summary.Failed)
	if summary.Failed > 0 {
		return 1
	}
	return 0
}

// runTestTarget loads and runs one document, returning its expectation mismatches.
func runTestTarget(target testTarget, opts cliOptions) []string {
	program, err := driver.LoadProgram(target.Path)
	if err != nil {
		return []string{err.Error()}
	}
	if program.Limits.MaxSteps == 0 {
		program.Limits.MaxSteps = target.Limits.MaxSteps
	}
	if program.Limits.Timeout == 0 {
		program.Limits.Timeout = target.Limits.Timeout
	}
	if program.Limits.MaxSteps == 0 && program.Limits.Timeout == 0 && opts.maxSteps == 0 && opts.timeout == 0 {
		program.Limits.MaxSteps = defaultTestMaxSteps
	}
	outcome := interpreter.RunProgram(context.Background(), program, nil, opts.machineOptions()...)
	return outcome.Verify(program.Expect)
}

func parseTestArguments(args []string) (TestCliConfig, error) {
	config := TestCliConfig{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--list":
			config.ListOnly = true
		case arg == "--fail-fast":
			config.FailFast = true
		case arg == "--filter":
			value, err := expectFlagValue(arg, nextArg(args, &i))
			if err != nil {
				return config, err
			}
			config.Filter = value
		case strings.HasPrefix(arg, "--filter="):
			config.Filter = strings.TrimPrefix(arg, "--filter=")
		case strings.HasPrefix(arg, "-"):
			return config, fmt.Errorf("unknown flag %s", arg)
		default:
			config.Targets = append(config.Targets, arg)
		}
	}
	return config, nil
}

// resolveTestTargets expands the command-line targets. With none, the enclosing workspace
// is used: the manifest's program patterns plus every locked source. Without a manifest the
// working directory is searched.
func resolveTestTargets(paths []string) ([]testTarget, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	var manifest *driver.Manifest
	if manifestPath, err := findManifest(cwd); err == nil {
		manifest, err = driver.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, errManifestNotFound) {
		return nil, err
	}

	var limits driver.Limits
	if manifest != nil {
		limits = manifest.Limits
	}

	if len(paths) > 0 {
		var targets []testTarget
		for _, path := range paths {
			expanded, err := expandTestPath(path, cwd, limits)
			if err != nil {
				return nil, err
			}
			targets = append(targets, expanded...)
		}
		return lo.UniqBy(targets, func(target testTarget) string { return target.Path }), nil
	}

	if manifest == nil {
		return expandTestPath(cwd, cwd, limits)
	}
	return workspaceTestTargets(manifest)
}

func expandTestPath(path, base string, limits driver.Limits) ([]testTarget, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	files := []string{abs}
	if info.IsDir() {
		if files, err = driver.CollectPrograms(abs, nil); err != nil {
			return nil, err
		}
	}
	return lo.Map(files, func(file string, _ int) testTarget {
		return testTarget{Path: file, Label: relativeLabel(base, file), Limits: limits}
	}), nil
}

func workspaceTestTargets(manifest *driver.Manifest) ([]testTarget, error) {
	root := manifest.Root()
	files, err := driver.CollectPrograms(root, manifest.Programs)
	if err != nil {
		return nil, err
	}
	targets := lo.Map(files, func(file string, _ int) testTarget {
		return testTarget{Path: file, Label: relativeLabel(root, file), Limits: manifest.Limits}
	})

	lock, err := loadLockfileForManifest(manifest)
	if err != nil || lock == nil {
		return targets, err
	}
	cacheDir, err := resolveSimpleCache()
	if err != nil {
		return nil, err
	}
	for _, entry := range lock.Sources {
		if _, ok := manifest.Sources[entry.Name]; !ok {
			return nil, fmt.Errorf("%s lists source %q that %s does not declare; run `simple deps install`", driver.LockfileName, entry.Name, driver.ManifestName)
		}
		dir, err := lockedSourceDir(entry, manifest, cacheDir)
		if err != nil {
			return nil, err
		}
		checksum, err := dirChecksum(dir)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w (run `simple deps install`)", entry.Name, err)
		}
		if checksum != entry.Checksum {
			return nil, fmt.Errorf("source %s changed since %s was written; run `simple deps install`", entry.Name, driver.LockfileName)
		}
		for _, program := range entry.Programs {
			targets = append(targets, testTarget{
				Path:   filepath.Join(dir, filepath.FromSlash(program)),
				Label:  entry.Name + ":" + program,
				Limits: manifest.Limits,
			})
		}
	}
	return targets, nil
}

func relativeLabel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
