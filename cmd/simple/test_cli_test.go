package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTestCommandReportsEmptyWorkspace(t *testing.T) {
	chdir(t, t.TempDir())

	code, stdout, stderr := captureCLI(t, []string{"test"})
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr=%q)", code, stderr)
	}
	if !strings.Contains(stdout, "simple test: no program documents found") {
		t.Fatalf("expected stdout to mention empty workspace, got %q", stdout)
	}
}

func TestTestCommandRunsWorkspacePrograms(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	writeFile(t, filepath.Join(dir, "simple.yml"), `
name: demo
programs:
  - programs
`)
	writeFile(t, filepath.Join(dir, "programs", "triple.simple.yml"), tripleProgram)
	writeFile(t, filepath.Join(dir, "programs", "wrong.simple.yml"), `
program: {add: [1, 2]}
expect:
  value: 4
`)
	writeFile(t, filepath.Join(dir, "scratch", "ignored.simple.yml"), "program: do-nothing")

	code, stdout, stderr := captureCLI(t, []string{"test"})
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d (stderr=%q)", code, stderr)
	}
	for _, fragment := range []string{
		"PASS programs/triple.simple.yml",
		"FAIL programs/wrong.simple.yml",
		"    value 3 != 4",
		"simple test: 1 passed, 1 failed",
	} {
		if !strings.Contains(stdout, fragment) {
			t.Fatalf("stdout missing %q:\n%s", fragment, stdout)
		}
	}
	if strings.Contains(stdout, "ignored") {
		t.Fatalf("programs outside the manifest patterns should not run:\n%s", stdout)
	}

	code, stdout, _ = captureCLI(t, []string{"test", "--filter", "triple"})
	if code != 0 || !strings.Contains(stdout, "simple test: 1 passed, 0 failed") {
		t.Fatalf("filtered run: code=%d stdout=%q", code, stdout)
	}

	code, stdout, _ = captureCLI(t, []string{"test", "--list"})
	if code != 0 {
		t.Fatalf("list exit code = %d", code)
	}
	if got := outputLines(stdout); strings.Join(got, ",") != "programs/triple.simple.yml,programs/wrong.simple.yml" {
		t.Fatalf("list = %q", got)
	}
}

func TestTestCommandExplicitTargets(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "a", "triple.simple.yml"), tripleProgram)
	writeFile(t, filepath.Join(dir, "b", "unbound.simple.yml"), `
program: {assign: {name: y, value: {var: z}}}
expect:
  error: UnboundVariable
`)

	code, stdout, stderr := captureCLI(t, []string{"test", "a", filepath.Join("b", "unbound.simple.yml"), "a/triple.simple.yml"})
	if code != 0 {
		t.Fatalf("exit code = %d (stdout=%q stderr=%q)", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "simple test: 2 passed, 0 failed") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestTestCommandBoundsRunawayPrograms(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "forever.simple.yml"), `
program:
  while: {condition: true, body: do-nothing}
`)

	code, stdout, _ := captureCLI(t, []string{"--max-steps=50", "test"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout, "unexpected error: step limit exceeded: 50") {
		t.Fatalf("stdout = %q", stdout)
	}
}

func TestTestCommandFailFast(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, "a.simple.yml"), "program: 1\nexpect:\n  value: 2")
	writeFile(t, filepath.Join(dir, "b.simple.yml"), "program: 1\nexpect:\n  value: 2")

	_, stdout, _ := captureCLI(t, []string{"test", "--fail-fast"})
	if strings.Count(stdout, "FAIL") != 1 {
		t.Fatalf("expected the run to stop at the first failure:\n%s", stdout)
	}
}

func TestParseTestArguments(t *testing.T) {
	config, err := parseTestArguments([]string{"--list", "--filter=loop", "--fail-fast", "dir"})
	if err != nil {
		t.Fatalf("parseTestArguments returned error: %v", err)
	}
	if !config.ListOnly || !config.FailFast || config.Filter != "loop" || strings.Join(config.Targets, ",") != "dir" {
		t.Fatalf("config = %+v", config)
	}
	if _, err := parseTestArguments([]string{"--filter"}); err == nil {
		t.Fatalf("expected --filter without value to fail")
	}
	if _, err := parseTestArguments([]string{"--shuffle"}); err == nil {
		t.Fatalf("expected unknown flag to fail")
	}
}
