package main

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunDemoPrintsTrace(t *testing.T) {
	code, stdout, stderr := captureCLI(t, []string{"run", "triple"})
	if code != 0 {
		t.Fatalf("exit code = %d (stderr=%q)", code, stderr)
	}
	lines := outputLines(stdout)
	if len(lines) != 21 {
		t.Fatalf("expected 21 trace lines, got %d:\n%s", len(lines), stdout)
	}
	if lines[0] != "while (x < 5) { x = x * 3 }, {x: 1}" {
		t.Fatalf("first line = %q", lines[0])
	}
	if lines[20] != "do-nothing, {x: 9}" {
		t.Fatalf("last line = %q", lines[20])
	}
}

func TestRunWithoutSubcommandUsesTarget(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"arithmetic"})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got := outputLines(stdout); len(got) != 4 || got[3] != "14, {}" {
		t.Fatalf("trace = %q", got)
	}
}

func TestRunReportsRuntimeDiagnostic(t *testing.T) {
	path := filepath.Join("..", "..", "fixtures", "errors", "unbound.simple.yml")
	code, _, stderr := captureCLI(t, []string{"run", path})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(stderr, "runtime: "+path+":4:") {
		t.Fatalf("expected located diagnostic, got %q", stderr)
	}
	if !strings.Contains(stderr, "unbound variable 'z'") {
		t.Fatalf("expected unbound variable message, got %q", stderr)
	}
}

func TestRunHonoursMaxSteps(t *testing.T) {
	code, stdout, stderr := captureCLI(t, []string{"--max-steps=3", "run", "triple"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := len(outputLines(stdout)); got != 4 {
		t.Fatalf("expected 4 trace lines before the bound, got %d", got)
	}
	if !strings.Contains(stderr, "simple run: step limit exceeded: 3") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRunUnknownTarget(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"run", "nope"})
	if code != 1 || !strings.Contains(stderr, `no program document or demo named "nope"`) {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestEvalPrintsBigStepResult(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{"arithmetic", "14"},
		{"compare", "false"},
		{"triple", "{x: 9}"},
		{"sequence", "{x: 2, y: 5}"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			code, stdout, stderr := captureCLI(t, []string{"eval", tc.target})
			if code != 0 {
				t.Fatalf("exit code = %d (stderr=%q)", code, stderr)
			}
			if strings.TrimSpace(stdout) != tc.want {
				t.Fatalf("eval %s = %q, want %q", tc.target, stdout, tc.want)
			}
		})
	}
}

func TestCheckReportsConsistency(t *testing.T) {
	code, stdout, stderr := captureCLI(t, []string{"check", "sequence"})
	if code != 0 {
		t.Fatalf("exit code = %d (stderr=%q)", code, stderr)
	}
	if !strings.Contains(stdout, "sequence: consistent after 6 steps") {
		t.Fatalf("stdout = %q", stdout)
	}

	code, _, stderr = captureCLI(t, []string{"check", "unbound"})
	if code != 1 || !strings.Contains(stderr, "runtime: unbound variable 'z'") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestDemosAndExport(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"demos"})
	if code != 0 {
		t.Fatalf("demos exit code = %d", code)
	}
	if !strings.Contains(stdout, "triple       while (x < 5) { x = x * 3 }") {
		t.Fatalf("demos output = %q", stdout)
	}

	dir := t.TempDir()
	code, stdout, stderr := captureCLI(t, []string{"export", "triple", filepath.Join(dir, "triple")})
	if code != 0 {
		t.Fatalf("export exit code = %d (stderr=%q)", code, stderr)
	}
	exported := filepath.Join(dir, "triple.simple.yml")
	if !strings.Contains(stdout, exported) {
		t.Fatalf("export output = %q", stdout)
	}
	code, stdout, stderr = captureCLI(t, []string{"run", exported})
	if code != 0 {
		t.Fatalf("run exported exit code = %d (stderr=%q)", code, stderr)
	}
	if got := len(outputLines(stdout)); got != 21 {
		t.Fatalf("expected 21 trace lines from the exported document, got %d", got)
	}

	code, _, stderr = captureCLI(t, []string{"export", "missing", filepath.Join(dir, "x")})
	if code != 1 || !strings.Contains(stderr, `unknown demo "missing"`) {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestVerboseLogsTransitions(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"--verbose", "run", "arithmetic"})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got := strings.Count(stderr, "msg=reduced"); got != 3 {
		t.Fatalf("expected 3 reduced records, got %d:\n%s", got, stderr)
	}
	if !strings.Contains(stderr, `msg="normal form"`) {
		t.Fatalf("expected normal form record:\n%s", stderr)
	}
}

func TestParseGlobalOptions(t *testing.T) {
	t.Setenv("SIMPLE_MAX_STEPS", "")
	t.Setenv("SIMPLE_LOG", "")

	opts, remaining, err := parseGlobalOptions([]string{"run", "--max-steps", "7", "x.simple.yml", "--timeout=2s", "-v"})
	if err != nil {
		t.Fatalf("parseGlobalOptions returned error: %v", err)
	}
	if opts.maxSteps != 7 || opts.timeout != 2*time.Second || !opts.verbose {
		t.Fatalf("opts = %+v", opts)
	}
	if strings.Join(remaining, " ") != "run x.simple.yml" {
		t.Fatalf("remaining = %q", remaining)
	}

	_, remaining, err = parseGlobalOptions([]string{"run", "--", "--max-steps"})
	if err != nil || strings.Join(remaining, " ") != "run --max-steps" {
		t.Fatalf("remaining after -- = %q, %v", remaining, err)
	}

	for _, args := range [][]string{
		{"--max-steps"},
		{"--max-steps=0"},
		{"--timeout", "soon"},
		{"--timeout=-1s"},
	} {
		if _, _, err := parseGlobalOptions(args); err == nil {
			t.Fatalf("expected error for %q", args)
		}
	}
}

func TestGlobalOptionsFromEnvironment(t *testing.T) {
	t.Setenv("SIMPLE_MAX_STEPS", "12")
	t.Setenv("SIMPLE_LOG", "debug")
	opts, _, err := parseGlobalOptions([]string{"run", "triple"})
	if err != nil {
		t.Fatalf("parseGlobalOptions returned error: %v", err)
	}
	if opts.maxSteps != 12 || !opts.verbose {
		t.Fatalf("opts = %+v", opts)
	}

	opts, _, err = parseGlobalOptions([]string{"--max-steps=4", "run", "triple"})
	if err != nil || opts.maxSteps != 4 {
		t.Fatalf("flag should override environment: %+v, %v", opts, err)
	}

	t.Setenv("SIMPLE_MAX_STEPS", "lots")
	if _, _, err := parseGlobalOptions([]string{"run"}); err == nil {
		t.Fatalf("expected invalid SIMPLE_MAX_STEPS to fail")
	}
}

func TestUsageAndVersion(t *testing.T) {
	code, _, stderr := captureCLI(t, nil)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("code=%d stdout=%q", code, stdout)
	}
}
