package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: simple-demos
programs:
  - programs
  - extra/*.simple.yml
limits:
  max_steps: 10000
  timeout: 3s
sources:
  textbook:
    git: https://github.com/example/simple-programs.git
    tag: v1.0.0
    dir: chapter2
  local: ../shared
  pinned:
    git: https://github.com/example/more.git
    rev: abc123
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Name, "simple_demos"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if got := strings.Join(manifest.Programs, ","); got != "programs,extra/*.simple.yml" {
		t.Fatalf("Programs = %q", got)
	}
	if manifest.Limits.MaxSteps != 10000 || manifest.Limits.Timeout != 3*time.Second {
		t.Fatalf("Limits = %+v", manifest.Limits)
	}
	if got := strings.Join(manifest.SourceNames(), ","); got != "local,pinned,textbook" {
		t.Fatalf("SourceNames = %q", got)
	}
	textbook := manifest.Sources["textbook"]
	if textbook.Git == "" || textbook.Tag != "v1.0.0" || textbook.Dir != "chapter2" {
		t.Fatalf("git source not parsed: %#v", textbook)
	}
	if manifest.Sources["local"].Path != "../shared" {
		t.Fatalf("path shorthand not parsed: %#v", manifest.Sources["local"])
	}
	if manifest.Root() != filepath.Dir(path) {
		t.Fatalf("Root = %q, want %q", manifest.Root(), filepath.Dir(path))
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
name: ""
programs: ["[bad"]
limits:
  max_steps: -5
  timeout: later
sources:
  both:
    path: ./a
    git: https://example.com/a.git
  unpinned:
    git: https://example.com/b.git
  overpinned:
    git: https://example.com/c.git
    tag: v1
    branch: main
  escape:
    path: ./c
    dir: ../../etc
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	msg := err.Error()
	wantFragments := []string{
		"name must be provided",
		`programs[0]: invalid pattern "[bad"`,
		"limits.max_steps must not be negative",
		"limits.timeout",
		"sources.both: path sources cannot also specify git",
		"sources.unpinned: git sources require rev, tag, or branch",
		"sources.overpinned: rev, tag, and branch are mutually exclusive",
		`sources.escape: dir "../../etc" must stay inside the source`,
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing fragment %q: %s", fragment, msg)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  app: main.simple.yml
`)
	_, err := LoadManifest(path)
	if err == nil || !strings.Contains(err.Error(), "field targets not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	path := writeManifest(t, "name: demo\n")
	nested := filepath.Join(filepath.Dir(path), "programs", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, ok := FindManifest(nested)
	if !ok || found != path {
		t.Fatalf("FindManifest = %q, %v; want %q", found, ok, path)
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}
