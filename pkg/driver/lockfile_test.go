package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileName)

	lock := NewLockfile("simple-demos", "simple deps install")
	lock.Sources = append(lock.Sources,
		&LockedSource{Name: "textbook", Version: "v1.0.0@abc", Source: "git+https://example.com/t.git@abc", Checksum: "ff", Programs: []string{"b.simple.yml", "a.simple.yml"}},
		nil,
		&LockedSource{Name: "local-copy", Version: "path", Source: "path:../shared", Checksum: "00"},
	)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile returned error: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile returned error: %v", err)
	}
	if loaded.Root != "simple_demos" || loaded.Tool != "simple deps install" || loaded.Generated == "" {
		t.Fatalf("metadata = %+v", loaded)
	}
	if len(loaded.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(loaded.Sources))
	}
	if loaded.Sources[0].Name != "local_copy" || loaded.Sources[1].Name != "textbook" {
		t.Fatalf("sources not sorted: %s, %s", loaded.Sources[0].Name, loaded.Sources[1].Name)
	}
	if got := strings.Join(loaded.Sources[1].Programs, ","); got != "a.simple.yml,b.simple.yml" {
		t.Fatalf("programs = %q", got)
	}
	src, ok := loaded.Find("local-copy")
	if !ok || src.Source != "path:../shared" {
		t.Fatalf("Find(local-copy) = %#v, %v", src, ok)
	}
}

func TestLoadLockfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	if err := os.WriteFile(path, []byte("root: demo\npackages: []\n"), 0o644); err != nil {
		t.Fatalf("write lockfile: %v", err)
	}
	if _, err := LoadLockfile(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
