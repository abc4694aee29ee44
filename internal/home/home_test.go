package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	d := New("/tmp/gramsift-test")
	if d.Root() != "/tmp/gramsift-test" {
		t.Errorf("expected root /tmp/gramsift-test, got %s", d.Root())
	}
}

func TestDefault(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(d.Root()) != "gramsift" {
		t.Errorf("expected root to end with 'gramsift', got %s", d.Root())
	}
}

func TestPaths(t *testing.T) {
	d := New("/data")
	if got := d.ConfigPath(); got != "/data/config.json" {
		t.Errorf("ConfigPath = %s", got)
	}
	if got := d.IndexDir(); got != "/data/indexes" {
		t.Errorf("IndexDir = %s", got)
	}
	if got := d.IndexPath("logs"); got != "/data/indexes/logs.gidx" {
		t.Errorf("IndexPath = %s", got)
	}
}

func TestEnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "gramsift")
	d := New(root)
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	info, err := os.Stat(d.IndexDir())
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory")
	}

	// Calling again should be idempotent.
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists (idempotent): %v", err)
	}
}

func TestInstanceIDStable(t *testing.T) {
	d := New(t.TempDir())
	first, err := d.InstanceID()
	if err != nil {
		t.Fatalf("InstanceID: %v", err)
	}
	second, err := d.InstanceID()
	if err != nil {
		t.Fatalf("InstanceID: %v", err)
	}
	if first != second {
		t.Errorf("instance id changed: %s then %s", first, second)
	}
}
