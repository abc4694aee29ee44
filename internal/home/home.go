// Package home manages the gramsift home directory layout.
//
// The home directory owns all persistent state: the config file and the
// gram index files built from corpora.
//
// Layout:
//
//	<root>/
//	  config.json                      (versioned config envelope)
//	  instance_id                      (stable id stamped into index files)
//	  indexes/
//	    <name>.gidx                    (gram index files)
package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// IndexExt is the file extension of gram index files.
const IndexExt = ".gidx"

// Dir represents a gramsift home directory.
type Dir struct {
	root string
}

// New creates a Dir with an explicit root path.
func New(root string) Dir {
	return Dir{root: root}
}

// Default returns a Dir using the platform-appropriate default location:
//   - Linux:   ~/.config/gramsift
//   - macOS:   ~/Library/Application Support/gramsift
//   - Windows: %APPDATA%/gramsift
func Default() (Dir, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("determine config directory: %w", err)
	}
	return Dir{root: filepath.Join(base, "gramsift")}, nil
}

// Root returns the home directory path.
func (d Dir) Root() string {
	return d.root
}

// ConfigPath returns the path to the config file.
func (d Dir) ConfigPath() string {
	return filepath.Join(d.root, "config.json")
}

// IndexDir returns the directory holding index files.
func (d Dir) IndexDir() string {
	return filepath.Join(d.root, "indexes")
}

// IndexPath returns the path of the named index.
func (d Dir) IndexPath(name string) string {
	return filepath.Join(d.IndexDir(), name+IndexExt)
}

// EnsureExists creates the home and index directories if they don't exist.
func (d Dir) EnsureExists() error {
	if err := os.MkdirAll(d.IndexDir(), 0o750); err != nil {
		return fmt.Errorf("create home directory %s: %w", d.root, err)
	}
	return nil
}

// InstanceID reads the persistent instance identity from <root>/instance_id.
// If the file doesn't exist, a new UUIDv7 is generated and written.
func (d Dir) InstanceID() (uuid.UUID, error) {
	s, err := d.readOrCreate("instance_id", func() string {
		return uuid.Must(uuid.NewV7()).String()
	})
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse instance_id: %w", err)
	}
	return id, nil
}

// readOrCreate reads a single-line value from <root>/<filename>.
// If the file doesn't exist, generate() provides the default which is persisted.
func (d Dir) readOrCreate(filename string, generate func() string) (string, error) {
	p := filepath.Join(d.root, filename)
	data, err := os.ReadFile(p) //nolint:gosec // G304: path is constructed from trusted home dir + constant filename
	if err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v, nil
		}
	}
	v := generate()
	if err := os.WriteFile(p, []byte(v+"\n"), 0o640); err != nil { //nolint:gosec // G306: instance id is not secret
		return "", fmt.Errorf("write %s: %w", filename, err)
	}
	return v, nil
}
