// Package storage manages the per-component scratch directories that back
// every Space and Process: ROOT/<d1>/<d2>/…, created on construction and
// removed recursively when the owning component drops.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ccanvas/ccanvas/internal/discrim"
)

// root is the process-wide storage root, write-once at boot via Init.
var root string

// Init sets ROOT to /tmp/ccanvas/<hostPID>, deleting any stale directory
// left behind by a previous run under the same pid (practically never
// happens, but keeps boot idempotent) and creating it fresh.
func Init(hostPID int) error {
	root = filepath.Join(os.TempDir(), "ccanvas", fmt.Sprintf("%d", hostPID))
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("storage: remove stale root %s: %w", root, err)
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return nil
}

// Root returns the process-wide storage root established by Init.
func Root() string {
	return root
}

// Teardown removes ROOT and everything under it. Best-effort: the normal
// shutdown path in cmd/ccanvas defers it and discards its error.
func Teardown() error {
	if root == "" {
		return nil
	}
	return os.RemoveAll(root)
}

// Storage is the scratch directory owned by a single component.
type Storage struct {
	dir string
}

// New creates ROOT/<d1>/<d2>/… for the given discriminator.
func New(d discrim.Discriminator) (*Storage, error) {
	dir := filepath.Join(root, filepath.FromSlash(d.String()))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage: create dir %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the absolute storage directory.
func (s *Storage) Dir() string {
	return s.dir
}

// SocketPath returns the path of the component's request socket within
// its storage directory.
func (s *Storage) SocketPath() string {
	return filepath.Join(s.dir, "requests.sock")
}

// Resolve resolves a child-relative path against the storage directory,
// used for "set socket" requests whose path is relative to the child's
// working directory.
func (s *Storage) Resolve(relOrAbs string) string {
	if filepath.IsAbs(relOrAbs) {
		return relOrAbs
	}
	return filepath.Join(s.dir, relOrAbs)
}

// Remove deletes the storage directory and everything under it.
func (s *Storage) Remove() error {
	return os.RemoveAll(s.dir)
}
