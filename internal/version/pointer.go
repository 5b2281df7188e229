package version

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Pointer names the active version of one artifact kind. The pointer is
// shared state with at-most-one-writer discipline: only the Manager
// mutates it.
type Pointer interface {
	// Read resolves the active version id; empty string when unset
	Read() (string, error)
	// Set atomically repoints to the given version id
	Set(version string) error
}

// filePointer stores the active version id in a small pointer file.
// Symlinked "current" directories are not uniformly supported across
// platforms, so the pointer file is the default for both kinds.
type filePointer struct {
	path string
}

// NewFilePointer creates a pointer-file backed Pointer at path
func NewFilePointer(path string) Pointer {
	return &filePointer{path: path}
}

func (p *filePointer) Read() (string, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read version pointer: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *filePointer) Set(version string) error {
	// Write-then-rename keeps the pointer whole under crash or
	// concurrent read
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(version+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to stage version pointer: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to repoint version pointer: %w", err)
	}
	return nil
}

// pointerPath returns the pointer-file location for a kind's root dir
func pointerPath(kindRoot string) string {
	return filepath.Join(kindRoot, "current")
}
