// Package seeds defines the seed-file abstraction: a directory of world
// JSON documents that are imported into the registry and that worlds can
// be archived back into.
package seeds

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Meta is lightweight seed-file metadata used for change detection.
type Meta struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for seed-directory operations.
type Provider interface {
	// List returns metadata for every .json seed file under the root.
	List() ([]Meta, error)
	// Read returns the raw bytes of the seed at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the seed directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("seeds: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("seeds: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seeds: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the root and rejects any
// result that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("seeds: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("seeds: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("seeds: path escapes seed root: %s", rel)
	}
	return abs, nil
}

// List walks the root and returns metadata for every .json file.
func (f *FS) List() ([]Meta, error) {
	var out []Meta
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, Meta{
			Path:      rel,
			Checksum:  Checksum(data),
			UpdatedAt: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seeds: list: %w", err)
	}
	return out, nil
}

// Read returns the raw bytes of a seed file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("seeds: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("seeds: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".infinity-tmp-*")
	if err != nil {
		return fmt.Errorf("seeds: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("seeds: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("seeds: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("seeds: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("seeds: rename: %w", err)
	}
	success = true
	return nil
}

// Checksum returns the hex sha256 of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
