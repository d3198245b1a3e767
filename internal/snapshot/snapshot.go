// Package snapshot reads and writes versioned registry snapshots.
//
// A snapshot is one YAML document per registry holding the format version,
// the registry kind, the next id to assign and the registry's records in id
// order. Each write goes to its own temporary file that is renamed over the
// target, so a failed or concurrent write never truncates the previous snapshot.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Version is the current snapshot format version.
const Version = 1

var (
	ErrNotExist       = errors.New("snapshot does not exist")
	ErrKindMismatch   = errors.New("snapshot kind mismatch")
	ErrVersionUnknown = errors.New("unknown snapshot version")
)

// Document is the on-disk layout shared by all registries.
type Document[R any] struct {
	Version int    `yaml:"version"`
	Kind    string `yaml:"kind"`
	NextID  int64  `yaml:"next_id"`
	Records []R    `yaml:"records"`
}

// Write stores records under kind at path.
func Write[R any](path, kind string, nextID int64, records []R) error {
	if records == nil {
		records = []R{}
	}
	doc := Document[R]{Version: Version, Kind: kind, NextID: nextID, Records: records}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s snapshot: %w", kind, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Read loads the snapshot at path and checks it belongs to kind.
// A missing file yields ErrNotExist.
func Read[R any](path, kind string) (Document[R], error) {
	var doc Document[R]

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, ErrNotExist
		}
		return doc, fmt.Errorf("read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document[R]{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if doc.Kind != kind {
		return Document[R]{}, fmt.Errorf("%w: want %q, got %q", ErrKindMismatch, kind, doc.Kind)
	}
	if doc.Version != Version {
		return Document[R]{}, fmt.Errorf("%w: %d", ErrVersionUnknown, doc.Version)
	}
	if doc.NextID < 1 {
		return Document[R]{}, fmt.Errorf("decode %s: next_id must be positive, got %d", path, doc.NextID)
	}
	return doc, nil
}

// Remove deletes the snapshot at path. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
