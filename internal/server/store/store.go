// Package store persists the admin-editable JSON documents of the site.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Hook runs after a document has been saved
type Hook[T any] func(ctx context.Context, doc T) error

// DocStore reads and writes one JSON document with a fixed default.
// Saved top-level keys replace the default's keys in full; nested values are
// never merged.
type DocStore[T any] struct {
	name     string
	path     string
	defaults func() T
	onWrite  Hook[T]
	logger   *zap.Logger
	mu       sync.RWMutex
}

// New creates a document store backed by path
func New[T any](name, path string, defaults func() T, logger *zap.Logger) *DocStore[T] {
	return &DocStore[T]{
		name:     name,
		path:     path,
		defaults: defaults,
		logger:   logger.Named("store").With(zap.String("document", name)),
	}
}

// OnWrite registers a hook that runs after every successful Write
func (s *DocStore[T]) OnWrite(h Hook[T]) {
	s.onWrite = h
}

// Name returns the document name
func (s *DocStore[T]) Name() string {
	return s.name
}

// Path returns the backing file path
func (s *DocStore[T]) Path() string {
	return s.path
}

// Read returns the saved document merged over the default. A missing or
// unreadable file yields the default.
func (s *DocStore[T]) Read() T {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read document, using default",
				zap.String("path", s.path),
				zap.Error(err))
		}
		return s.defaults()
	}

	doc, err := mergeShallow(s.defaults(), data)
	if err != nil {
		s.logger.Warn("Failed to parse document, using default",
			zap.String("path", s.path),
			zap.Error(err))
		return s.defaults()
	}
	return doc
}

// Write persists doc verbatim and then runs the write hook. Hook failures are
// logged only; the returned error reports the primary save alone.
func (s *DocStore[T]) Write(ctx context.Context, doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.name, err)
	}

	s.mu.Lock()
	err = WriteFileAtomic(s.path, append(data, '\n'))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", s.name, err)
	}

	s.logger.Info("Document saved", zap.String("path", s.path))

	if s.onWrite != nil {
		if err := s.onWrite(ctx, doc); err != nil {
			s.logger.Warn("Post-save hook failed", zap.Error(err))
		}
	}
	return nil
}

// mergeShallow overlays the top-level keys of saved onto def
func mergeShallow[T any](def T, saved []byte) (T, error) {
	var zero T

	base, err := json.Marshal(def)
	if err != nil {
		return zero, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return zero, err
	}

	var overrides map[string]json.RawMessage
	if err := json.Unmarshal(saved, &overrides); err != nil {
		return zero, err
	}
	for k, v := range overrides {
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return zero, err
	}
	var doc T
	if err := json.Unmarshal(out, &doc); err != nil {
		return zero, err
	}
	return doc, nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteJSON writes v as indented JSON to path atomically
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(data, '\n'))
}
