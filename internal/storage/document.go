// Package storage persists process-owned state as JSON documents on disk.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	locksMu sync.Mutex
	locks   = map[string]*sync.Mutex{}
)

// lockFor returns the mutex guarding path. Documents opened on the same file share it.
func lockFor(path string) *sync.Mutex {
	locksMu.Lock()
	defer locksMu.Unlock()
	if mu, ok := locks[path]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	locks[path] = mu
	return mu
}

// Document is a JSON file holding a single value of type T.
type Document[T any] struct {
	path string
	mu   *sync.Mutex
}

// NewDocument binds a document to path, creating the parent directory if needed.
func NewDocument[T any](path string) (*Document[T], error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, err
	}
	return &Document[T]{path: abs, mu: lockFor(abs)}, nil
}

// Path returns the absolute location of the document.
func (d *Document[T]) Path() string {
	return d.path
}

// Load reads the current value. A missing file yields the zero value.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read(ctx)
}

// Update performs a read-modify-write cycle. When fn returns an error nothing is written.
func (d *Document[T]) Update(ctx context.Context, fn func(value *T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.read(ctx)
	if err != nil {
		return value, err
	}
	if err := fn(&value); err != nil {
		var zero T
		return zero, err
	}
	if err := d.write(ctx, value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func (d *Document[T]) read(ctx context.Context) (T, error) {
	var value T
	if err := ctx.Err(); err != nil {
		return value, err
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return value, nil
		}
		return value, fmt.Errorf("read %s: %w", filepath.Base(d.path), err)
	}
	if len(data) == 0 {
		return value, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", filepath.Base(d.path), err)
	}
	return value, nil
}

func (d *Document[T]) write(ctx context.Context, value T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(d.path), err)
	}

	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, d.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
