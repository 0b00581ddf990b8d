package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xiaot623/anketa/internal/domain"
)

// FileMediaStore keeps media references in a flat JSON object on disk.
type FileMediaStore struct {
	path string
	mu   sync.Mutex
}

// NewFileMediaStore creates a store backed by path. The file is created on first save.
func NewFileMediaStore(path string) *FileMediaStore {
	return &FileMediaStore{path: path}
}

// LoadMedia reads the file. A missing file is an empty store.
func (f *FileMediaStore) LoadMedia(_ context.Context) (map[domain.MediaKey]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// SaveMedia rewrites the file with key set to ref. An unreadable file is
// left untouched and the read error returned.
func (f *FileMediaStore) SaveMedia(_ context.Context, key domain.MediaKey, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	current[key] = ref

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write media store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace media store: %w", err)
	}
	return nil
}

func (f *FileMediaStore) read() (map[domain.MediaKey]string, error) {
	out := make(map[domain.MediaKey]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read media store: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse media store %s: %w", filepath.Base(f.path), err)
	}
	return out, nil
}
