package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"reviewdesk/pkg/domain"
)

// FileStore keeps the review collection in one pretty-printed JSON file.
// A mutex serializes writers within the process; cross-process writers are
// still last-write-wins on the whole document.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore validates the path and creates the parent directory if missing.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load reads the full collection. A missing file is not an error: it loads
// as an empty collection.
func (f *FileStore) Load() ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Review{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}
	reviews := []domain.Review{}
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return reviews, nil
}

// Save overwrites the persisted collection. The document is written to a
// temp file and renamed so readers never observe a partial write.
func (f *FileStore) Save(reviews []domain.Review) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reviews: %w", err)
	}
	data = append(data, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
