package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/limaJavier/coursetimetable/pkg/model"
)

// FileStore keeps the dataset as a single JSON document
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (store *FileStore) Load(ctx context.Context) (model.RawDataset, error) {
	return model.DatasetFromJson(store.path)
}

// Save replaces the document atomically
func (store *FileStore) Save(ctx context.Context, dataset model.RawDataset) error {
	bytes, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if dir := filepath.Dir(store.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset directory: %w", err)
		}
	}

	temporary := store.path + ".tmp"
	if err := os.WriteFile(temporary, bytes, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := os.Rename(temporary, store.path); err != nil {
		_ = os.Remove(temporary)
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
