package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dukex/agroops/pkg/persistence"
)

// Repository stores records of one kind as <root>/<collection>/<id>.json.
type Repository[E any] struct {
	root string
	kind persistence.Kind[*E]
	mu   sync.RWMutex
}

// NewRepository creates a repository rooted at root.
func NewRepository[E any](root string, kind persistence.Kind[*E]) *Repository[E] {
	return &Repository[E]{root: root, kind: kind}
}

func (r *Repository[E]) dir() string {
	return filepath.Join(r.root, r.kind.Collection)
}

func (r *Repository[E]) path(id string) (string, bool) {
	if id == "" || filepath.Base(id) != id || strings.HasPrefix(id, ".") {
		return "", false
	}

	return filepath.Join(r.dir(), id+".json"), true
}

// GetAll loads every record of the collection.
func (r *Repository[E]) GetAll(_ context.Context) ([]*E, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jsonFiles, err := fs.Glob(os.DirFS(r.dir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", r.kind.Collection, err)
	}

	all := make([]*E, 0, len(jsonFiles))

	for _, name := range jsonFiles {
		item, err := r.read(filepath.Join(r.dir(), name))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s %s: %w", r.kind.Record, strings.TrimSuffix(name, ".json"), err)
		}

		all = append(all, item)
	}

	slices.SortFunc(all, r.kind.Compare)

	return all, nil
}

// GetByID reads one record from disk.
func (r *Repository[E]) GetByID(_ context.Context, id string) (*E, error) {
	filePath, ok := r.path(id)
	if !ok {
		return nil, persistence.NewRecordError("GetByID", r.kind.Record, id, r.kind.NotFound)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	item, err := r.read(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.NewRecordError("GetByID", r.kind.Record, id, r.kind.NotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s: %w", r.kind.Record, id, err)
	}

	return item, nil
}

func (r *Repository[E]) read(filePath string) (*E, error) {
	body, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, err
	}

	item := new(E)

	err = json.Unmarshal(body, item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(filePath), err)
	}

	return item, nil
}

// Save stamps the record and writes it to disk.
func (r *Repository[E]) Save(_ context.Context, item *E) error {
	id := r.kind.ID(item)

	filePath, ok := r.path(id)
	if !ok {
		return fmt.Errorf("invalid %s id %q", r.kind.Record, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.MkdirAll(r.dir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", r.kind.Collection, err)
	}

	r.kind.Stamp(item, time.Now().UTC())

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", r.kind.Record, id, err)
	}

	// Write then rename so readers never observe a partial document.
	tmp := filePath + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write %s %s: %w", r.kind.Record, id, err)
	}

	err = os.Rename(tmp, filePath)
	if err != nil {
		return fmt.Errorf("failed to store %s %s: %w", r.kind.Record, id, err)
	}

	return nil
}

// Delete removes a record by its ID.
func (r *Repository[E]) Delete(_ context.Context, id string) error {
	filePath, ok := r.path(id)
	if !ok {
		return persistence.NewRecordError("Delete", r.kind.Record, id, r.kind.NotFound)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return persistence.NewRecordError("Delete", r.kind.Record, id, r.kind.NotFound)
	}

	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", r.kind.Record, id, err)
	}

	return nil
}
