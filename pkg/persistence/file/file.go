// Package file provides file-based persistence storing one JSON document per record.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root      string
	templates *Repository[models.OperationTemplate]
	crops     *Repository[models.Crop]
	tasks     *Repository[models.Task]
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:      cleanRoot,
		templates: NewRepository(cleanRoot, persistence.Templates),
		crops:     NewRepository(cleanRoot, persistence.Crops),
		tasks:     NewRepository(cleanRoot, persistence.Tasks),
	}
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository { return fp.templates }
func (fp *Persistence) CropRepository() persistence.CropRepository         { return fp.crops }
func (fp *Persistence) TaskRepository() persistence.TaskRepository         { return fp.tasks }

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	info, err := os.Stat(fp.root)
	if errors.Is(err, os.ErrNotExist) {
		return os.ErrNotExist
	}

	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", fp.root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", fp.root)
	}

	return nil
}
