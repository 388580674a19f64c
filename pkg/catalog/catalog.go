// Package catalog loads the reference data the engine starts from: sensors,
// optimal condition profiles, template seeds, field readings and task types.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/agroops/pkg/models"
	"github.com/dukex/agroops/pkg/profiles"
	"github.com/dukex/agroops/pkg/sensors"
	"github.com/dukex/agroops/pkg/tasktypes"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultCatalog []byte

//go:embed schema.json
var schema []byte

var (
	// ErrInvalidCatalog indicates a catalog document failed schema or semantic validation.
	ErrInvalidCatalog = fmt.Errorf("invalid catalog: %w", models.ErrValidationFailed)

	// ErrUnsupportedFormat indicates a catalog file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Catalog is the reference data set.
type Catalog struct {
	Sensors   []models.Sensor                  `json:"sensors"    validate:"dive"`
	Profiles  []models.OptimalConditionProfile `json:"profiles"   validate:"dive"`
	Templates []models.OperationTemplate       `json:"templates"  validate:"dive"`
	Readings  []models.FieldReading            `json:"readings"   validate:"dive"`
	TaskTypes []models.TaskType                `json:"task_types" validate:"dive"`
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatYAML)
}

// Load reads a catalog file, choosing the decoder from its extension.
// An empty path loads the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	catalog, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}

	return catalog, nil
}

// FormatOf maps a file extension to a catalog format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Parse decodes, schema-checks and validates a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	document, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	err = validateSchema(document)
	if err != nil {
		return nil, err
	}

	var catalog Catalog

	err = json.Unmarshal(document, &catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	err = catalog.Validate()
	if err != nil {
		return nil, err
	}

	return &catalog, nil
}

// toJSON normalises a document to JSON so one schema and one set of struct
// tags serve both formats.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var document any

		err := yaml.Unmarshal(data, &document)
		if err != nil {
			return nil, fmt.Errorf("failed to parse yaml catalog: %w", err)
		}

		if document == nil {
			document = map[string]any{}
		}

		return json.Marshal(document)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func validateSchema(document []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("failed to validate catalog: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidCatalog, strings.Join(problems, "; "))
	}

	return nil
}

// Validate checks struct tags and the cross-references between sections:
// unique ids, valid profile ranges, and template fields bound to known sensors.
func (c *Catalog) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	registry, err := c.SensorRegistry()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	_, err = c.ProfileStore()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	err = validateTemplates(c.Templates, registry)
	if err != nil {
		return err
	}

	err = unique("reading", c.Readings, func(r models.FieldReading) string { return r.FieldID })
	if err != nil {
		return err
	}

	_, err = c.TaskTypeStore()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	return nil
}

func validateTemplates(templates []models.OperationTemplate, registry *sensors.Registry) error {
	err := unique("template", templates, func(t models.OperationTemplate) string { return t.ID })
	if err != nil {
		return err
	}

	for _, template := range templates {
		err = unique("field of template "+template.ID, template.Fields, func(f models.FieldDefinition) string { return f.ID })
		if err != nil {
			return err
		}

		for _, field := range template.Fields {
			if err := field.Validate(); err != nil {
				return fmt.Errorf("%w: template %s: %w", ErrInvalidCatalog, template.ID, err)
			}

			if field.SensorID != nil {
				if _, ok := registry.Lookup(field.SensorID); !ok {
					return fmt.Errorf("%w: template %s field %s: unknown sensor %q",
						ErrInvalidCatalog, template.ID, field.ID, *field.SensorID)
				}
			}
		}
	}

	return nil
}

func unique[T any](what string, items []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidCatalog, what, key)
		}

		seen[key] = struct{}{}
	}

	return nil
}

// SensorRegistry builds the sensor registry from the catalog.
func (c *Catalog) SensorRegistry() (*sensors.Registry, error) {
	return sensors.NewRegistry(c.Sensors)
}

// ProfileStore builds the profile store from the catalog.
func (c *Catalog) ProfileStore() (*profiles.Store, error) {
	return profiles.NewStore(c.Profiles)
}

// TaskTypeStore builds the task type catalog with its parameter tables.
func (c *Catalog) TaskTypeStore() (*tasktypes.Store, error) {
	return tasktypes.NewStore(c.TaskTypes)
}

// MergeProfiles replaces catalog profiles by kind and appends new kinds.
func (c *Catalog) MergeProfiles(imported []models.OptimalConditionProfile) {
	for _, profile := range imported {
		replaced := false

		for idx := range c.Profiles {
			if c.Profiles[idx].Kind == profile.Kind {
				c.Profiles[idx] = profile
				replaced = true

				break
			}
		}

		if !replaced {
			c.Profiles = append(c.Profiles, profile)
		}
	}
}
