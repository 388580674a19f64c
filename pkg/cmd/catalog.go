// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"

	"github.com/dukex/agroops/pkg/catalog"
)

// LoadCatalog loads the catalog at path (the built-in one when empty) and
// merges the profiles of profilesXLSX into it when set.
func LoadCatalog(path, profilesXLSX string) (*catalog.Catalog, error) {
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}

	if profilesXLSX == "" {
		return c, nil
	}

	imported, err := catalog.LoadProfilesXLSX(profilesXLSX)
	if err != nil {
		return nil, err
	}

	c.MergeProfiles(imported)

	err = c.Validate()
	if err != nil {
		return nil, fmt.Errorf("catalog with profiles from %s: %w", profilesXLSX, err)
	}

	return c, nil
}
