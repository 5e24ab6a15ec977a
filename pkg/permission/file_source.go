package permission

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileCatalogSource loads the permission catalog from a YAML file.
//
// Expected format, permissions grouped by category:
//
//	categories:
//	  - name: STOCK
//	    permissions:
//	      - STOCK_VIEW
//	      - STOCK_MANAGE
//	  - name: GENERAL
//	    permissions:
//	      - VIEW_GENERAL_CATEGORY
type fileCatalogSource struct {
	path string
}

type catalogFile struct {
	Categories []struct {
		Name        string   `yaml:"name"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"categories"`
}

// NewFileCatalogSource creates a CatalogSource reading the given YAML file.
// The file is read on every Load call so the catalog can be reloaded by
// reconstructing the Aggregator.
func NewFileCatalogSource(path string) CatalogSource {
	return &fileCatalogSource{path: path}
}

func (s *fileCatalogSource) Load(ctx context.Context) (map[string]Permission, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrCatalogLoad, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrCatalogLoad, fmt.Errorf("parse %s: %w", s.path, err))
	}

	entries := make(map[string]Permission)
	for _, category := range file.Categories {
		if category.Name == "" {
			return nil, errors.Join(ErrCatalogLoad, fmt.Errorf("%s: category with empty name", s.path))
		}
		for _, code := range category.Permissions {
			if code == "" {
				continue
			}
			entries[code] = Permission{Code: code, Category: category.Name}
		}
	}
	return entries, nil
}
