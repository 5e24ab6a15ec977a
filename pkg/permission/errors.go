package permission

import "errors"

var (
	// ErrRoleNotFound is returned when a referenced role does not exist.
	ErrRoleNotFound = errors.New("permission.role_not_found")

	// ErrCatalogLoad is returned when the permission catalog cannot be
	// loaded from its source.
	ErrCatalogLoad = errors.New("permission.catalog_load_failed")
)
