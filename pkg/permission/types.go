package permission

import (
	"context"

	"github.com/google/uuid"
)

// Permission is a catalog entry: a fine-grained capability code grouped
// under a coarse category. Codes follow the <ACTION>_<SCOPE> convention,
// e.g. "STOCK_VIEW" or "CREATE_CHARGE".
type Permission struct {
	Code     string `json:"code" yaml:"code"`
	Category string `json:"category" yaml:"category"`
}

// Role is a named set of permission codes scoped to exactly one tenant.
// Two roles may share a name across tenants but not within one.
type Role struct {
	ID              uuid.UUID `json:"id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	Name            string    `json:"name"`
	Level           int       `json:"level"` // 1..10
	PermissionCodes []string  `json:"permission_codes"`
}

// RoleStore loads role documents from a data source.
type RoleStore interface {
	// GetRole retrieves a role by id. Returns ErrRoleNotFound when no
	// role matches.
	GetRole(ctx context.Context, id uuid.UUID) (*Role, error)
}

// CatalogSource loads the permission catalog, keyed by permission code.
type CatalogSource interface {
	Load(ctx context.Context) (map[string]Permission, error)
}
