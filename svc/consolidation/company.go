package consolidation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gestora/backend/pkg/membership"
)

// Member is a roster entry on a company document.
type Member struct {
	UserID   uuid.UUID `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// Company is the tenant document. Name is expected to be unique per
// logical business, but the store does not enforce it: duplicate records
// differing only in ID exist and are what this package repairs.
type Company struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CompanyStore is the persistence port for tenant documents.
type CompanyStore interface {
	// FindByNamePattern returns companies whose name matches the
	// pattern, case-insensitively. Pattern syntax is store-defined.
	FindByNamePattern(ctx context.Context, pattern string) ([]*Company, error)

	Save(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserStore is the persistence port for the user queries and rewrites the
// consolidation needs. Each Find covers one of the three places a user
// document can reference a tenant.
type UserStore interface {
	FindByLegacyCompany(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error)
	FindByMembershipTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error)
	FindByCurrentTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error)

	Save(ctx context.Context, user *membership.User) error
}
