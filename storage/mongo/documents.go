package mongo

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestora/backend/pkg/membership"
	"github.com/gestora/backend/pkg/permission"
	"github.com/gestora/backend/svc/consolidation"
)

// Collection names.
const (
	usersCollection     = "users"
	companiesCollection = "companies"
	rolesCollection     = "roles"
)

// Stored documents keep ids as canonical uuid strings; the mapping layer
// below converts to and from the domain types.

type entryDoc struct {
	TenantID string `bson:"tenant_id"`
	RoleID   string `bson:"role_id"`
}

type userDoc struct {
	ID              string     `bson:"_id"`
	Email           string     `bson:"email"`
	Name            string     `bson:"name"`
	SystemRole      string     `bson:"system_role"`
	LegacyCompanyID *string    `bson:"legacy_company_id,omitempty"`
	LegacyRoleID    *string    `bson:"legacy_role_id,omitempty"`
	Memberships     []entryDoc `bson:"memberships"`
	CurrentTenantID *string    `bson:"current_tenant_id,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

type memberDoc struct {
	UserID   string    `bson:"user_id"`
	JoinedAt time.Time `bson:"joined_at"`
}

type companyDoc struct {
	ID          string      `bson:"_id"`
	Name        string      `bson:"name"`
	Description string      `bson:"description,omitempty"`
	Category    string      `bson:"category,omitempty"`
	OwnerID     string      `bson:"owner_id"`
	Members     []memberDoc `bson:"members"`
	CreatedAt   time.Time   `bson:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at"`
}

type roleDoc struct {
	ID              string   `bson:"_id"`
	TenantID        string   `bson:"tenant_id"`
	Name            string   `bson:"name"`
	Level           int      `bson:"level"`
	PermissionCodes []string `bson:"permission_codes"`
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: field %s holds %q: %v", ErrCorruptDocument, field, value, err)
	}
	return id, nil
}

func parseOptionalID(field string, value *string) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := parseID(field, *value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toUserDoc(u *membership.User) userDoc {
	doc := userDoc{
		ID:              u.ID.String(),
		Email:           u.Email,
		Name:            u.Name,
		SystemRole:      string(u.SystemRole),
		LegacyCompanyID: optionalIDString(u.LegacyCompanyID),
		LegacyRoleID:    optionalIDString(u.LegacyRoleID),
		CurrentTenantID: optionalIDString(u.CurrentTenantID),
		Memberships:     make([]entryDoc, 0, len(u.Memberships)),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	for _, e := range u.Memberships {
		doc.Memberships = append(doc.Memberships, entryDoc{
			TenantID: e.TenantID.String(),
			RoleID:   e.RoleID.String(),
		})
	}
	return doc
}

func (d userDoc) toDomain() (*membership.User, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	legacyCompany, err := parseOptionalID("legacy_company_id", d.LegacyCompanyID)
	if err != nil {
		return nil, err
	}
	legacyRole, err := parseOptionalID("legacy_role_id", d.LegacyRoleID)
	if err != nil {
		return nil, err
	}
	currentTenant, err := parseOptionalID("current_tenant_id", d.CurrentTenantID)
	if err != nil {
		return nil, err
	}

	u := &membership.User{
		ID:              id,
		Email:           d.Email,
		Name:            d.Name,
		SystemRole:      membership.SystemRole(d.SystemRole),
		LegacyCompanyID: legacyCompany,
		LegacyRoleID:    legacyRole,
		CurrentTenantID: currentTenant,
		Memberships:     make([]membership.Entry, 0, len(d.Memberships)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, e := range d.Memberships {
		tenantID, err := parseID("memberships.tenant_id", e.TenantID)
		if err != nil {
			return nil, err
		}
		roleID, err := parseID("memberships.role_id", e.RoleID)
		if err != nil {
			return nil, err
		}
		u.Memberships = append(u.Memberships, membership.Entry{TenantID: tenantID, RoleID: roleID})
	}
	return u, nil
}

func toCompanyDoc(c *consolidation.Company) companyDoc {
	doc := companyDoc{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		OwnerID:     c.OwnerID.String(),
		Members:     make([]memberDoc, 0, len(c.Members)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, m := range c.Members {
		doc.Members = append(doc.Members, memberDoc{UserID: m.UserID.String(), JoinedAt: m.JoinedAt})
	}
	return doc
}

func (d companyDoc) toDomain() (*consolidation.Company, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := parseID("owner_id", d.OwnerID)
	if err != nil {
		return nil, err
	}

	c := &consolidation.Company{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		OwnerID:     ownerID,
		Members:     make([]consolidation.Member, 0, len(d.Members)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, m := range d.Members {
		userID, err := parseID("members.user_id", m.UserID)
		if err != nil {
			return nil, err
		}
		c.Members = append(c.Members, consolidation.Member{UserID: userID, JoinedAt: m.JoinedAt})
	}
	return c, nil
}

func (d roleDoc) toDomain() (*permission.Role, error) {
	id, err := parseID("_id", d.ID)
	if err != nil {
		return nil, err
	}
	tenantID, err := parseID("tenant_id", d.TenantID)
	if err != nil {
		return nil, err
	}
	return &permission.Role{
		ID:              id,
		TenantID:        tenantID,
		Name:            d.Name,
		Level:           d.Level,
		PermissionCodes: d.PermissionCodes,
	}, nil
}
