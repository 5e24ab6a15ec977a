package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gestora/backend/pkg/membership"
)

// UserStore persists user documents, including both membership
// representations. Implements consolidation.UserStore.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a UserStore on the given database.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// GetByID retrieves a user or membership.ErrUserNotFound.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, membership.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// FindByLegacyCompany returns users whose legacy company field points at
// the tenant.
func (s *UserStore) FindByLegacyCompany(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(ctx, bson.M{"legacy_company_id": tenantID.String()})
}

// FindByMembershipTenant returns users whose membership list contains an
// entry for the tenant.
func (s *UserStore) FindByMembershipTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(ctx, bson.M{"memberships.tenant_id": tenantID.String()})
}

// FindByCurrentTenant returns users whose session tenant context points at
// the tenant.
func (s *UserStore) FindByCurrentTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(ctx, bson.M{"current_tenant_id": tenantID.String()})
}

// Save upserts the user document.
func (s *UserStore) Save(ctx context.Context, user *membership.User) error {
	doc := toUserDoc(user)
	doc.UpdatedAt = time.Now().UTC()

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *UserStore) find(ctx context.Context, filter bson.M) ([]*membership.User, error) {
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*membership.User, 0, len(docs))
	for _, doc := range docs {
		u, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}
