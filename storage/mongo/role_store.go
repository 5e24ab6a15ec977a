package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/gestora/backend/pkg/permission"
)

// RoleStore reads role documents. Implements permission.RoleStore.
type RoleStore struct {
	coll *mongo.Collection
}

// NewRoleStore creates a RoleStore on the given database.
func NewRoleStore(db *mongo.Database) *RoleStore {
	return &RoleStore{coll: db.Collection(rolesCollection)}
}

// GetRole retrieves a role or permission.ErrRoleNotFound.
func (s *RoleStore) GetRole(ctx context.Context, id uuid.UUID) (*permission.Role, error) {
	var doc roleDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, permission.ErrRoleNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}
