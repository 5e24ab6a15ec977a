package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gestora/backend/svc/consolidation"
)

// CompanyStore persists tenant documents. Implements
// consolidation.CompanyStore.
type CompanyStore struct {
	coll *mongo.Collection
}

// NewCompanyStore creates a CompanyStore on the given database.
func NewCompanyStore(db *mongo.Database) *CompanyStore {
	return &CompanyStore{coll: db.Collection(companiesCollection)}
}

// GetByID retrieves a company or consolidation.ErrCompanyNotFound.
func (s *CompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*consolidation.Company, error) {
	var doc companyDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consolidation.ErrCompanyNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

// FindByNamePattern matches names case-insensitively. The pattern is
// treated as a literal substring, not a regular expression, so operator
// input cannot change the query's meaning.
func (s *CompanyStore) FindByNamePattern(ctx context.Context, pattern string) ([]*consolidation.Company, error) {
	filter := bson.M{"name": bson.M{
		"$regex":   regexp.QuoteMeta(pattern),
		"$options": "i",
	}}

	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	var docs []companyDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	companies := make([]*consolidation.Company, 0, len(docs))
	for _, doc := range docs {
		c, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, nil
}

// Save upserts the company document.
func (s *CompanyStore) Save(ctx context.Context, company *consolidation.Company) error {
	doc := toCompanyDoc(company)
	doc.UpdatedAt = time.Now().UTC()

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// Delete removes the company document. Deleting an absent document
// returns consolidation.ErrCompanyNotFound.
func (s *CompanyStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return consolidation.ErrCompanyNotFound
	}
	return nil
}
