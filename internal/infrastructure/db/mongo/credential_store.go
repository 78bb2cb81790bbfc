package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sertantai/hub-client/internal/core/domain"
)

const credentialCollection = "client_credentials"

// CredentialStore keeps one document per storage namespace.
type CredentialStore struct {
	coll      *mongo.Collection
	namespace string
}

func NewCredentialStore(db *mongo.Database, namespace string) *CredentialStore {
	return &CredentialStore{coll: db.Collection(credentialCollection), namespace: namespace}
}

type mongoCredential struct {
	Namespace string `bson:"_id"`
	Token     string `bson:"token"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	var doc mongoCredential
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.namespace}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrCredentialNotFound
		}
		return "", fmt.Errorf("find credential: %w", err)
	}
	return doc.Token, nil
}

func (s *CredentialStore) Save(ctx context.Context, credential string) error {
	doc := mongoCredential{
		Namespace: s.namespace,
		Token:     credential,
		UpdatedAt: time.Now().UTC().Unix(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.namespace}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Delete(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.namespace}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
