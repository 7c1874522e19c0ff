package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FlagStore persists which wallets finished onboarding
type FlagStore interface {
	IsVerified(ctx context.Context, wallet string) (bool, error)
	SetVerified(ctx context.Context, wallet string) error
}

func flagID(wallet string) string {
	return FlagKey(strings.ToLower(strings.TrimSpace(wallet)))
}

type memoryFlagStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func NewMemoryFlagStore() FlagStore {
	return &memoryFlagStore{flags: make(map[string]bool)}
}

func (s *memoryFlagStore) IsVerified(ctx context.Context, wallet string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[flagID(wallet)], nil
}

func (s *memoryFlagStore) SetVerified(ctx context.Context, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flagID(wallet)] = true
	return nil
}

type flagDocument struct {
	ID        string    `bson:"_id"`
	Wallet    string    `bson:"wallet"`
	Value     bool      `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoFlagStore struct {
	collection *mongo.Collection
}

// NewMongoFlagStore keeps one document per verified wallet in collection
func NewMongoFlagStore(collection *mongo.Collection) FlagStore {
	return &mongoFlagStore{collection: collection}
}

// ConnectMongo opens a client for uri and pings it
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}

func (s *mongoFlagStore) IsVerified(ctx context.Context, wallet string) (bool, error) {
	var doc flagDocument
	err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: flagID(wallet)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read onboarding flag: %w", err)
	}
	return doc.Value, nil
}

func (s *mongoFlagStore) SetVerified(ctx context.Context, wallet string) error {
	filter := bson.D{{Key: "_id", Value: flagID(wallet)}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "wallet", Value: strings.TrimSpace(wallet)},
			{Key: "value", Value: true},
			{Key: "updated_at", Value: time.Now().UTC()},
		}},
	}
	_, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write onboarding flag: %w", err)
	}
	return nil
}
