package main

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cairn/research-portal/portal-backend/internal/config"
	"cairn/research-portal/portal-backend/internal/database"
	"cairn/research-portal/portal-backend/internal/funding"
	"cairn/research-portal/portal-backend/internal/onboarding"
	"cairn/research-portal/portal-backend/internal/profiles"
	"cairn/research-portal/portal-backend/internal/projects"
	"cairn/research-portal/portal-backend/pkg/events"
	"cairn/research-portal/portal-backend/pkg/search"
	"cairn/research-portal/portal-backend/pkg/storage"
)

// repositories groups the stores selected by database.driver
type repositories struct {
	db       *gorm.DB
	profiles profiles.Repository
	projects projects.Repository
	funding  funding.Repository
}

func openRepositories(cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	if cfg.Database.Driver != "postgres" {
		logger.Info("Using in-memory storage")
		return &repositories{
			profiles: profiles.NewMemoryRepository(),
			projects: projects.NewMemoryRepository(),
			funding:  funding.NewMemoryRepository(),
		}, nil
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return &repositories{
		db:       db,
		profiles: profiles.NewGormRepository(db),
		projects: projects.NewGormRepository(db),
		funding:  funding.NewGormRepository(db),
	}, nil
}

func (r *repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return database.Close(r.db)
}

func newPublisher(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger) events.Publisher {
	if cfg.SNSTopicARN == "" {
		return events.NewLogPublisher(logger)
	}
	publisher, err := events.NewSNSPublisher(ctx, cfg.Region, cfg.SNSTopicARN)
	if err != nil {
		logger.Warn("SNS unavailable, logging events instead", zap.Error(err))
		return events.NewLogPublisher(logger)
	}
	logger.Info("Publishing events to SNS", zap.String("topic", cfg.SNSTopicARN))
	return publisher
}

func newSearchIndex(cfg config.SearchConfig, logger *zap.Logger) search.Index {
	if len(cfg.ElasticAddresses) == 0 {
		return search.NewMemoryIndex()
	}
	index, err := search.NewElasticIndex(cfg.ElasticAddresses, cfg.Username, cfg.Password, cfg.Index)
	if err != nil {
		logger.Warn("Elasticsearch unavailable, using in-process search", zap.Error(err))
		return search.NewMemoryIndex()
	}
	logger.Info("Indexing projects in Elasticsearch", zap.Strings("addresses", cfg.ElasticAddresses))
	return index
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) storage.S3Client {
	if cfg.Endpoint == "" && cfg.AccessKeyID == "" {
		return storage.NewMemoryS3Client(cfg.PublicBaseURL)
	}
	client, err := storage.NewAWSS3Client(ctx, storage.S3Options{
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UsePathStyle:    cfg.UsePathStyle,
	})
	if err != nil {
		logger.Warn("S3 unavailable, keeping uploads in memory", zap.Error(err))
		return storage.NewMemoryS3Client(cfg.PublicBaseURL)
	}
	logger.Info("Storing uploads in S3", zap.String("bucket", cfg.Bucket))
	return client
}

// newFlagStore returns the onboarding flag store and the mongo client
// backing it, if any
func newFlagStore(ctx context.Context, cfg config.OnboardingConfig, logger *zap.Logger) (onboarding.FlagStore, *mongo.Client) {
	if cfg.MongoURI == "" {
		return onboarding.NewMemoryFlagStore(), nil
	}
	client, err := onboarding.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Warn("MongoDB unavailable, keeping onboarding flags in memory", zap.Error(err))
		return onboarding.NewMemoryFlagStore(), nil
	}
	collection := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	return onboarding.NewMongoFlagStore(collection), client
}
