package di

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"social_backend/internal/feature/user/adapters"
	"social_backend/internal/feature/user/usecase"
	"social_backend/internal/platform/config"
	"social_backend/internal/platform/storage"
)

// NewUserRepository returns the user store for cfg.StoreDriver.
func NewUserRepository(ctx context.Context, cfg *config.Config, db *gorm.DB, mdb *mongo.Database) (usecase.UserRepository, error) {
	if cfg.StoreDriver == config.DriverMongo {
		repo := adapters.NewUserMongo(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create user indexes: %w", err)
		}
		return repo, nil
	}
	return adapters.NewUserGorm(db), nil
}

// NewAvatarStore returns the avatar store for cfg.AvatarStore and a function releasing it.
func NewAvatarStore(ctx context.Context, cfg *config.Config) (usecase.AvatarStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.AvatarStore {
	case config.AvatarStoreDisk, "":
		return storage.NewDiskStore(""), noop, nil
	case config.AvatarStoreMinIO:
		s, err := storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.AvatarStoreGCS:
		s, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredsJSON)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported avatar store %q", cfg.AvatarStore)
	}
}
