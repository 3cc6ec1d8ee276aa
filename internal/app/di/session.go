package di

import (
	"fmt"
	"log/slog"

	authadapters "social_backend/internal/feature/auth/adapters"
	"social_backend/internal/feature/auth/usecase"
	"social_backend/internal/platform/config"
	platformdb "social_backend/internal/platform/db"
	"social_backend/internal/platform/session"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// sessionKeyPrefix namespaces session keys in Redis.
const sessionKeyPrefix = "session"

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the SQL database.
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) (usecase.SessionRepository, error) {
	if rdb != nil {
		return session.NewSessionRedis(rdb, sessionKeyPrefix), nil
	}
	if db != nil {
		slog.Warn("Redis unavailable, storing sessions in the SQL database")
		return authadapters.NewSessionGorm(db), nil
	}
	return nil, fmt.Errorf("no session store available")
}

// openSessionFallbackDB opens the sqlite file from cfg for sessions when users live in MongoDB and Redis is down.
func openSessionFallbackDB(cfg *config.Config) (*gorm.DB, error) {
	sqliteCfg := *cfg
	sqliteCfg.StoreDriver = config.DriverSQLite
	sqliteCfg.RunMigrations = true
	return platformdb.Open(&sqliteCfg, &authadapters.SessionModel{})
}
