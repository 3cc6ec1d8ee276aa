// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"social_backend/internal/app/router"
	authadapters "social_backend/internal/feature/auth/adapters"
	authhandler "social_backend/internal/feature/auth/transport/handler"
	authusecase "social_backend/internal/feature/auth/usecase"
	useradapters "social_backend/internal/feature/user/adapters"
	userhandler "social_backend/internal/feature/user/transport/handler"
	userusecase "social_backend/internal/feature/user/usecase"
	"social_backend/internal/platform/config"
	platformdb "social_backend/internal/platform/db"
	"social_backend/internal/platform/events"
	"social_backend/internal/platform/http/handler"
	jwtmw "social_backend/internal/platform/jwt"
	"social_backend/internal/platform/media"
	"social_backend/internal/platform/metrics"
	"social_backend/internal/platform/mongodb"
	platformredis "social_backend/internal/platform/redis"
	"social_backend/internal/shared/ratelimiter"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "social"

// App is the assembled service.
type App struct {
	Handler http.Handler
	closers []func() error
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases every connection in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build connects every backing service named in cfg and wires the HTTP handler.
// On error, connections opened so far are closed.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app *App, err error) {
	app = &App{}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, err
	}

	ready := map[string]handler.Check{}

	// Storage
	var (
		gdb *gorm.DB
		mdb *mongo.Database
	)
	if cfg.StoreDriver == config.DriverMongo {
		client, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		app.onClose(func() error { return client.Disconnect(context.Background()) })
		ready["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		mdb = db
	} else {
		models := append(useradapters.Models(), &authadapters.SessionModel{})
		db, err := platformdb.Open(cfg, models...)
		if err != nil {
			return nil, err
		}
		if err := trackSQL(app, ready, "database", db); err != nil {
			return nil, err
		}
		gdb = db
	}

	// Redis
	var rdb *redis.Client
	if client, err := platformredis.NewRedisClient(ctx, cfg); err != nil {
		if errors.Is(err, platformredis.ErrDisabled) {
			slog.Info("Redis not configured, running without rate limiting")
		} else {
			slog.Warn("Redis unavailable, running without rate limiting", "address", cfg.RedisAddr, "error", err)
		}
	} else {
		rdb = client
		app.onClose(rdb.Close)
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Repository
	users, err := NewUserRepository(ctx, cfg, gdb, mdb)
	if err != nil {
		return nil, err
	}
	sessionDB := gdb
	if rdb == nil && sessionDB == nil {
		if sessionDB, err = openSessionFallbackDB(cfg); err != nil {
			return nil, err
		}
		if err := trackSQL(app, ready, "session_database", sessionDB); err != nil {
			return nil, err
		}
	}
	sessions, err := NewSessionRepository(rdb, sessionDB)
	if err != nil {
		return nil, err
	}

	avatars, closeAvatars, err := NewAvatarStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.onClose(closeAvatars)

	publisher := newPublisher(app, cfg)
	m := metrics.New(metricsNamespace)

	// Usecase
	tokens := jwtmw.NewManager(secret)
	authUC := authusecase.NewAuthUsecase(users, sessions, tokens, publisher, cfg.SessionTTL)
	resolver := userusecase.NewIdentityResolver(users)
	graphUC := userusecase.NewGraphUsecase(users, publisher, m)
	feedUC := userusecase.NewFeedUsecase(users)
	pipeline := userusecase.NewAvatarPipeline(media.NewResizer(), avatars, cfg.UploadsRoot)
	profileUC := userusecase.NewProfileUsecase(users, pipeline, publisher)

	// Handler
	authH := authhandler.NewAuthHandler(authUC, cfg.CookieSecure)
	userH := userhandler.NewUserHandler(resolver, profileUC, graphUC, feedUC, authUC, cfg.CookieSecure)

	var limiter *ratelimiter.RateLimiter
	if rdb != nil {
		limiter = ratelimiter.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	deps := router.Deps{
		Logger:      logger,
		Auth:        authH,
		Users:       userH,
		Verifier:    authUC,
		Metrics:     m,
		Limiter:     limiter,
		Ready:       ready,
		CORSOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.AvatarStore == config.AvatarStoreDisk {
		deps.StaticRoot = cfg.UploadsRoot
	}
	app.Handler = router.NewRouter(deps)
	return app, nil
}

// trackSQL registers the pool behind db for readiness checks and shutdown.
func trackSQL(app *App, ready map[string]handler.Check, name string, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	app.onClose(sqlDB.Close)
	ready[name] = sqlDB.PingContext
	return nil
}

// newPublisher connects to RabbitMQ when configured. Events are dropped otherwise.
func newPublisher(app *App, cfg *config.Config) userusecase.EventPublisher {
	if cfg.RabbitMQURL == "" {
		return events.NoopPublisher{}
	}
	p, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, domain events are disabled", "error", err)
		return events.NoopPublisher{}
	}
	app.onClose(func() error {
		p.Close()
		return nil
	})
	return p
}

// jwtSecret returns the configured signing secret. Outside production a random one is generated when unset,
// so tokens do not survive restarts.
func jwtSecret(cfg *config.Config) (string, error) {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret, nil
	}
	if cfg.IsProduction() {
		return "", fmt.Errorf("JWT_SECRET must be set in production")
	}
	slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
