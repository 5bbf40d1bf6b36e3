// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/hawkersg/hawker-backend/internal/auth"
	"github.com/hawkersg/hawker-backend/internal/business"
	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/consumer"
	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/corppass"
	"github.com/hawkersg/hawker-backend/internal/favourite"
	"github.com/hawkersg/hawker-backend/internal/hawker"
	"github.com/hawkersg/hawker-backend/internal/health"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/middleware"
	"github.com/hawkersg/hawker-backend/internal/review"
	"github.com/hawkersg/hawker-backend/internal/server"
	"github.com/hawkersg/hawker-backend/internal/user"
	"github.com/hawkersg/hawker-backend/migrations"
)

// app holds the long-lived dependencies. closers run in reverse order of
// acquisition.
type app struct {
	db        *core.Database
	redis     *core.Redis
	telemetry *core.Telemetry
	health    *health.Handler
	server    *server.Server

	closers []func() error
}

func (a *app) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Error("release resource", "error", err)
		}
	}
	logger.Info("stopped")
}

// build connects infrastructure, runs migrations and mounts every route.
// On error the partially built app is returned so the caller can release
// what was acquired.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	tel, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	} else if tel != nil {
		a.telemetry = tel
		logger.Info("tracing enabled", "endpoint", cfg.Otel.Endpoint)
	}

	if a.db, err = core.NewDatabase(ctx, cfg.Database); err != nil {
		return a, err
	}
	a.closers = append(a.closers, a.db.Close)

	applied, err := migrations.Apply(ctx, a.db.DB)
	if err != nil {
		return a, err
	}
	logger.Info("schema up to date", "applied", applied)

	if a.redis, err = core.NewRedis(ctx, cfg.Redis); err != nil {
		return a, err
	}
	a.closers = append(a.closers, a.redis.Close)

	if err := ensureSigningKeys(cfg, logger); err != nil {
		return a, err
	}
	signer, err := auth.NewSigner(cfg.JWT)
	if err != nil {
		return a, err
	}
	logger.Info("token signer ready", "kid", signer.KeyID())

	photos, err := media.NewStore(cfg.Upload, logger)
	if err != nil {
		return a, err
	}

	a.health = health.NewHandler(a.db, a.redis)
	a.health.AddCheck("uploads", health.CheckerFunc(photos.Ping))
	a.server = server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: a.health,
		Logger:        logger,
	})

	mount(a, cfg, signer, photos, logger)
	return a, nil
}

func mount(a *app, cfg *config.Config, signer *auth.Signer, photos *media.Store, logger *slog.Logger) {
	db := a.db.DB
	tx := core.NewTransactor(db)

	users := user.NewService(user.NewRepository(db), logger)
	consumers := consumer.NewService(tx, db, users, photos, cfg.Consumer, logger)
	businesses := business.NewService(tx, db, users, photos, cfg.Location(), cfg.Business, logger)

	sessions := auth.NewService(auth.NewRepository(db), signer, a.redis.Client)
	sessions.RegisterProvider(string(user.KindConsumer), consumers)
	sessions.RegisterProvider(string(user.KindBusiness), businesses)

	corppassSvc := corppass.NewService(cfg.CorpPass,
		corppass.NewRedisStateStore(a.redis.Client, cfg.CorpPass.StateTTL), logger)

	consumerHandler := consumer.NewHandler(consumers, photos)
	favourites := favourite.NewHandler(favourite.NewService(tx, db, consumers))
	reviews := review.NewHandler(review.NewService(tx, db, consumers, logger))

	limiter := middleware.NewLimiter(a.redis.Client, logger)
	rl := cfg.RateLimit
	policy := func(name string, n, burst int, key middleware.KeyFunc) func(http.Handler) http.Handler {
		return limiter.Middleware(middleware.Policy{
			Name:     name,
			Limit:    middleware.Every(rl.Window, n, burst),
			Key:      key,
			FailOpen: true,
		})
	}

	router := a.server.Router()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer(logger),
		middleware.Logger(logger),
		middleware.Tracing,
	)
	router.Use(policy("global", rl.Requests, rl.Burst, middleware.ByClient))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()), middleware.CORS(cfg.CORS))

	a.health.RegisterRoutes(router)
	router.Get("/.well-known/jwks.json", signer.JWKSHandler())
	router.Handle(photos.PublicPath()+"/*", photos.Handler())

	authenticator := middleware.Authenticator(sessions)
	credentials := policy("credentials", rl.LoginRequests, rl.LoginBurst, middleware.ByClientAndRoute)
	perAccount := policy("account", rl.Requests, rl.Burst, middleware.ByAccount)

	router.Route("/v1", func(r chi.Router) {
		auth.NewHandler(sessions).RegisterRoutes(r, authenticator, credentials)
		user.NewHandler(users, sessions).RegisterRoutes(r, authenticator)
		corppass.NewHandler(corppassSvc).RegisterRoutes(r)

		business.NewHandler(businesses, photos).RegisterRoutes(r, authenticator, credentials)
		hawker.NewHandler(hawker.NewService(db, businesses)).RegisterRoutes(r)
		reviews.RegisterTargetRoutes(r)

		r.With(credentials).Post("/consumers/signup", consumerHandler.Signup)
		r.Route("/consumers/{consumerID}", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireUserType(string(user.KindConsumer)))
			r.Use(middleware.RequireSelf("consumerID"))
			r.Use(perAccount)

			consumerHandler.RegisterRoutes(r)
			favourites.RegisterRoutes(r)
			reviews.RegisterRoutes(r)
		})
	})
}

// ensureSigningKeys creates a throwaway key pair for local runs so a fresh
// checkout can boot without a manual keygen step.
func ensureSigningKeys(cfg *config.Config, logger *slog.Logger) error {
	if !cfg.IsDevelopment() {
		return nil
	}

	_, err := os.Stat(cfg.JWT.PrivateKeyPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat private key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.JWT.PrivateKeyPath), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
		return err
	}
	logger.Warn("generated development signing keys", "private_key", cfg.JWT.PrivateKeyPath)
	return nil
}
