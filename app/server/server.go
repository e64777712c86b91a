// Package server assembles the storefront from configuration and serves it.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/flowerssaints/storefront/app/admin"
	"github.com/flowerssaints/storefront/app/analytics"
	"github.com/flowerssaints/storefront/app/auth"
	"github.com/flowerssaints/storefront/app/catalog"
	"github.com/flowerssaints/storefront/app/categories"
	"github.com/flowerssaints/storefront/app/config"
	"github.com/flowerssaints/storefront/app/email"
	"github.com/flowerssaints/storefront/app/health"
	"github.com/flowerssaints/storefront/app/marketing"
	"github.com/flowerssaints/storefront/app/media"
	"github.com/flowerssaints/storefront/app/newsletter"
	"github.com/flowerssaints/storefront/app/ratelimit"
	"github.com/flowerssaints/storefront/app/scrape"
	"github.com/flowerssaints/storefront/app/storefront"
	"github.com/flowerssaints/storefront/app/tasks"
	"github.com/flowerssaints/storefront/app/tracking"
	"github.com/flowerssaints/storefront/models"
)

const (
	clickBuffer     = 1024
	importTimeout   = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

// App owns the router and the background machinery behind it.
type App struct {
	cfg     *config.Config
	log     *logrus.Logger
	rdb     *redis.Client
	workers *tracking.Workers
	tasks   *tasks.Runner
	router  http.Handler
}

// New wires repositories, services and handlers. Redis and S3 are optional:
// without them rate limiting, token revocation and uploads are disabled.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, log *logrus.Logger) (*App, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	rdb := connectRedis(ctx, cfg.Redis, log)

	sender, err := email.NewSenderFromConfig(ctx, cfg.Email, log)
	if err != nil {
		return nil, err
	}
	renderer, err := email.NewRenderer(cfg.Server.BaseURL, cfg.Email.From)
	if err != nil {
		return nil, err
	}
	mailer := email.NewMailer(renderer, sender, log)

	var uploader admin.Uploader = media.Disabled{}
	if cfg.Storage.Bucket != "" {
		s3u, err := media.NewS3Uploader(ctx, cfg.Storage, cfg.Email.AWSAccessKey, cfg.Email.AWSSecretKey)
		if err != nil {
			return nil, err
		}
		uploader = s3u
	} else {
		log.Warn("AWS_S3_BUCKET not set, image uploads disabled")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("AUTH_SECRET not set, using an ephemeral signing key")
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	clicksRepo := models.NewClicksRepository(db)
	subscribersRepo := models.NewSubscribersRepository(db)
	campaignsRepo := models.NewCampaignsRepository(db)
	usersRepo := models.NewUsersRepository(db)

	runner := tasks.NewRunner(log, tasks.DefaultTimeout)
	workers := tracking.StartWorkers(cfg.Server.ClickWorkers, clickBuffer, clicksRepo, log)

	sessions := auth.NewService(usersRepo, secret, cfg.Auth.TokenTTL, rdb)
	guard := auth.NewMiddleware(sessions, cfg.Auth.CookieName, log)

	handlers := Handlers{
		Catalog:    catalog.NewCatalogHandler(productsRepo, log),
		Categories: categories.NewCategoryHandler(categoriesRepo, log),
		Storefront: storefront.NewHandler(productsRepo, categoriesRepo, cfg.Server.BaseURL, log),
		Tracking:   tracking.NewHandler(clicksRepo, productsRepo, workers, log),
		Analytics:  analytics.NewHandler(analytics.NewService(clicksRepo, cfg.Affiliate.RevenuePerClick), log),
		Newsletter: newsletter.NewHandler(
			newsletter.NewService(subscribersRepo, mailer, runner, log),
			ratelimit.New(rdb, "newsletter", 5, time.Hour),
			log,
		),
		Marketing: marketing.NewHandler(
			marketing.NewService(subscribersRepo, productsRepo, campaignsRepo, mailer, log),
			log,
		),
		Auth: auth.NewHandler(
			sessions,
			ratelimit.New(rdb, "login", 10, 15*time.Minute),
			cfg.Auth.CookieName,
			cfg.IsProduction(),
			log,
		),
		Admin:  admin.NewHandler(productsRepo, uploader, scrape.NewFetcher(importTimeout), cfg.Affiliate.DefaultTag, log),
		Health: health.NewHandler(health.SQLChecker{DB: sqlDB}, cfg.Server.Environment, log),
	}

	return &App{
		cfg:     cfg,
		log:     log,
		rdb:     rdb,
		workers: workers,
		tasks:   runner,
		router:  NewRouter(handlers, guard.RequireAdmin, []string{cfg.Server.BaseURL}, log),
	}, nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log logrus.FieldLogger) *redis.Client {
	if cfg.Addr == "" {
		log.Warn("REDIS_ADDR not set, rate limiting and token revocation disabled")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable at startup")
	}
	return rdb
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.log.WithField("addr", srv.Addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.Close()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	a.Close()
	if err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}

// Close drains pending clicks and background tasks. Call after the HTTP
// server has stopped accepting requests.
func (a *App) Close() {
	a.workers.Close()
	a.tasks.Wait()
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close redis client")
		}
	}
}
