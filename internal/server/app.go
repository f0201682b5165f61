// Package server wires configuration, storage backends and services into
// the HTTP application and runs it until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
	"github.com/dmitrijs2005/complaintdesk/internal/logging"
	"github.com/dmitrijs2005/complaintdesk/internal/server/auth"
	"github.com/dmitrijs2005/complaintdesk/internal/server/config"
	"github.com/dmitrijs2005/complaintdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/complaintdesk/internal/server/ratelimit"
	"github.com/dmitrijs2005/complaintdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/complaintdesk/internal/server/services"
	"github.com/dmitrijs2005/complaintdesk/internal/server/sessions"
	"github.com/dmitrijs2005/complaintdesk/internal/server/storage"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
	secretKeySize   = 32
)

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *redis.Client
	limiter *ratelimit.Limiter
	memory  *sessions.MemoryStore
	auth    *services.AuthService
	handler http.Handler
}

// NewApp connects to the configured backends, runs migrations and builds
// the HTTP handler. Resources acquired before a failure are released.
func NewApp(ctx context.Context, c *config.Config) (_ *App, err error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))
	app := &App{config: c, logger: logger}

	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	rm, err := app.initDB(ctx)
	if err != nil {
		return nil, err
	}

	store, err := app.initSessionStore(ctx)
	if err != nil {
		return nil, err
	}

	uploads, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	secret, err := app.secretKey(ctx)
	if err != nil {
		return nil, err
	}

	app.limiter = ratelimit.New(c.RateLimitWindow, c.RateLimitMax)
	app.auth = services.NewAuthService(
		app.db,
		rm,
		auth.NewHasher(c.BcryptCost),
		app.limiter,
		sessions.NewManager(store, c.SessionTTL),
		auth.NewTokenIssuer(secret, c.TokenTTL),
		logger,
	)
	complaintSvc := services.NewComplaintService(app.db, rm, uploads, logger)

	opts := httpapi.Options{
		CookieSecure:   c.CookieSecure,
		MaxUploadSize:  c.MaxUploadSize,
		TrustedProxies: c.TrustedProxies,
	}
	if local, ok := uploads.(*storage.LocalStorage); ok {
		opts.UploadDir = local.Dir()
	}

	h, err := httpapi.NewHandler(app.auth, complaintSvc, logger, opts)
	if err != nil {
		return nil, err
	}
	app.handler, err = h.Router()
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Auth exposes the authentication service for the admin tooling.
func (app *App) Auth() *services.AuthService {
	return app.auth
}

func (app *App) initDB(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == config.MemoryDSN {
		app.logger.Warn(ctx, "using in-memory repositories, data will not survive a restart")
		return repomanager.NewInMemoryRepositoryManager(), nil
	}

	db, err := openDB(app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return rm, nil
}

func (app *App) initSessionStore(ctx context.Context) (sessions.Store, error) {
	if app.config.SessionBackend != config.SessionBackendRedis {
		app.memory = sessions.NewMemoryStore()
		return app.memory, nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err := app.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping error: %w", err)
	}

	return sessions.NewRedisStore(app.redis), nil
}

func (app *App) initStorage(ctx context.Context) (storage.Storage, error) {
	if app.config.UploadBackend == config.UploadBackendS3 {
		st, err := storage.NewS3Storage(ctx, storage.S3Config{
			AccessKey:    app.config.S3AccessKey,
			SecretKey:    app.config.S3SecretKey,
			Bucket:       app.config.S3Bucket,
			Region:       app.config.S3Region,
			BaseEndpoint: app.config.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		return st, nil
	}

	st, err := storage.NewLocalStorage(app.config.UploadDir, "/uploads")
	if err != nil {
		return nil, fmt.Errorf("upload dir error: %w", err)
	}
	return st, nil
}

func (app *App) secretKey(ctx context.Context) ([]byte, error) {
	if app.config.SecretKey != "" {
		return []byte(app.config.SecretKey), nil
	}

	app.logger.Warn(ctx, "no secret key configured, generated a per-process key; tokens will not survive a restart")
	return common.GenerateRandByteArray(secretKeySize)
}

// sweep drops stale rate-limit buckets and expired in-memory sessions.
func (app *App) sweep(ctx context.Context) {
	buckets := app.limiter.Sweep()
	var expired int
	if app.memory != nil {
		expired = app.memory.Sweep(time.Now())
	}
	if buckets > 0 || expired > 0 {
		app.logger.Debug(ctx, "swept", "buckets", buckets, "sessions", expired)
	}
}

func (app *App) startSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.sweep(ctx)
		}
	}
}

func (app *App) serveHTTP(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully and
// releases the backends.
func (app *App) Run(ctx context.Context) error {
	defer app.Close()

	ln, err := net.Listen("tcp", app.config.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", app.config.HTTPAddr, err)
	}

	return app.run(ctx, ln)
}

func (app *App) run(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweeper(ctx)
	}()

	err := app.serveHTTP(ctx, ln)
	cancel()
	wg.Wait()

	return err
}

// Close releases the database and redis connections.
func (app *App) Close() {
	ctx := context.Background()
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
}
