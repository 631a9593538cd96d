package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"healthbridge/internal/assessment"
	"healthbridge/internal/config"
	"healthbridge/internal/platform/events"
	"healthbridge/internal/platform/logging"
	"healthbridge/internal/platform/ratelimit"
	"healthbridge/internal/platform/telegram"
	"healthbridge/internal/report"
	"healthbridge/internal/triage"
	"healthbridge/migrations"
)

const (
	dbConnectAttempts = 10
	shutdownTimeout   = 15 * time.Second
)

// limiterIdle is how long a client may stay quiet before its bucket is
// forgotten.
const limiterIdle = 10 * time.Minute

// Run starts the HTTP service and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	catalog, err := LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	log.Info().Str("version", catalog.Version()).Int("conditions", catalog.Len()).Msg("condition catalog loaded")

	repo, closeDB := openRepository(ctx, cfg.Database)
	defer closeDB()

	publisher, closeRedis := openPublisher(ctx, cfg.Redis)
	defer closeRedis()

	var reportSvc assessment.ReportService
	tgClient := telegram.NewClient(cfg.Telegram.Token)
	if tgClient.Enabled() {
		if cfg.Telegram.DoctorChatID == 0 {
			log.Warn().Msg("DOCTOR_CHAT_ID is not set or invalid. Emergency reports will not be delivered.")
		}
		reportSvc = report.NewService(tgClient, cfg.Telegram.DoctorChatID, cfg.Telegram.FontPath)
	} else {
		log.Info().Msg("telegram token not set, emergency reports disabled")
	}

	svc := assessment.NewService(triage.NewEngine(catalog), repo, publisher, reportSvc)
	limiter := ratelimit.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go limiter.Run(ctx, time.Minute, limiterIdle)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           NewRouter(assessment.NewHandler(svc), limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewRouter mounts the triage API under /api.
func NewRouter(h *assessment.Handler, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.Middleware)
		assessment.RegisterRoutes(r, h)
	})
	return r
}

// CORS for the browser front-end
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-Id, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoadCatalog returns the catalog at path, or the embedded one when path is
// empty.
func LoadCatalog(path string) (*triage.Catalog, error) {
	if path == "" {
		return triage.DefaultCatalog(), nil
	}
	catalog, err := triage.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}

func openRepository(ctx context.Context, cfg config.DatabaseConfig) (assessment.Repository, func()) {
	if cfg.URL == "" {
		log.Info().Msg("DATABASE_URL not set, keeping assessments in memory")
		return assessment.NewMemoryRepository(), func() {}
	}

	db, err := connectDB(ctx, cfg.URL)
	if err != nil {
		log.Error().Err(err).Msg("could not connect to database, keeping assessments in memory")
		return assessment.NewMemoryRepository(), func() {}
	}
	log.Info().Msg("connected to database")

	if cfg.RunMigrations {
		if err := runMigrations(cfg.URL); err != nil {
			log.Error().Err(err).Msg("migration failed")
		} else {
			log.Info().Msg("migrations applied")
		}
	}
	return assessment.NewRepository(db), func() { db.Close() }
}

func connectDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < dbConnectAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max", dbConnectAttempts).Msg("waiting for database")

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	db.Close()
	return nil, err
}

func runMigrations(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

func openPublisher(ctx context.Context, cfg config.RedisConfig) (events.Publisher, func()) {
	if cfg.Addr == "" {
		return events.NopPublisher{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error().Err(err).Str("addr", cfg.Addr).Msg("redis unavailable, assessment events disabled")
		client.Close()
		return events.NopPublisher{}, func() {}
	}

	log.Info().Str("addr", cfg.Addr).Str("channel", cfg.Channel).Msg("publishing assessment events to redis")
	return events.NewRedisPublisher(client, cfg.Channel), func() { client.Close() }
}
