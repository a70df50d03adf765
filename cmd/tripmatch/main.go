package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/voyago/tripmatch/internal/application/service"
	"github.com/voyago/tripmatch/internal/config"
	"github.com/voyago/tripmatch/internal/infrastructures/candidates"
	tripstore "github.com/voyago/tripmatch/internal/infrastructures/db/postgres/repo"
	eventsredis "github.com/voyago/tripmatch/internal/infrastructures/db/redis"
	triptracing "github.com/voyago/tripmatch/internal/infrastructures/db/tracing"
	"github.com/voyago/tripmatch/internal/infrastructures/locations"
	fareclient "github.com/voyago/tripmatch/internal/infrastructures/skyfare/http/client"
	transporthttp "github.com/voyago/tripmatch/internal/transport/http"
	"github.com/voyago/tripmatch/migrations"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env, cfg.Log.Level)
	defer func() {
		_ = log.Sync()
	}()

	tp, err := triptracing.Init("tripmatch", cfg.Env, cfg.Jaeger)
	if err != nil {
		log.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	if err := applyMigrations(cfg.DB.DSN); err != nil {
		log.Fatal("failed to apply migrations", zap.Error(err))
	}

	ctx := context.Background()

	store, err := tripstore.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis client", zap.Error(err))
		}
	}()

	directory, err := locations.Open()
	if err != nil {
		log.Fatal("failed to load hub reference table", zap.Error(err))
	}
	log.Info("hub reference table loaded", zap.Int("entries", directory.Len()))

	fares := fareclient.NewClient(fareclient.Config{
		BaseURL:       cfg.Skyfare.BaseURL,
		APIKey:        cfg.Skyfare.APIKey,
		Market:        cfg.Skyfare.Market,
		Locale:        cfg.Skyfare.Locale,
		Currency:      cfg.Skyfare.Currency,
		CabinClass:    cfg.Skyfare.CabinClass,
		Adults:        cfg.Skyfare.Adults,
		Timeout:       cfg.Skyfare.Timeout,
		RatePerSecond: cfg.Skyfare.RatePerSecond,
	})

	matchingService := service.NewMatchingService(
		log,
		store,
		directory,
		fares,
		candidates.NewStaticSource(cfg.Matching.Candidates),
		eventsredis.NewEventPublisher(redisClient, cfg.Redis.Channel),
		cfg.Matching.MaxInFlight,
		cfg.Matching.CallTimeout,
	)

	router := transporthttp.NewRouter(log, matchingService)
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown failed", zap.Error(err))
		}
	case err := <-errCh:
		log.Error("http server stopped", zap.Error(err))
	}
}

// applyMigrations runs the embedded goose migrations over a temporary
// database/sql handle; the service itself talks pgx directly.
func applyMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func setupLogger(env, level string) *zap.Logger {
	zapLevel := parseLogLevel(level)

	if env == "local" {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = colorLevelEncoder
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stdout), zapLevel)
		return zap.New(core, zap.AddCaller())
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return log
}

func colorLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch l {
	case zapcore.DebugLevel:
		enc.AppendString(color.MagentaString(l.CapitalString()))
	case zapcore.InfoLevel:
		enc.AppendString(color.BlueString(l.CapitalString()))
	case zapcore.WarnLevel:
		enc.AppendString(color.YellowString(l.CapitalString()))
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		enc.AppendString(color.RedString(l.CapitalString()))
	default:
		enc.AppendString(l.CapitalString())
	}
}

func parseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
