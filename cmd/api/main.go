package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/formatrack/training-system/internal/api"
	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
	"github.com/formatrack/training-system/internal/core/service"
	"github.com/formatrack/training-system/internal/infrastructure/cache"
	"github.com/formatrack/training-system/internal/infrastructure/config"
	mongostore "github.com/formatrack/training-system/internal/infrastructure/db/mongo"
	redisstore "github.com/formatrack/training-system/internal/infrastructure/db/redis"
	"github.com/formatrack/training-system/internal/infrastructure/mail"
	"github.com/formatrack/training-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("store connection failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(shutdownCtx)
	}()

	if err := mongostore.Bootstrap(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("store bootstrap failed")
	}

	cacheStore, rdb := buildCache(ctx, cfg, log)
	mailer := buildMailer(cfg, log)

	if err := seedAdmin(ctx, db, mailer, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	e := api.NewRouter(db, rdb, cacheStore, mailer, cfg, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}

// buildCache prefers Redis when an address is configured and falls back to
// the in-process cache otherwise.
func buildCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.Cache, *redis.Client) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("no redis configured, using in-process cache")
		return cache.NewMemory(), nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	return redisstore.NewCache(rdb), rdb
}

func buildMailer(cfg *config.Config, log zerolog.Logger) ports.Mailer {
	if cfg.SMTP.Host == "" {
		log.Info().Msg("no smtp configured, recovery codes go to the log")
		return mail.NewLogMailer(log)
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}

// seedAdmin creates the default admin account when the login collection has
// no admin yet.
func seedAdmin(ctx context.Context, db *mongo.Database, mailer ports.Mailer, cfg *config.Config, log zerolog.Logger) error {
	accounts := mongostore.NewAccountRepository(db)

	hasAdmin, err := accounts.HasAdmin(ctx)
	if err != nil {
		return err
	}
	if hasAdmin {
		return nil
	}

	auth := service.NewAuthService(accounts, mailer, cfg.JWTSecret, cfg.PasswordSalt, cfg.JWTTTL)
	now := time.Now().UTC()
	_, err = accounts.Create(ctx, &domain.Account{
		Email:        domain.NormalizeEmail(cfg.AdminEmail),
		PasswordHash: auth.HashPassword(cfg.AdminPassword),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrAccountExists) {
		// another instance won the race
		return nil
	}
	if err == nil {
		log.Warn().Str("email", cfg.AdminEmail).Msg("seeded default admin, change its password")
	}
	return err
}
