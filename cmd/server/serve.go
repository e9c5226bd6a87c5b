package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/snapgram/backend/internal/middleware"
	"github.com/anonto42/snapgram/backend/internal/repositories"
	"github.com/anonto42/snapgram/backend/internal/router"
	"github.com/anonto42/snapgram/backend/internal/services"
	"github.com/anonto42/snapgram/backend/pkg/config"
	"github.com/anonto42/snapgram/backend/pkg/firebase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg, log := a.cfg, a.log

	db, err := config.InitDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := repositories.Migrate(db.Postgres); err != nil {
		return err
	}
	log.Info("postgres auto-migrations completed")

	blobs, err := repositories.NewGridFSBlobStore(db.Mongo.Database(cfg.MongoDatabase))
	if err != nil {
		return err
	}

	var cache repositories.PresenceCache
	if db.Redis != nil {
		cache = repositories.NewRedisPresenceCache(db.Redis)
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("token verification configured", zap.String("provider", cfg.AuthProvider))

	svc := services.New(repositories.NewStore(db.Postgres), blobs, cache, services.Options{
		PublicBaseURL:       cfg.PublicBaseURL,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		RequireMutualFollow: cfg.ChatRequireMutualFollow,
	}, log)

	e := router.New(router.Deps{
		DB:           db.Postgres,
		Services:     svc,
		Verifier:     verifier,
		Logger:       log,
		RateLimitRPS: cfg.RateLimitRPS,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newVerifier(ctx context.Context, cfg *config.Config) (middleware.TokenVerifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		fb, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return middleware.NewFirebaseVerifier(fb.AuthClient), nil
	case config.AuthJWT:
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set when AUTH_PROVIDER=jwt")
		}
		return middleware.NewJWTVerifier(cfg.JWTSecret), nil
	}
	return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
}
