package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/devapi"
	"github.com/travelreviews/webclient/internal/infrastructure/db/mongo"
	"github.com/travelreviews/webclient/internal/pkg/config"
	"github.com/travelreviews/webclient/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("devapi stopped")
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad(ctx)
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, App: "devapi"})

	repo, closeRepo, err := accountRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	accounts := devapi.NewAccountService(repo, cfg.DevAPI.JWTSecret, cfg.DevAPI.TokenTTL)
	if cfg.DevAPI.AdminPassword != "" {
		admin, err := accounts.EnsureAdmin(ctx, cfg.DevAPI.AdminEmail, cfg.DevAPI.AdminPassword)
		if err != nil {
			return err
		}
		log.Info().Str("email", admin.Email).Msg("admin account ready")
	}

	e := devapi.NewRouter(devapi.Config{
		BasePath:  cfg.DevAPI.BasePath,
		JWTSecret: cfg.DevAPI.JWTSecret,
		Log:       logger.Component(log, "http"),
	}, accounts, devapi.NewReviewCatalog(devapi.SeedReviews()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.DevAPI.Addr).Str("base_path", cfg.DevAPI.BasePath).Msg("devapi listening")
		if err := e.Start(cfg.DevAPI.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// accountRepository selects the user store. The returned func releases it.
func accountRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.AccountRepository, func(), error) {
	if cfg.DevAPI.UserStore != config.StorageMongo {
		log.Info().Msg("using in-memory user store")
		return devapi.NewMemoryAccountRepository(), func() {}, nil
	}
	db, err := mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		if err := mongo.Close(context.Background(), db); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}
	repo := mongo.NewAccountRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		disconnect()
		return nil, nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("using mongo user store")
	return repo, disconnect, nil
}
