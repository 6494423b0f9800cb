// Package app composes the client: credential storage, the REST adapter, the
// session manager and the view server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/travelreviews/webclient/internal/api"
	"github.com/travelreviews/webclient/internal/api/handler"
	"github.com/travelreviews/webclient/internal/cli"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/core/service"
	"github.com/travelreviews/webclient/internal/infrastructure/apiclient"
	"github.com/travelreviews/webclient/internal/infrastructure/storage"
	"github.com/travelreviews/webclient/internal/pkg/config"
	"github.com/travelreviews/webclient/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// readinessKey is read by the storage readiness check. It is never written.
const readinessKey = "travelreviews.readiness"

// App holds the long-lived client components. Build it once per process.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	storage  ports.Storage
	client   *apiclient.Client
	sessions *service.SessionManager

	reviews  *apiclient.ReviewsAPI
	articles *apiclient.ArticlesAPI
	contact  *apiclient.ContactAPI
	admin    *apiclient.AdminAPI

	registerer prometheus.Registerer
}

// Option customises New.
type Option func(*options)

type options struct {
	storage    ports.Storage
	navigator  ports.Navigator
	httpClient apiclient.HTTPRequester
	registerer prometheus.Registerer
}

// WithStorage replaces the backend selected by STORAGE_DRIVER.
func WithStorage(s ports.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithNavigator sets what happens when an expired session sends the user to
// the login view.
func WithNavigator(nav ports.Navigator) Option {
	return func(o *options) { o.navigator = nav }
}

func WithHTTPClient(c apiclient.HTTPRequester) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRegisterer sets where the view server registers its HTTP metrics.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// New wires the components. The session starts in the Booting state; callers
// run Sessions().Start before reading it.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.storage
	if store == nil {
		var err error
		store, err = storage.Open(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
	}

	tokens := storage.NewCredentialStore(store, logger.Component(log, "credentials"))
	client := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		HTTPClient: o.httpClient,
	}, tokens, logger.Component(log, "apiclient"))

	auth := apiclient.NewAuthAPI(client, apiclient.AuthPaths{
		Profile:       cfg.API.ProfilePath,
		ProfileUpdate: cfg.API.ProfileUpdatePath,
	})
	sessions := service.NewSessionManager(tokens, auth, o.navigator, logger.Component(log, "session"))
	client.OnUnauthorized(sessions)

	return &App{
		cfg:        cfg,
		log:        log,
		storage:    store,
		client:     client,
		sessions:   sessions,
		reviews:    apiclient.NewReviewsAPI(client),
		articles:   apiclient.NewArticlesAPI(client),
		contact:    apiclient.NewContactAPI(client),
		admin:      apiclient.NewAdminAPI(client),
		registerer: o.registerer,
	}, nil
}

func (a *App) Sessions() *service.SessionManager { return a.sessions }

// Env exposes the app to the command tree.
func (a *App) Env() *cli.Env {
	return &cli.Env{
		Sessions: a.sessions,
		Reviews:  a.reviews,
		Articles: a.articles,
		Contact:  a.contact,
		Admin:    a.admin,
		Serve:    a.Serve,
	}
}

// Checks are the readiness checks of the view server.
func (a *App) Checks() map[string]handler.Check {
	return map[string]handler.Check{
		"storage": func(ctx context.Context) error {
			_, _, err := a.storage.Get(ctx, readinessKey)
			return err
		},
		"api": func(ctx context.Context) error {
			return a.client.Get(ctx, "/health", nil, nil)
		},
	}
}

// Router builds the view server handler.
func (a *App) Router() *echo.Echo {
	return api.NewRouter(api.Deps{
		Sessions:   a.sessions,
		Reviews:    a.reviews,
		Admin:      a.admin,
		Checks:     a.Checks(),
		Log:        logger.Component(a.log, "view"),
		Registerer: a.registerer,
	})
}

// Serve runs the view server on addr until ctx is cancelled, then shuts it
// down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.View.Addr
	}
	e := a.Router()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info().Str("addr", addr).Str("api", a.client.BaseURL()).Msg("view server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.log.Info().Msg("view server shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the storage backend.
func (a *App) Close(ctx context.Context) error {
	return a.storage.Close(ctx)
}
