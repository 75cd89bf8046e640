// Package bootstrap wires the storefront gateway: configuration, logging,
// the blob store, the remote service clients and the domain managers, then
// runs the HTTP server until a shutdown signal arrives.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"comicstore-go/internal/domain/catalog"
	"comicstore-go/internal/domain/commerce"
	"comicstore-go/internal/domain/eventbus"
	"comicstore-go/internal/domain/session"
	platformconfig "comicstore-go/internal/platform/config"
	platformerrors "comicstore-go/internal/platform/errors"
	platformlogging "comicstore-go/internal/platform/logging"
	platformobservability "comicstore-go/internal/platform/observability"
	platformstorage "comicstore-go/internal/platform/storage"
	"comicstore-go/internal/transport/authapi"
	httptransport "comicstore-go/internal/transport/http"
	"comicstore-go/internal/transport/http/storefront"
	"comicstore-go/internal/transport/productsapi"
)

const defaultSQLiteDSN = "comicstore.db"

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>Comicstore API Reference</title>
		<meta name="viewport" content="width=device-width, initial-scale=1" />
	</head>
	<body>
		<script
			id="api-reference"
			data-url="/openapi.json"
			data-layout="modern"
			src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"
		></script>
	</body>
</html>`

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	config     *platformconfig.Config
	configPath string
	logger     *platformlogging.Logger

	observabilityShutdown platformobservability.ShutdownFunc

	db    *gorm.DB
	store platformstorage.Store
	bus   *eventbus.Bus

	authClient     *authapi.Client
	productsClient *productsapi.Client

	session *session.Manager
	catalog *catalog.Reconciler
	ledger  *commerce.Ledger
}

// Run drives the full service lifecycle: init graph, HTTP server, graceful
// shutdown.
func Run(ctx context.Context) error {
	state := &appState{}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}
	defer logger.Close()

	logBootstrapGraph(steps, logger)

	if shutdown := state.observabilityShutdown; shutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.WarnTag("bootstrap", "observability did not shut down cleanly: %v", err)
			}
		}()
	}

	defer func() {
		if state.store != nil {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.store.Close(closeCtx); err != nil {
				logger.WarnTag("storage", "blob store did not close cleanly: %v", err)
			}
		}
	}()

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return fmt.Errorf("starting http server: %w", err)
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("bootstrap", "gateway stopped")
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	logger.InfoTag("bootstrap", "init graph:")
	for _, step := range steps {
		if len(step.DependsOn) > 0 {
			logger.InfoTag("bootstrap", "  %s (after %s)", step.ID, strings.Join(step.DependsOn, ", "))
		} else {
			logger.InfoTag("bootstrap", "  %s", step.ID)
		}
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

// InitGraph declares the initialisation steps in dependency order.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load-runtime",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "storage:open-database",
			Title:     "Open sqlite database",
			DependsOn: []string{"config:load-runtime", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   openDatabaseStep,
		},
		{
			ID:        "storage:init-store",
			Title:     "Initialise blob store",
			DependsOn: []string{"storage:open-database"},
			Kind:      platformerrors.KindStorage,
			Execute:   initStoreStep,
		},
		{
			ID:        "eventbus:init",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "clients:init-backends",
			Title:     "Initialise backend clients",
			DependsOn: []string{"config:load-runtime"},
			Kind:      platformerrors.KindTransport,
			Execute:   initClientsStep,
		},
		{
			ID:        "managers:init-domain",
			Title:     "Initialise domain managers",
			DependsOn: []string{"storage:init-store", "eventbus:init", "clients:init-backends"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initManagersStep,
		},
		{
			ID:        "session:restore",
			Title:     "Restore persisted session",
			DependsOn: []string{"managers:init-domain"},
			Kind:      platformerrors.KindAuth,
			Execute:   restoreSessionStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialise logging", err)
	}
	state.logger = logger

	source := state.configPath
	if source == "" {
		source = "defaults"
	}
	logger.InfoTag("bootstrap", "logging ready [%s] config from %s", state.config.Log.Level, source)
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	if state.logger == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"observability:setup-hooks",
			"config/logger not initialised",
		)
	}

	cfg := platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}
	shutdown, err := platformobservability.Setup(ctx, cfg, state.logger.Slog())
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "observability:setup-hooks", "failed to setup observability hooks", err)
	}
	state.observabilityShutdown = shutdown
	return nil
}

// openDatabaseStep opens the gorm handle only for the sqlite driver; memory
// and redis stores need no database.
func openDatabaseStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return platformerrors.New(platformerrors.KindStorage, "storage:open-database", "config not loaded")
	}
	if state.config.Storage.Driver != platformstorage.DriverSQLite {
		return nil
	}

	dsn := state.config.Storage.SQLite.DSN
	if dsn == "" {
		dsn = defaultSQLiteDSN
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:open-database", "failed to open sqlite database", err)
	}
	state.db = db
	return nil
}

func initStoreStep(_ context.Context, state *appState) error {
	cfg := platformstorage.Config{
		Driver: state.config.Storage.Driver,
	}
	if state.config.Storage.SQLite.DSN != "" {
		cfg.SQLite = &platformstorage.SQLiteConfig{DSN: state.config.Storage.SQLite.DSN}
	}
	if state.config.Storage.Redis.Addr != "" {
		cfg.Redis = &platformstorage.RedisConfig{
			Addr:     state.config.Storage.Redis.Addr,
			Username: state.config.Storage.Redis.Username,
			Password: state.config.Storage.Redis.Password,
			DB:       state.config.Storage.Redis.DB,
			Prefix:   state.config.Storage.Redis.Prefix,
		}
	}

	store, err := platformstorage.New(cfg, platformstorage.Dependencies{SQLiteDB: state.db})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:init-store", "failed to create blob store", err)
	}
	state.store = store
	state.logger.InfoTag("storage", "blob store ready (%s)", storeDriverName(state.config.Storage.Driver))
	return nil
}

func storeDriverName(driver string) string {
	if driver == "" {
		return platformstorage.DriverMemory
	}
	return driver
}

func initEventBusStep(_ context.Context, state *appState) error {
	state.bus = eventbus.New()
	return nil
}

func initClientsStep(_ context.Context, state *appState) error {
	timeout := state.config.Backend.Timeout
	state.authClient = authapi.NewClient(state.config.Backend.AuthURL, timeout)
	state.productsClient = productsapi.NewClient(state.config.Backend.ProductsURL, timeout)
	return nil
}

func initManagersStep(_ context.Context, state *appState) error {
	sessionManager, err := session.NewManager(session.Options{
		Store:  state.store,
		Auth:   state.authClient,
		Logger: state.logger,
		Bus:    state.bus,
	})
	if err != nil {
		return err
	}
	state.session = sessionManager

	reconciler, err := catalog.NewReconciler(state.store, state.logger)
	if err != nil {
		return err
	}
	state.catalog = reconciler

	ledger, err := commerce.NewLedger(state.store, state.logger, state.bus)
	if err != nil {
		return err
	}
	state.ledger = ledger
	return nil
}

// restoreSessionStep seeds the session from the persisted token. Validation
// failures are handled inside the manager; only storage problems abort boot.
func restoreSessionStep(ctx context.Context, state *appState) error {
	return state.session.Initialize(ctx)
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		if config.Server.StaticDir != "" {
			c.File(config.Server.StaticDir + "/index.html")
			return
		}
		c.Status(http.StatusNotFound)
	})

	service, err := storefront.NewService(logger, state.session, state.catalog, state.ledger, state.productsClient)
	if err != nil {
		return nil, err
	}
	if err := service.Register(groupCtx, httpRouter.API); err != nil {
		return nil, err
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("HTTP", "reading openapi doc failed: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{"error": err.Error()},
				Message: "failed to generate openapi document",
				Code:    http.StatusInternalServerError,
			})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	})

	router.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(scalarHTML))
	})

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "gateway listening on http://%s", httpServer.Addr)
		logger.InfoTag("HTTP", "api docs at http://%s/docs", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "http server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "http server stopped cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "http server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("bootstrap", "shutdown requested (%v), cleaning up", context.Cause(ctx))

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("bootstrap", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("bootstrap", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("bootstrap", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
