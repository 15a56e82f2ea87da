// Package bootstrap wires the application together: configuration, logging,
// storage, the analysis pipeline and the HTTP transport, with ordered init
// steps and graceful shutdown.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
	"golang.org/x/sync/errgroup"

	"aidpal-server-go/internal/core/providers/vision"
	"aidpal-server-go/internal/domain/analysis"
	"aidpal-server-go/internal/domain/analysis/cache"
	domainauth "aidpal-server-go/internal/domain/auth"
	"aidpal-server-go/internal/domain/eventbus"
	"aidpal-server-go/internal/domain/history"
	domainimage "aidpal-server-go/internal/domain/image"
	"aidpal-server-go/internal/domain/knowledge"
	platformconfig "aidpal-server-go/internal/platform/config"
	platformerrors "aidpal-server-go/internal/platform/errors"
	platformlogging "aidpal-server-go/internal/platform/logging"
	platformstorage "aidpal-server-go/internal/platform/storage"
	httptransport "aidpal-server-go/internal/transport/http"
	httpvision "aidpal-server-go/internal/transport/http/vision"
	httpwebapi "aidpal-server-go/internal/transport/http/webapi"
)

const scalarHTML = `<!DOCTYPE html>
<html lang="en">
	<head>
		<meta charset="utf-8" />
		<title>AidPal API Reference</title>
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

	knowledge    *knowledge.Base
	cacheStore   cache.Store
	provider     *vision.Provider
	orchestrator *analysis.Orchestrator
	validator    *domainimage.SecurityValidator
	historySvc   *history.Service
	authToken    *domainauth.AuthToken
}

// Run starts the whole service lifecycle: init steps, HTTP server, and
// graceful shutdown on SIGINT/SIGTERM.
func Run(ctx context.Context) error {
	state := &appState{}

	if err := executeInitSteps(ctx, InitGraph(), state); err != nil {
		return err
	}

	logger := state.logger
	defer logger.Close()
	defer eventbus.Shutdown()
	if state.cacheStore != nil {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := state.cacheStore.Close(closeCtx); err != nil {
				logger.WarnTag("cache", "cache store did not close cleanly: %v", err)
			}
		}()
	}
	if state.provider != nil {
		defer func() {
			_ = state.provider.Cleanup()
		}()
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	logger.InfoTag("boot", "aidpal-server started with %d candidate models", len(state.orchestrator.Models()))

	return waitForShutdown(signalCtx, cancel, logger, group)
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(platformerrors.KindBootstrap, "execute init steps", "nil bootstrap state")
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
			return platformerrors.New(platformerrors.KindBootstrap, step.ID, "missing execute function")
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

// InitGraph returns the ordered initialisation steps. Order matters: each
// step's dependencies must appear earlier in the slice.
func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:init-database",
			Title:     "Initialise database",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initDatabaseStep,
		},
		{
			ID:        "knowledge:load",
			Title:     "Load wound care knowledge base",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindDomain,
			Execute:   loadKnowledgeStep,
		},
		{
			ID:        "cache:init-store",
			Title:     "Initialise result cache",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initCacheStep,
		},
		{
			ID:        "analysis:init-orchestrator",
			Title:     "Initialise analysis orchestrator",
			DependsOn: []string{"logging:init-provider", "knowledge:load", "cache:init-store"},
			Kind:      platformerrors.KindAnalysis,
			Execute:   initAnalysisStep,
		},
		{
			ID:        "history:subscribe-events",
			Title:     "Initialise history service",
			DependsOn: []string{"storage:init-database", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   initHistoryStep,
		},
		{
			ID:        "auth:init-token",
			Title:     "Initialise auth token helper",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initAuthStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "config:load", "failed to load configuration", err)
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialise logging", err)
	}
	state.logger = logger
	platformlogging.DefaultLogger = logger

	logger.InfoTag("boot", "logging ready [%s] config=%s", state.config.Log.Level, state.configPath)
	return nil
}

func initDatabaseStep(_ context.Context, state *appState) error {
	if err := platformstorage.InitDatabase(state.config.Storage.DSN); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:init-database", "failed to initialise database", err)
	}
	state.logger.InfoTag("storage", "database ready at %s", state.config.Storage.DSN)
	return nil
}

func loadKnowledgeStep(_ context.Context, state *appState) error {
	var (
		kb  *knowledge.Base
		err error
	)
	if path := state.config.Analysis.KnowledgePath; path != "" {
		kb, err = knowledge.LoadFile(path)
	} else {
		kb, err = knowledge.Load()
	}
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindDomain, "knowledge:load", "failed to load knowledge base", err)
	}
	state.knowledge = kb
	state.logger.InfoTag("boot", "knowledge base loaded with %d protocols", len(kb.Protocols))
	return nil
}

func initCacheStep(_ context.Context, state *appState) error {
	if !state.config.Cache.Enabled {
		state.logger.InfoTag("cache", "result cache disabled")
		return nil
	}

	store, err := cache.New(cache.Config{
		Driver: state.config.Cache.Driver,
		TTL:    state.config.Cache.TTL,
		Redis: &cache.RedisConfig{
			Addr:     state.config.Cache.Redis.Addr,
			Username: state.config.Cache.Redis.Username,
			Password: state.config.Cache.Redis.Password,
			DB:       state.config.Cache.Redis.DB,
			Prefix:   state.config.Cache.Redis.Prefix,
		},
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "cache:init-store", "failed to create result cache", err)
	}
	state.cacheStore = store
	state.logger.InfoTag("cache", "result cache ready (driver=%s)", state.config.Cache.Driver)
	return nil
}

func initAnalysisStep(_ context.Context, state *appState) error {
	providerCfg := state.config.Analysis.Provider
	provider, err := vision.NewProvider(&vision.Config{
		Type:        providerCfg.Type,
		BaseURL:     providerCfg.BaseURL,
		APIKey:      providerCfg.APIKey,
		Temperature: providerCfg.Temperature,
		MaxTokens:   providerCfg.MaxTokens,
		TopP:        providerCfg.TopP,
	}, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindVision, "analysis:init-orchestrator", "failed to create vision provider", err)
	}
	if err := provider.Initialize(); err != nil {
		return platformerrors.Wrap(platformerrors.KindVision, "analysis:init-orchestrator", "failed to initialise vision provider", err)
	}
	state.provider = provider

	opts := analysis.Options{
		Models:    state.config.Analysis.Models,
		Knowledge: state.knowledge,
		Invoker:   provider,
		Logger:    state.logger,
	}
	if state.cacheStore != nil {
		opts.Cache = state.cacheStore
	}

	orchestrator, err := analysis.NewOrchestrator(opts)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindAnalysis, "analysis:init-orchestrator", "failed to create orchestrator", err)
	}
	state.orchestrator = orchestrator
	state.validator = domainimage.NewSecurityValidator(&state.config.Security, state.logger)
	return nil
}

func initHistoryStep(_ context.Context, state *appState) error {
	repo := platformstorage.NewHistoryRepository(platformstorage.GetDB())
	svc := history.NewService(repo, state.logger, state.config.Storage.HistoryLimit)
	if err := svc.SubscribeEvents(); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "history:subscribe-events", "failed to subscribe history service", err)
	}
	state.historySvc = svc
	return nil
}

func initAuthStep(_ context.Context, state *appState) error {
	if !state.config.Server.Auth.Enabled {
		state.logger.InfoTag("auth", "authentication disabled")
		return nil
	}
	if state.config.Server.Token == "" {
		return platformerrors.New(platformerrors.KindConfig, "auth:init-token", "auth enabled but server token is empty")
	}
	state.authToken = domainauth.NewAuthToken(state.config.Server.Token).
		WithTTL(state.config.Server.Auth.TokenTTL)
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	opts := httptransport.Options{
		Config: config,
		Logger: logger,
	}
	if state.authToken != nil {
		opts.AuthMiddleware = httptransport.NewAuthMiddleware(state.authToken, logger)
	}

	httpRouter, err := httptransport.Build(opts)
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httptransport.APIResponse{
			Success: false,
			Data:    gin.H{},
			Message: "not found",
			Code:    http.StatusNotFound,
		})
	})

	visionService, err := httpvision.NewService(config, logger, state.orchestrator, state.validator)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVision, "vision:new-service", "failed to create vision service", err)
	}
	webapiService, err := httpwebapi.NewService(config, logger, state.authToken, state.historySvc)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service", "failed to create webapi service", err)
	}

	if err := visionService.Register(groupCtx, httpRouter.API, httpRouter.Secured); err != nil {
		return nil, err
	}
	if err := webapiService.Register(groupCtx, httpRouter.API, httpRouter.Secured); err != nil {
		return nil, err
	}

	router.GET("/openapi.json", func(c *gin.Context) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.ErrorTag("http", "generate OpenAPI document: %v", err)
			c.JSON(http.StatusInternalServerError, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{"error": err.Error()},
				Message: "failed to generate openapi spec",
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
		Addr:    fmt.Sprintf("%s:%d", config.Server.IP, config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("http", "listening on http://%s", httpServer.Addr)
		logger.InfoTag("http", "API docs at http://%s/docs", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("http", "HTTP server shutdown: %v", err)
			} else {
				logger.InfoTag("http", "HTTP server stopped cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("http", "HTTP server failed: %v", err)
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
	logger.InfoTag("boot", "shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("boot", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("boot", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("boot", "shutdown timed out, forcing exit")
		return errors.New("shutdown timed out")
	}
	return nil
}
