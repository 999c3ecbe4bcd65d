package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-console/internal/access"
	"catalog-console/internal/catalogapi"
	"catalog-console/internal/config"
	"catalog-console/internal/database"
	"catalog-console/internal/fields"
	"catalog-console/internal/handlers"
	"catalog-console/internal/ledger"
	"catalog-console/internal/localstore"
	"catalog-console/internal/logger"
	"catalog-console/internal/middleware"
	"catalog-console/internal/preview"
	"catalog-console/internal/services"
	"catalog-console/internal/supabase"
	"catalog-console/internal/wire"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// sessionStore persists the token and the category cache.
type sessionStore interface {
	access.TokenStore
	services.CategoryCache
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.Init(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	store, closeStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		zap.L().Fatal("failed to open session store", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	defer closeStore()

	memoryPreviews, previews, err := openPreviewStore(cfg)
	if err != nil {
		zap.L().Fatal("failed to open preview store", zap.String("store", cfg.PreviewStore), zap.Error(err))
	}

	registry := fields.NewRegistry(fields.Builtin())
	if cfg.FieldDefaultsFile != "" {
		registry, err = fields.Load(cfg.FieldDefaultsFile)
		if err != nil {
			zap.L().Fatal("failed to load field defaults", zap.String("file", cfg.FieldDefaultsFile), zap.Error(err))
		}
	}

	session := access.NewSession(store)
	gate := access.NewGate(session)
	api := catalogapi.NewClient(wire.NewClient(cfg.APIBaseURL, session, cfg.RequestTimeout))

	events := ledger.NewEvents()
	products := ledger.NewProductLedger(events)
	images := ledger.NewImageLedger(previews, events)
	tracker, err := services.NewChangeTracker(events)
	if err != nil {
		zap.L().Fatal("failed to subscribe change tracker", zap.Error(err))
	}

	authService := services.NewAuthService(api, session)
	categoryService := services.NewCategoryService(api, store, registry.Categories(), cfg.CategoryCacheTTL)
	imageService := services.NewImageService(api, products, images)

	restoreCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	if err := authService.Restore(restoreCtx); err != nil {
		zap.L().Warn("starting signed out", zap.Error(err))
	}
	cancel()

	if err := categoryService.StartRefresh(cfg.CategoryRefreshSpec, cfg.RequestTimeout); err != nil {
		zap.L().Fatal("failed to schedule category refresh", zap.Error(err))
	}
	defer categoryService.Stop()

	routes := handlers.Routes{
		Session: session,
		Gate:    gate,
		Auth:    handlers.NewAuthHandler(authService, session),
		Fields:  handlers.NewFieldsHandler(registry, categoryService),
		Products: handlers.NewProductsHandler(
			services.NewCatalogService(api, products, cfg.PageSize),
			services.NewDraftService(api, products, images, registry),
			services.NewSubmissionService(api, products, images),
			images,
			tracker,
			registry,
		),
		Images: handlers.NewImagesHandler(imageService, images, tracker),
	}
	if memoryPreviews != nil {
		routes.Previews = handlers.NewPreviewsHandler(memoryPreviews)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	routes.Register(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zap.L().Info("console starting",
			zap.String("port", cfg.Port),
			zap.String("api", cfg.APIBaseURL),
			zap.String("session_store", cfg.SessionStore),
			zap.String("preview_store", cfg.PreviewStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	zap.L().Info("console stopped")
}

func openSessionStore(ctx context.Context, cfg *config.Config) (sessionStore, func(), error) {
	if cfg.SessionStore == config.SessionStorePostgres {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.NewMigrator(db).Run(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		zap.L().Info("migrations completed")
		return database.NewSessionStore(db, cfg.SessionName), func() { db.Close() }, nil
	}

	store, err := localstore.Open(cfg.LocalStorePath, cfg.SessionName)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			zap.L().Warn("failed to close local store", zap.Error(err))
		}
	}, nil
}

// openPreviewStore returns the in-process store as well when it is the one in
// use, so its files can be served.
func openPreviewStore(cfg *config.Config) (*preview.MemoryStore, ledger.PreviewStore, error) {
	if cfg.PreviewStore == config.PreviewStoreSupabase {
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, nil, err
		}
		return nil, supabase.NewPreviewStore(client.Storage, cfg.SupabaseURL, cfg.SupabasePreviewBucket), nil
	}

	memory := preview.NewMemoryStore(cfg.BaseURL)
	return memory, memory, nil
}
