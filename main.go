package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"odontologia/admin"
	"odontologia/analytics"
	"odontologia/cache"
	"odontologia/common"
	"odontologia/content"
	"odontologia/database"
	"odontologia/identity"
	"odontologia/metrics"
	"odontologia/site"
	"odontologia/storage"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := common.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := common.ConnectDb(cfg.Store.SQLitePath)
	if db == nil {
		logger.Error("failed to connect to database")
		os.Exit(1)
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store, closeStore, err := newStore(ctx, cfg, db)
	if err != nil {
		logger.Error("failed to create document store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sync := content.NewSync(store, logger)
	if err := sync.Start(ctx); err != nil {
		logger.Error("failed to start content sync", "error", err)
		os.Exit(1)
	}
	defer sync.Close()

	provider, err := newProvider(ctx, cfg, db)
	if err != nil {
		logger.Error("failed to create identity provider", "backend", cfg.Identity.Backend, "error", err)
		os.Exit(1)
	}

	uploader, closeUploader, err := newUploader(ctx, cfg)
	if err != nil {
		logger.Error("failed to create uploader", "backend", cfg.Upload.Backend, "error", err)
		os.Exit(1)
	}
	defer closeUploader()

	analyticsModule := analytics.NewAnalyticsModule(common.ConnectAnalyticsDb(cfg.Analytics))

	pages := cache.New(cfg.CacheDir, cfg.CacheTTL)
	if err := pages.Clear(); err != nil {
		logger.Warn("failed to clear page cache", "dir", cfg.CacheDir, "error", err)
	}
	go sweepCache(ctx, pages, cfg.CacheTTL)

	router := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("odontologia-session", sessionStore))

	tmpl, err := site.Templates(cfg.Server.Domain)
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}
	router.SetHTMLTemplate(tmpl)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	adminModule := admin.NewAdminModule(sync, provider, uploader, analyticsModule, admin.Options{
		LoginRPS:   cfg.Server.LoginRPS,
		LoginBurst: cfg.Server.LoginBurst,
	})
	adminModule.RegisterRoutes(router)

	siteModule := site.NewSiteModule(sync, pages, analyticsModule, cfg.Server.Domain)
	siteModule.RegisterRoutes(router)

	analyticsModule.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port, "store", cfg.Store.Backend, "identity", cfg.Identity.Backend, "uploads", uploader.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newStore(ctx context.Context, cfg *common.Config, db *gorm.DB) (content.Store, func(), error) {
	switch cfg.Store.Backend {
	case "sql", "":
		if cfg.Store.RedisAddr == "" {
			return content.NewSQLStore(db, nil), func() {}, nil
		}
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Store.RedisAddr, err)
		}
		notifier := content.NewRedisNotifier(client, cfg.Store.RedisChannel)
		return content.NewSQLStore(db, notifier), func() { client.Close() }, nil
	case "firestore":
		client, err := content.NewFirestoreClient(ctx, cfg.Store.FirestoreProjectID, credentials(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		store := content.NewFirestoreStore(client)
		return store, func() { store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func newProvider(ctx context.Context, cfg *common.Config, db *gorm.DB) (identity.Provider, error) {
	switch cfg.Identity.Backend {
	case "local", "":
		provider := identity.NewLocalProvider(db)
		if err := provider.EnsureAdmin(ctx, cfg.Identity.AdminEmail, cfg.Identity.AdminPassword); err != nil {
			return nil, err
		}
		return provider, nil
	case "firebase":
		provider, err := identity.NewFirebaseProvider(ctx, cfg.Identity.FirebaseAPIKey)
		if err != nil {
			return nil, err
		}
		return provider, nil
	}
	return nil, fmt.Errorf("unknown identity backend %q", cfg.Identity.Backend)
}

func newUploader(ctx context.Context, cfg *common.Config) (storage.Uploader, func(), error) {
	switch cfg.Upload.Backend {
	case "manual", "":
		return storage.Manual{}, func() {}, nil
	case "gcs":
		gcs, err := storage.NewGCS(ctx, cfg.Upload.GCSBucket, credentials(cfg)...)
		if err != nil {
			return nil, nil, err
		}
		return gcs, func() { gcs.Close() }, nil
	case "minio":
		m, err := storage.NewMinIO(ctx, storage.MinIOConfig{
			Endpoint:   cfg.Upload.MinIOEndpoint,
			AccessKey:  cfg.Upload.MinIOAccessKey,
			SecretKey:  cfg.Upload.MinIOSecretKey,
			Bucket:     cfg.Upload.MinIOBucket,
			UseSSL:     cfg.Upload.MinIOUseSSL,
			PublicBase: cfg.Upload.MinIOPublicBase,
		})
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown upload backend %q", cfg.Upload.Backend)
}

func credentials(cfg *common.Config) []option.ClientOption {
	if cfg.Store.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.Store.CredentialsFile)}
}

// sweepCache removes expired pages until ctx is done.
func sweepCache(ctx context.Context, pages *cache.PageCache, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := pages.ClearOld(); err != nil {
				slog.Warn("failed to sweep page cache", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
