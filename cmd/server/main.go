// Binary server runs the HTTP API, the publication dispatcher, and the
// share-link sweeper in one process (spec §5: "single-process deployment
// is the default; multi-process is supported because every
// contention-sensitive transition uses a database-side lock").
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/config"
	"github.com/techappsUT/planer/internal/dispatcher"
	"github.com/techappsUT/planer/internal/httpapi"
	"github.com/techappsUT/planer/internal/logging"
	"github.com/techappsUT/planer/internal/objectstore"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/platform/facebook"
	"github.com/techappsUT/planer/internal/platform/instagram"
	"github.com/techappsUT/planer/internal/platform/tiktok"
	"github.com/techappsUT/planer/internal/platform/xdriver"
	"github.com/techappsUT/planer/internal/publicshare"
	"github.com/techappsUT/planer/internal/sharelink"
	"github.com/techappsUT/planer/internal/store/postgres"
	"github.com/techappsUT/planer/internal/tenancy"
)

func main() {
	bootLogger := logging.New("development")

	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal("configuration validation failed", zap.Error(err))
	}

	log := logging.New(cfg.NodeEnv)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	log.Info("database connection established")

	if cfg.TokenEncryptionKey != "" {
		if err := postgres.SetTokenKey([]byte(cfg.TokenEncryptionKey)); err != nil {
			log.Fatal("failed to initialize token encryption", zap.Error(err))
		}
	}

	tenancyStore := postgres.NewTenancyStore(db)
	publicationStore := postgres.NewPublicationStore(db)
	shareLinkStore := postgres.NewShareLinkStore(db)
	commentStore := postgres.NewCommentStore(db)
	calendarStore := postgres.NewCalendarStore(db)
	contentStore := postgres.NewContentStore(db)
	accountStore := postgres.NewSocialAccountStore(db)

	objects := objectstore.NewLocalGateway("./data/uploads", cfg.R2.PublicDomain)

	var refreshLock platform.RefreshLock = platform.NewSingleflightLock()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		refreshLock = platform.NewRedisLock(redisClient)
		log.Info("using redis-backed refresh lock for multi-process deployment")
	}

	registry := platform.NewRegistry()
	registry.Register(instagram.New(instagram.Config{
		APIURL:        cfg.Instagram.APIURL,
		MediaWaitTime: cfg.Instagram.MediaWaitTime,
		VideoWaitTime: cfg.Instagram.VideoWaitTime,
		CallTimeout:   cfg.PlatformCallTimeout,
	}, log))
	registry.Register(tiktok.New(tiktok.Config{
		APIURL:        cfg.TikTok.APIURL,
		ClientKey:     cfg.TikTok.ClientKey,
		ClientSecret:  cfg.TikTok.ClientSecret,
		CallbackURL:   cfg.TikTok.CallbackURL,
		CallTimeout:   cfg.PlatformCallTimeout,
		UploadTimeout: cfg.PlatformUploadTimeout,
	}, log, objects, accountStore, refreshLock))
	registry.Register(facebook.New())
	registry.Register(xdriver.New())

	disp, err := dispatcher.New(dispatcher.Config{
		Schedule:           cfg.CronPublisherSchedule,
		BatchSize:          cfg.CronBatchSize,
		PublicationTimeout: cfg.PublicationTimeout,
		Concurrency:        4,
	}, publicationStore, registry, log)
	if err != nil {
		log.Fatal("invalid dispatcher schedule", zap.Error(err))
	}
	go disp.Run(ctx)

	linkService := sharelink.NewService(shareLinkStore)
	sweeper := sharelink.NewSweeper(linkService, log)
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("failed to start share link sweeper", zap.Error(err))
	}

	shareService := publicshare.NewService(linkService, calendarStore, commentStore)

	var verifier tenancy.Verifier = tenancy.UnconfiguredVerifier{}
	if cfg.AuthIssuer != "" {
		oidcVerifier, err := tenancy.NewOIDCVerifier(ctx, cfg.AuthIssuer, cfg.AuthAudience)
		if err != nil {
			log.Fatal("failed to initialize identity verifier", zap.Error(err))
		}
		verifier = oidcVerifier
	}
	resolver := tenancy.NewResolver(verifier, tenancyStore)

	handler := httpapi.New(httpapi.Config{
		MaxMediaPerContent: cfg.MaxMediaPerContent,
		SecureCookies:      cfg.NodeEnv == "production",
		CORSOrigins:        cfg.CORSOrigins,
		ClientHintHeader:   "X-Client-Id",
	}, log, resolver, publicationStore, contentStore, calendarStore, accountStore, registry, objects, linkService, shareService)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	disp.Stop()
	sweeper.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
