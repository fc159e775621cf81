package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/blackicons2020/skillskonnect-sub001/internal/cache"
	"github.com/blackicons2020/skillskonnect-sub001/internal/config"
	"github.com/blackicons2020/skillskonnect-sub001/internal/handler"
	"github.com/blackicons2020/skillskonnect-sub001/internal/hub"
	"github.com/blackicons2020/skillskonnect-sub001/internal/jobs"
	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/internal/repository"
	"github.com/blackicons2020/skillskonnect-sub001/internal/service"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/database"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/jwt"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/middleware"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/response"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	log.Init(cfg.Log)
	l := log.L()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.Database.ToDatabaseConfig())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := repository.Migrate(db); err != nil {
		l.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	l.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Redis is optional: without it token versions and the cleaner cache live in process.
	var (
		redisClient  *redis.Client
		versions     jwt.VersionStore = jwt.NewMemoryVersionStore()
		cleanerCache cache.CleanerCache
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		versions = jwt.NewRedisVersionStore(redisClient, cfg.JWT.VersionPrefix)
		cleanerCache = cache.NewRedisCleanerCache(redisClient, cfg.Cache.Prefix)
		l.Info().Str("address", cfg.Redis.Address).Msg("connected to redis")
	}

	tokens, err := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer, versions)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to create token manager")
	}

	var ps pubsub.PubSub
	if cfg.PubSub.Driver == pubsub.DriverRedis && redisClient != nil {
		ps = pubsub.NewRedisPubSubFromClient(redisClient)
	} else if ps, err = pubsub.NewPubSub(cfg.PubSub); err != nil {
		l.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create pubsub")
	}
	defer ps.Close()

	store, err := storage.New(ctx, cfg.Storage.Config)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to create storage")
	}

	users := repository.NewGormUserRepository(db)
	bookings := repository.NewGormBookingRepository(db)
	reviews := repository.NewGormReviewRepository(db)
	chats := repository.NewGormChatRepository(db)
	subs := repository.NewGormSubscriptionRepository(db)
	tickets := repository.NewGormTicketRepository(db)

	notifier := service.NewNotifier(ps)
	cleaners := service.NewCleanerService(users, reviews, cleanerCache, cfg.Cache.TTL, store, cfg.Storage.URLExpiry)
	svc := handler.Services{
		Users: service.NewUserService(users, tokens, store, cleaners, service.UserServiceConfig{
			BcryptCost:     bcrypt.DefaultCost,
			MaxAvatarBytes: cfg.Storage.MaxAvatarBytes,
			AvatarURLTTL:   cfg.Storage.URLExpiry,
		}),
		Cleaners:      cleaners,
		Bookings:      service.NewBookingService(bookings, users, notifier),
		Reviews:       service.NewReviewService(reviews, bookings, cleaners, notifier),
		Subscriptions: service.NewSubscriptionService(subs, users, notifier),
		Support:       service.NewSupportService(tickets, users, notifier),
		Chats:         service.NewChatService(chats, users, bookings, notifier),
		Admin: service.NewAdminService(service.AdminRepositories{
			Users:         users,
			Bookings:      bookings,
			Tickets:       tickets,
			Subscriptions: subs,
		}, tokens, cleaners, store, cfg.Storage.URLExpiry, bcrypt.DefaultCost),
	}

	wsHub := hub.NewHub(cfg.WebSocket)
	if err := wsHub.Start(ctx, ps); err != nil {
		l.Fatal().Err(err).Msg("failed to start websocket hub")
	}

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), log.GinMiddleware(l), metrics.GinMiddleware())

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           cfg.RateLimit.IdleTTL,
		})
	}

	r.GET("/health", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNHEALTHY", "database unavailable")
			return
		}
		response.Success(c, gin.H{"status": "ok", "time": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if local, ok := store.(*storage.LocalStorage); ok {
		r.Static(local.PublicPath(), local.BasePath())
	}

	handler.NewWSHandler(wsHub, cfg.WebSocket, authMiddleware, cfg.Server.AllowedOrigins).RegisterRoutes(r)

	// Routes registered above are not rate limited.
	if limiter != nil {
		r.Use(limiter.Handler())
	}
	handler.NewHandler(svc, authMiddleware, cfg.Storage.MaxAvatarBytes).RegisterRoutes(r)

	scheduler := jobs.NewScheduler()
	if cfg.Jobs.Enabled {
		deps := jobs.Deps{
			Subscriptions: svc.Subscriptions,
			Bookings:      svc.Bookings,
		}
		if limiter != nil {
			deps.RateLimiter = limiter
		}
		if err := jobs.Register(scheduler, cfg.Jobs, deps); err != nil {
			l.Fatal().Err(err).Msg("failed to register jobs")
		}
		scheduler.Start()
		l.Info().Strs("jobs", scheduler.Jobs()).Msg("background jobs started")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info().Str("addr", server.Addr).Msg("SkillsKonnect API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}
	scheduler.Stop(shutdownCtx)
	cancel()

	l.Info().Msg("SkillsKonnect API stopped")
}
