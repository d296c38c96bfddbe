package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/socialmembrane/authsvc/internal/storage/postgres"
	"github.com/socialmembrane/authsvc/pkg/auth"
	"github.com/socialmembrane/authsvc/pkg/config"
	"github.com/socialmembrane/authsvc/pkg/email"
	"github.com/socialmembrane/authsvc/pkg/httpserver"
	"github.com/socialmembrane/authsvc/pkg/logger"
	"github.com/socialmembrane/authsvc/pkg/oauthstate"
	"github.com/socialmembrane/authsvc/pkg/otp"
	"github.com/socialmembrane/authsvc/pkg/password"
	"github.com/socialmembrane/authsvc/pkg/pg"
	"github.com/socialmembrane/authsvc/pkg/ratelimiter"
	"github.com/socialmembrane/authsvc/pkg/redis"
	"github.com/socialmembrane/authsvc/pkg/tokens"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		appCfg   appConfig
		pgCfg    pg.Config
		redisCfg redis.Config
		tokenCfg tokens.Config
		emailCfg email.Config
		httpCfg  httpserver.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&tokenCfg)
	config.MustLoad(&emailCfg)
	config.MustLoad(&httpCfg)

	log := newLogger(appCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.Error("failed to apply migrations", logger.Error(err))
		os.Exit(1)
	}

	// Redis is optional: without it the rate limiter and OAuth states
	// fall back to in-process stores, which is only correct for a
	// single-instance deployment.
	var redisClient *goredis.Client
	if redisCfg.ConnectionURL != "" {
		redisClient, err = redis.Connect(ctx, redisCfg)
		if err != nil {
			log.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
	}

	tokenSvc, err := tokens.New(tokenCfg)
	if err != nil {
		log.Error("failed to build token service", logger.Error(err))
		os.Exit(1)
	}

	hasher := password.NewHasher()
	users := postgres.NewUserRepository(pool)
	denylist := postgres.NewDenylistRepository(pool)
	engine := otp.NewEngine(postgres.NewOTPRepository(pool), hasher, otp.WithTTL(appCfg.OTPTTL))

	var (
		limiter *ratelimiter.Limiter
		states  oauthstate.Manager
	)
	if redisClient != nil {
		limiter = ratelimiter.New(ratelimiter.NewRedisStore(redisClient))
		states = oauthstate.NewRedisManager(redisClient)
	} else {
		limiter = ratelimiter.New(ratelimiter.NewMemoryStore())
		states = oauthstate.NewMemoryManager()
	}

	sender, err := newEmailSender(appCfg, emailCfg)
	if err != nil {
		log.Error("failed to build email sender", logger.Error(err))
		os.Exit(1)
	}

	opts := []auth.Option{
		auth.WithLogger(log),
		auth.WithRequireEmailVerification(appCfg.RequireEmailVerification),
	}
	if appCfg.GoogleOAuthEnabled {
		var googleCfg auth.GoogleOAuthConfig
		config.MustLoad(&googleCfg)
		opts = append(opts, auth.WithProviderAdapter(auth.NewGoogleAdapter(googleCfg)))
	}
	svc := auth.NewService(users, denylist, engine, tokenSvc, hasher, limiter, sender, states, opts...)

	go sweepLoop(ctx, svc, appCfg.SweepInterval, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	checks := []func(context.Context) error{pg.Healthcheck(pool)}
	if redisClient != nil {
		checks = append(checks, redis.Healthcheck(redisClient))
	}
	router.Get("/health", httpserver.HealthCheckHandler(log, checks...))

	handler := &authHandler{svc: svc, log: log}
	router.Group(handler.routes)

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, router); err != nil {
		log.Error("http server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg appConfig) *slog.Logger {
	format := logger.FormatText
	if cfg.isProduction() || strings.EqualFold(cfg.LogFormat, string(logger.FormatJSON)) {
		format = logger.FormatJSON
	}

	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return logger.New(
		logger.WithFormat(format),
		logger.WithLevel(level),
		logger.WithAttr(slog.String("app", "authsvc"), slog.String("env", cfg.AppEnv)),
	)
}

// newEmailSender picks Postmark when a server token is configured and
// the file-writing dev sender otherwise.
func newEmailSender(appCfg appConfig, cfg email.Config) (email.EmailSender, error) {
	if cfg.PostmarkServerToken != "" {
		return email.NewPostmarkClient(cfg)
	}
	if appCfg.isProduction() {
		return nil, email.ErrInvalidConfig
	}
	return email.NewDevSender(cfg.DevOutputDir)
}

// sweepLoop periodically removes expired OTP records, inert denylist
// rows and stale OAuth states.
func sweepLoop(ctx context.Context, svc *auth.Service, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.SweepExpired(ctx); err != nil {
				log.Error("sweep failed", logger.Error(err))
			}
		}
	}
}
