package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/assetweb/internal/cache"
	cachemem "github.com/dropDatabas3/assetweb/internal/cache/memory"
	cacheredis "github.com/dropDatabas3/assetweb/internal/cache/redis"
	"github.com/dropDatabas3/assetweb/internal/config"
	"github.com/dropDatabas3/assetweb/internal/email"
	httpserver "github.com/dropDatabas3/assetweb/internal/http"
	authctrl "github.com/dropDatabas3/assetweb/internal/http/controllers/auth"
	"github.com/dropDatabas3/assetweb/internal/http/router"
	authsvc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/metrics"
	"github.com/dropDatabas3/assetweb/internal/oauth/google"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/rate"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	"github.com/dropDatabas3/assetweb/internal/store/core"
	storemem "github.com/dropDatabas3/assetweb/internal/store/memory"
	storepg "github.com/dropDatabas3/assetweb/internal/store/pg"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", envOr("CONFIG_PATH", "config.yaml"), "ruta al config.yaml")
	flag.Parse()

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.L().Fatal("config load failed", logger.Err(err))
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: envOr("LOG_LEVEL", "info"), ServiceName: "assetweb"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	// sin clave de firma no arrancamos
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", logger.Err(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ─── storage ───
	var repo core.Repository
	var closeStore func()
	var ping func(context.Context) error
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("using in-memory store, data is not persisted")
		repo = storemem.New()
		ping = repo.Ping
	default:
		pgStore, err := storepg.New(ctx, cfg.Storage.DSN, storepg.PoolConfig{
			MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
			MinConns:        cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: parseDurationOr(cfg.Storage.Postgres.ConnMaxLifetime, 0),
		})
		if err != nil {
			log.Fatal("pg store init failed", logger.Err(err))
		}
		repo = pgStore
		closeStore = pgStore.Close
		ping = pgStore.Ping
	}
	if closeStore != nil {
		defer closeStore()
	}

	// ─── cache y rate limit ───
	var appCache cache.Cache
	var loginLimiter, refreshLimiter rate.Limiter
	loginWindow := parseDurationOr(cfg.Rate.Login.Window, time.Minute)
	refreshWindow := parseDurationOr(cfg.Rate.Refresh.Window, time.Minute)
	switch cfg.Cache.Kind {
	case "redis":
		rc := cacheredis.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB)
		appCache = rc
		if cfg.Rate.Enabled {
			loginLimiter = rate.NewRedisLimiter(rc.Client(), "rl:login:", cfg.Rate.Login.Limit, loginWindow)
			refreshLimiter = rate.NewRedisLimiter(rc.Client(), "rl:refresh:", cfg.Rate.Refresh.Limit, refreshWindow)
		}
	default:
		appCache = cachemem.New(parseDurationOr(cfg.Cache.Memory.DefaultTTL, 2*time.Minute))
		if cfg.Rate.Enabled {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, loginWindow)
			refreshLimiter = rate.NewMemoryLimiter(cfg.Rate.Refresh.Limit, refreshWindow)
		}
	}

	// ─── email ───
	var sender email.Sender
	if cfg.Email.SMTP.Host != "" {
		s := email.NewSMTPSender(cfg.Email.SMTP.Host, cfg.Email.SMTP.Port,
			cfg.Email.SMTP.From, cfg.Email.SMTP.User, cfg.Email.SMTP.Pass)
		if cfg.Email.SMTP.TLSMode != "" {
			s.TLSMode = cfg.Email.SMTP.TLSMode
		}
		s.InsecureSkipVerify = cfg.Email.SMTP.InsecureSkipVerify
		sender = s
	} else {
		log.Warn("smtp not configured, confirmation mails disabled")
	}
	tpls, err := email.LoadTemplates(cfg.Email.TemplatesDir)
	if err != nil {
		log.Fatal("email templates load failed", logger.Err(err))
	}

	// ─── oauth google ───
	var oidc *google.OIDC
	if cfg.OAuth.Google.ClientID != "" {
		oidc = google.New(cfg.OAuth.Google.ClientID, cfg.OAuth.Google.ClientSecret,
			cfg.OAuth.Google.RedirectURL, nil)
	}

	// ─── services y router ───
	issuer := jwtx.NewIssuer([]byte(cfg.JWT.SigningKey), cfg.JWT.Issuer, cfg.JWT.Audience, cfg.AccessTTLDuration())

	svc := authsvc.New(authsvc.Deps{
		Repo:       repo,
		Issuer:     issuer,
		Hash:       password.Default,
		Sender:     sender,
		Templates:  tpls,
		OIDC:       oidc,
		Cache:      appCache,
		BaseURL:    cfg.Server.BaseURL,
		RefreshTTL: cfg.RefreshTTLDuration(),
		ConfirmTTL: cfg.ConfirmTTLDuration(),
		AutoLogin:  cfg.Register.AutoLogin,
	})
	profile := authsvc.NewProfile(authsvc.ProfileDeps{Repo: repo, Hash: password.Default})

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		if err := metrics.Register(nil); err != nil {
			log.Fatal("metrics registration failed", logger.Err(err))
		}
		metricsHandler = promhttp.Handler()
	}

	handler := router.New(router.Deps{
		Controllers:    authctrl.New(svc, profile),
		Issuer:         issuer,
		LoginLimiter:   loginLimiter,
		RefreshLimiter: refreshLimiter,
		Metrics:        metricsHandler,
		Ping:           ping,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
	})

	srv := httpserver.NewServer(cfg.Server.Addr, handler)
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", logger.Err(err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", logger.Err(err))
		}
	}
}

// loadConfig tolera la ausencia del archivo default: todo puede venir por env.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && path == "config.yaml" {
			return config.Load("")
		}
		return nil, err
	}
	return config.Load(path)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
