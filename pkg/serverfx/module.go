package serverfx

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ursais/web-api/pkg/bundlefx"
	"github.com/ursais/web-api/pkg/controller"
	"github.com/ursais/web-api/pkg/endpoint"
	"github.com/ursais/web-api/pkg/endpoint/logsink"
	"github.com/ursais/web-api/pkg/endpoint/store"
	"github.com/ursais/web-api/pkg/manifest"
	"github.com/ursais/web-api/pkg/middleware/auth"
	"github.com/ursais/web-api/pkg/middleware/logger"
	"github.com/ursais/web-api/pkg/sandbox"
	"github.com/ursais/web-api/pkg/transport/httpx"
)

// ---------- Options ----------

type Config struct {
	Service       string // for logs only
	ConfigEnv     string // e.g., WEBAPI_CONFIG
	DefaultConfig string // e.g., "config.toml"
}

type Option func(*Config)

func WithService(s string) Option          { return func(c *Config) { c.Service = s } }
func WithConfigEnv(k string) Option        { return func(c *Config) { c.ConfigEnv = k } }
func WithDefaultConfig(path string) Option { return func(c *Config) { c.DefaultConfig = path } }

func defaultConfig() Config {
	return Config{
		Service:       "web-api",
		ConfigEnv:     "WEBAPI_CONFIG",
		DefaultConfig: "config.toml",
	}
}

// Module returns a complete Fx option set; add app-specific fx.Invoke(...)
// alongside.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		// Core middleware
		bundlefx.Module,
		// Router impl
		fx.Provide(httpx.NewChi),
		// Options into DI
		fx.Provide(func() Config { return cfg }),
		// Service config, storage, evaluator, dispatcher
		fx.Provide(provideServiceConfig),
		fx.Provide(provideDB),
		fx.Provide(provideRedis),
		fx.Provide(provideRepository),
		fx.Provide(provideLogSink),
		fx.Provide(provideEvaluator),
		fx.Provide(provideDispatcher),
		fx.Provide(provideController),
		// Router
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``),
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerHooks),
	)
}

// ---------- Providers ----------

func provideServiceConfig(cfg Config, zl *zap.Logger) manifest.Config {
	cfgPath := envOr(cfg.ConfigEnv, cfg.DefaultConfig)
	mc, err := manifest.Load(cfgPath)
	if err != nil {
		zl.Fatal("config load failed", zap.Error(err), zap.String("path", cfgPath))
	}
	return mc
}

// provideDB is nil in dev mode (no DSN configured).
func provideDB(mc manifest.Config, zl *zap.Logger) *sql.DB {
	if mc.Database.DSN == "" {
		zl.Info("no database dsn; running with in-memory endpoint store")
		return nil
	}
	db, err := sql.Open("postgres", mc.Database.DSN)
	if err != nil {
		zl.Fatal("database open failed", zap.Error(err))
	}
	return db
}

// provideRedis is nil when no cache address is configured.
func provideRedis(mc manifest.Config) *redis.Client {
	if mc.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     mc.Redis.Addr,
		Password: mc.Redis.Password,
		DB:       mc.Redis.DB,
	})
}

func provideRepository(mc manifest.Config, db *sql.DB, rdb *redis.Client, zl *zap.Logger) store.Repository {
	if db == nil {
		return store.NewMemoryRepository()
	}
	repo := store.NewSQLRepository(db, mc.Database.Schema)
	if err := repo.Init(); err != nil {
		zl.Fatal("endpoint store init failed", zap.Error(err))
	}
	if rdb == nil {
		return repo
	}
	return store.NewCachingRepository(repo, rdb, time.Duration(mc.Redis.TTLSeconds)*time.Second)
}

func provideLogSink(mc manifest.Config, db *sql.DB, zl *zap.Logger) endpoint.LogSink {
	if db == nil {
		return endpoint.NopSink{}
	}
	sink := logsink.NewSQLSink(db, mc.Database.Schema, mc.Database.Name)
	if err := sink.Init(); err != nil {
		zl.Fatal("log sink init failed", zap.Error(err))
	}
	return sink
}

func provideEvaluator(mc manifest.Config) sandbox.Evaluator {
	ev := sandbox.NewTengoEvaluator()
	ev.MaxDuration = time.Duration(mc.Eval.TimeoutMS) * time.Millisecond
	ev.MaxAllocs = mc.Eval.MaxAllocs
	return ev
}

func provideDispatcher(
	mc manifest.Config,
	ev sandbox.Evaluator,
	repo store.Repository,
	sink endpoint.LogSink,
	zl *zap.Logger,
) *endpoint.Dispatcher {
	d := endpoint.NewDispatcher(zl)
	d.Register(endpoint.NewCodeHandler(ev, endpoint.ScopeEnv{
		Database: mc.Database.Name,
		Find:     repo.FindByRoute,
	}, sink))
	return d
}

func provideController(
	repo store.Repository,
	disp *endpoint.Dispatcher,
	a *auth.Middleware,
	zl *zap.Logger,
) *controller.Controller {
	return controller.New(repo, disp, a, zl)
}

// ---------- Router ----------

func provideRouter(
	c *controller.Controller,
	a *auth.Middleware,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	r httpx.Router,
) http.Handler {
	return controller.BuildRouter(c, controller.BuildDeps{
		Auth:    a,
		LogMW:   lm,
		Metrics: m,
		Router:  r,
	})
}

// ---------- Lifecycle ----------

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	Cfg    manifest.Config
	DB     *sql.DB
	Redis  *redis.Client
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, cfg Config, d serverDeps) {
	addr := d.Cfg.Server.Listen
	cert := d.Cfg.Server.TLSCert
	key := d.Cfg.Server.TLSKey

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
					zap.String("cert", cert),
				)
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)",
					zap.String("service", cfg.Service),
					zap.String("addr", addr),
				)
				go func() {
					srv.TLSConfig = nil
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping", zap.String("service", cfg.Service))
			err := srv.Shutdown(ctx)
			if d.Redis != nil {
				_ = d.Redis.Close()
			}
			if d.DB != nil {
				_ = d.DB.Close()
			}
			return err
		},
	})
}

// ---------- tiny helpers ----------

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
