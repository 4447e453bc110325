package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/notesapp/internal/accounts"
	"github.com/geocoder89/notesapp/internal/cache"
	"github.com/geocoder89/notesapp/internal/config"
	"github.com/geocoder89/notesapp/internal/db"
	"github.com/geocoder89/notesapp/internal/domain/user"
	"github.com/geocoder89/notesapp/internal/export"
	httpx "github.com/geocoder89/notesapp/internal/http"
	"github.com/geocoder89/notesapp/internal/http/handlers"
	"github.com/geocoder89/notesapp/internal/http/middlewares"
	"github.com/geocoder89/notesapp/internal/observability"
	"github.com/geocoder89/notesapp/internal/redisclient"
	"github.com/geocoder89/notesapp/internal/repo/memory"
	"github.com/geocoder89/notesapp/internal/repo/postgres"
	"github.com/geocoder89/notesapp/internal/session"
	"github.com/geocoder89/notesapp/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "notes-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OTelEndpoint,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Check{}

	// wire up repositories
	var (
		notesRepo handlers.NotesRepository
		usersRepo accounts.UserStore
	)

	switch cfg.Storage {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		notesRepo = memory.NewNotesRepo()
		usersRepo = memory.NewUsersRepo()
	default:
		pool, err := db.NewPool(ctx, cfg.DBURL, db.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.MigrationsAuto {
			m, err := db.NewMigrator(pool, log)
			if err == nil {
				err = m.Ensure(ctx)
			}
			if err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
		}

		checks["db"] = pool.Ping
		notesRepo = postgres.NewNotesRepo(pool, prom)
		usersRepo = postgres.NewUsersRepo(pool, prom)
	}

	lookups := cache.New[user.User](30 * time.Second)

	svc, err := accounts.NewService(usersRepo, accounts.WithLookupCache(lookups))
	if err != nil {
		log.Error("accounts init failed", "err", err)
		os.Exit(1)
	}

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	if err := db.EnsureSeedUser(seedCtx, svc, cfg); err != nil {
		log.Warn("seed user not created", "err", err)
	}
	cancelSeed()

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	tasks := []worker.Task{
		{Name: "auth_rate_limiter", Sweep: authLimiter.Sweep},
		{Name: "user_lookups", Sweep: lookups.Sweep},
	}

	// sessions live in redis when configured, otherwise in process
	var store session.Store

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := config.WithTimeout(2 * time.Second)
		err := rdb.Ping(pctx)
		cancel()
		if err != nil {
			log.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}

		checks["redis"] = rdb.Ping
		store = session.NewRedisStore(rdb.Raw())
	} else {
		mem := session.NewMemoryStore()
		tasks = append(tasks, worker.Task{Name: "sessions", Sweep: mem.Sweep})
		store = mem
	}

	sessions := session.NewManager(store, session.NewSigner(cfg.Secret()), session.Options{
		TTL:     cfg.SessionTTL,
		Sliding: cfg.SessionSliding,
	}, log)

	go worker.New(worker.Config{Interval: time.Minute}, log, tasks...).Run(ctx)

	var shuttingDown atomic.Bool

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Config:       cfg,
		Log:          log,
		Notes:        notesRepo,
		Accounts:     svc,
		Sessions:     sessions,
		Exports:      export.Default(),
		Checks:       checks,
		ShuttingDown: shuttingDown.Load,
		Prom:         prom,
		Gatherer:     reg,
		AuthLimiter:  authLimiter,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	<-ctx.Done()
	shuttingDown.Store(true)
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
