// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fieldcheck/internal/audit"
	"fieldcheck/internal/broadcast"
	"fieldcheck/internal/platform/config"
	"fieldcheck/internal/platform/httpserver"
	"fieldcheck/internal/platform/logger"
	"fieldcheck/internal/platform/metrics"
	platformredis "fieldcheck/internal/platform/redis"
	"fieldcheck/internal/submission"
	submissionhandler "fieldcheck/internal/submission/handler"
	"fieldcheck/internal/submission/service"
	httptransport "fieldcheck/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store submission.Store
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		pg := submission.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrate postgres", "error", err)
			os.Exit(1)
		}
		store = pg
		log.Info("using postgres submission store")
	} else {
		store = submission.NewMemoryStore()
		log.Info("using in-memory submission store")
	}

	hub := broadcast.NewHub(log, m)

	var publisher broadcast.Publisher = hub
	var bridge *broadcast.RedisBridge
	if cfg.RedisURL != "" {
		rdb, err := platformredis.New(cfg.RedisURL)
		if err != nil {
			log.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		bridge = broadcast.NewRedisBridge(rdb.Client, hub, log, broadcast.DefaultRedisChannel)
		publisher = bridge
		log.Info("broadcast bridged through redis")
	}

	auditStore := audit.NewMemoryStore()
	auditPub := audit.NewPublisher(256, log)
	auditWorker := audit.NewWorker(auditStore, auditPub.Inbox(), log)

	svc := service.New(store, publisher, auditPub, log, m)
	submissions := submissionhandler.New(svc, log)
	channels := broadcast.NewHandler(hub, publisher, log, cfg.HeartbeatInterval)

	router := httptransport.NewRouter(submissions, channels, log, m)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if bridge != nil {
		g.Go(func() error {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info("starting fieldcheck", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Shutdown leaves hijacked websocket connections alone; close them
		// through the hub so channels disconnect promptly.
		hub.Shutdown()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
