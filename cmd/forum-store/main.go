package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pribylovaa/go-forum-store/internal/config"
	forumhttp "github.com/pribylovaa/go-forum-store/internal/http"
	"github.com/pribylovaa/go-forum-store/internal/http/handlers"
	"github.com/pribylovaa/go-forum-store/internal/metrics"
	"github.com/pribylovaa/go-forum-store/internal/service"
	"github.com/pribylovaa/go-forum-store/internal/storage/document"
	forumgrpc "github.com/pribylovaa/go-forum-store/internal/transport/grpc"
)

// Константы окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting forum-store", "env", cfg.Env, "driver", cfg.Storage.Driver)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	backend, err := openBackend(dbCtx, cfg.Storage)
	dbCancel()
	if err != nil {
		log.Error("storage_open_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("storage_opened", "driver", cfg.Storage.Driver, "target", storageTarget(cfg.Storage))

	m := metrics.New(prometheus.DefaultRegisterer)

	store := document.New(backend, document.Options{
		ReloadOnMiss: cfg.Storage.ReloadOnMiss(),
		Observer:     m,
	})

	loadCtx, loadCancel := context.WithTimeout(rootCtx, cfg.Timeouts.Service)
	posts := store.LoadAll(loadCtx)
	loadCancel()
	log.Info("store_loaded", "posts", len(posts))

	svc := service.New(store, *cfg)
	log.Info("service_initialized")

	var ready atomic.Bool

	router := forumhttp.NewRouter(svc, forumhttp.Options{
		Logger:   log,
		Timeout:  cfg.HTTP.Timeout,
		BasePath: cfg.HTTP.BasePath,
		Feed: handlers.FeedOptions{
			Title: cfg.Feed.Title,
			Link:  cfg.Feed.Link,
			Limit: cfg.Feed.Limit,
		},
		Ready:    ready.Load,
		Metrics:  metrics.Handler(nil),
		Observer: m,
	})

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcSrv := forumgrpc.NewServer(forumgrpc.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Service,
		Reflection: cfg.Env == envLocal || cfg.Env == envDev,
	})

	addr := cfg.GRPC.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("grpc_listen_failed",
			slog.String("addr", addr),
			slog.String("err", err.Error()),
		)
		rootCancel()
		_ = httpSrv.Shutdown(context.Background())
		_ = store.Close(context.Background())
		os.Exit(1)
	}

	grpcSrv.SetServing(true)
	ready.Store(true)

	serveErrCh := make(chan error, 1)
	go func() {
		serveErrCh <- grpcSrv.Serve(lis)
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("grpc_serve_failed", slog.String("err", err.Error()))
		}
	}

	ready.Store(false)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	grpcSrv.Shutdown(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}

	// Мутации, чьё сохранение не удалось, получают ещё одну попытку.
	if store.Dirty() {
		if err := store.Save(shutdownCtx); err != nil {
			log.Error("final_save_failed", slog.String("err", err.Error()))
		}
	}
	shutdownCancel()

	rootCancel()
	_ = store.Close(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger - формат и уровень логов по окружению.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
