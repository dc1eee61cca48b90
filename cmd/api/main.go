package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/blob"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/book"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/config"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/httpx"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/platform/openlibrary"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logger := mustBuildLogger(cfg.Production)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.DatabaseDSN, logger)
	defer dbPool.Close()

	blobStore, err := blob.NewDiskStore(cfg.ImagesDir, cfg.PublicBaseURL+"/images")
	if err != nil {
		logger.Fatal("init blob store", zap.Error(err))
	}

	bookRepo := book.NewPostgresRepo(dbPool, cfg.QueryTimeout)
	bookService := book.NewService(bookRepo, blobStore)
	bookHandler := book.NewHTTPHandler(bookService, logger)

	olClient := openlibrary.NewClient(cfg.Seed.UserAgent, cfg.Seed.RPS, cfg.Seed.MaxRetries)
	seeder := seed.NewLoader(bookRepo, olClient, seed.Config{
		Query: cfg.Seed.Query,
		Limit: cfg.Seed.Limit,
	}, logger)
	if err := seeder.Run(ctx); err != nil {
		// An unreachable catalog leaves the store empty but the service usable.
		logger.Warn("seed store", zap.Error(err))
	}

	mux := http.NewServeMux()
	bookHandler.Routes(mux)
	mux.Handle("GET /images/", http.StripPrefix("/images/", http.FileServer(http.Dir(blobStore.Dir()))))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := dbPool.Ping(pingCtx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	handler := httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.RequestSizeLimitMiddleware(cfg.MaxRequestBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func mustBuildLogger(production bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	return logger
}

func mustOpenDB(ctx context.Context, dsn string, logger *zap.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("create db pool", zap.Error(err))
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Fatal("ping database", zap.String("dsn", redactDSN(dsn)), zap.Error(err))
	}

	logger.Info("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
