package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/fsk/redis-orders/configs"
	"github.com/fsk/redis-orders/internal/adapter/archive"
	"github.com/fsk/redis-orders/internal/adapter/handler"
	"github.com/fsk/redis-orders/internal/adapter/repo"
	"github.com/fsk/redis-orders/internal/adapter/storage"
	"github.com/fsk/redis-orders/internal/core/domain"
	"github.com/fsk/redis-orders/internal/core/service"
	"github.com/fsk/redis-orders/internal/logging"
	"github.com/fsk/redis-orders/internal/port"
)

func main() {
	cfgDir := flag.String("config", "./configs", "config directory")
	envName := flag.String("env", "dev", "environment overlay name")
	flag.Parse()

	cfg, err := configs.Load(*cfgDir, *envName)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, parseLevel(cfg.App.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is the primary store
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr)

	store := storage.NewRedisStore(rdb)
	productRepo := repo.NewProductRepo(store)
	orderRepo := repo.NewOrderRepo(store)
	customerRepo := repo.NewCustomerRepo(store)

	// Optional relational archive for committed orders
	var (
		db        *sql.DB
		queueSize int
	)
	if cfg.Archive.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.Archive.MySQLDSN)
		if err != nil {
			log.Fatalf("failed to open mysql: %v", err)
		}
		db.SetMaxOpenConns(cfg.Archive.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Archive.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Archive.ConnMaxLifetime)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		logger.Info("connected to mysql archive")
		queueSize = cfg.Archive.QueueSize
	}

	orderService := service.NewOrderService(store, orderRepo, queueSize, logging.New("orders"))
	productService := service.NewProductService(productRepo)
	customerService := service.NewCustomerService(customerRepo)
	harness := service.NewStressHarness(store, logging.New("stress"))

	var wg sync.WaitGroup
	if db != nil {
		arch := archive.NewMySQLArchive(db)
		for i := 0; i < cfg.Archive.Workers; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				archiveLoop(id, orderService.ArchiveQueue(), arch, logging.New("archive"))
			}(i)
		}
		logger.Info("started archive workers", "count", cfg.Archive.Workers)
	}

	router := handler.NewRouter(
		logging.New("http"),
		handler.NewOrderHandler(orderService),
		handler.NewProductHandler(productService),
		handler.NewCustomerHandler(customerService),
		handler.NewPerfHandler(harness, handler.PerfDefaults{
			CounterKey:   cfg.Stress.CounterKey,
			ComputeDelay: cfg.Stress.ComputeDelay,
			MaxRetries:   cfg.Stress.MaxRetries,
			RetryBackoff: cfg.Stress.RetryBackoff,
		}),
	)

	httpServer := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.App.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "err", err)
	}

	// Drain the archive queue before closing connections
	orderService.Close()
	wg.Wait()

	rdb.Close()
	if db != nil {
		db.Close()
	}
	logger.Info("stopped")
}

func archiveLoop(id int, queue <-chan domain.Order, arch port.OrderArchive, log *slog.Logger) {
	for order := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := arch.ArchiveOrder(ctx, order); err != nil {
			log.Error("archive failed", "worker", id, "order_id", order.ID, "err", err)
		} else {
			log.Info("order archived", "worker", id, "order_id", order.ID)
		}
		cancel()
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
