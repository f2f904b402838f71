package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/simbarashe-m/musika/internal/cart"
	"github.com/simbarashe-m/musika/internal/checkout"
	"github.com/simbarashe-m/musika/internal/config"
	"github.com/simbarashe-m/musika/internal/distribution"
	mhttp "github.com/simbarashe-m/musika/internal/http"
	"github.com/simbarashe-m/musika/internal/notify"
	"github.com/simbarashe-m/musika/internal/payment"
	"github.com/simbarashe-m/musika/internal/publisher"
	"github.com/simbarashe-m/musika/internal/repository"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	creds := &repository.Credentials{
		Host:              cfg.Postgres.Host,
		Port:              cfg.Postgres.Port,
		User:              cfg.Postgres.User,
		Password:          cfg.Postgres.Password,
		DBName:            cfg.Postgres.DBName,
		MigrationsDirPath: cfg.Postgres.MigrationsDirPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations completed")

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	mongoDB, err := cart.ConnectMongo(connectCtx, cfg.Mongo.URI, cfg.Mongo.DBName)
	connectCancel()
	if err != nil {
		logger.Error("failed to connect to mongo", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	cartService := cart.NewService(cart.NewMongoRepository(mongoDB), cart.NewRedisCache(redisClient), logger)
	provider := payment.NewSimulatedProvider(payment.RandomDecider{}, logger)
	dispatcher := notify.NewDispatcher(repo, logger)

	checkoutService := checkout.NewService(repo, provider, dispatcher, cartService, cfg.Checkout.ShippingFee, logger)
	distributionService := distribution.NewService(repo, provider, dispatcher, logger)

	poller := publisher.NewOutboxPoller(repo, logger, cfg.Kafka.Brokers...)
	defer poller.Close()
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	cartHandler := mhttp.NewCartHandler(cartService, requestTimeout)
	checkoutHandler := mhttp.NewCheckoutHandler(cartService, checkoutService, distributionService, repo, requestTimeout)
	router := mhttp.NewRouter(cartHandler, checkoutHandler, requestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(router, "musika"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	pollerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	wg.Wait()
	logger.Info("server exited")
}
