package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gostorefront/shop-api/internal/auth"
	"github.com/gostorefront/shop-api/internal/cart"
	"github.com/gostorefront/shop-api/internal/catalog"
	"github.com/gostorefront/shop-api/internal/checkout"
	"github.com/gostorefront/shop-api/internal/config"
	"github.com/gostorefront/shop-api/internal/events"
	"github.com/gostorefront/shop-api/internal/httpx"
	kafkax "github.com/gostorefront/shop-api/internal/kafka"
	"github.com/gostorefront/shop-api/internal/metrics"
	"github.com/gostorefront/shop-api/internal/orders"
	"github.com/gostorefront/shop-api/internal/postgres"
	"github.com/gostorefront/shop-api/internal/redisx"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// DB
	if cfg.AutoMigrate {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderPlaced, 1024, logger)
	prod.Start(ctx)

	// Services
	tokens := &auth.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.JWTTTL}
	authSvc := &auth.Service{
		Repo:     &auth.Repo{DB: db},
		Tokens:   tokens,
		VerifyID: auth.NewGoogleVerifier(cfg.GoogleClientID),
	}
	checkoutSvc := checkout.NewService(&checkout.PGStore{DB: db}, logger)
	m := metrics.New("api")

	// Router & handlers
	router := httpx.NewRouter(m)
	(&httpx.AuthHandler{Service: authSvc}).Register(router)
	(&httpx.CatalogHandler{Repo: &catalog.Repo{DB: db}, Redis: rdb}).Register(router)
	(&httpx.CartHandler{Repo: &cart.Repo{DB: db}, Tokens: tokens}).Register(router)
	(&httpx.OrdersHandler{
		Checkout: checkoutSvc,
		Repo:     &orders.Repo{DB: db},
		Producer: prod,
		Redis:    rdb,
		Metrics:  m,
		Tokens:   tokens,
		Service:  cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()
	cancel()
	prod.WaitClosed()
}
