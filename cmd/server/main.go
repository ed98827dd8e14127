package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-service/config"
	"shop-service/internal/api"
	"shop-service/internal/broker"
	"shop-service/internal/service"
	"shop-service/internal/session"
	"shop-service/internal/store"
	"shop-service/internal/util"
	"shop-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop service")

	tp, err := util.InitTracer("shop-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to open data directory: %v", err)
	}
	log.Printf("Flat-file store ready at %s", db.Dir())

	var sessions session.Store
	switch cfg.Session.Backend {
	case "redis":
		redisStore, err := session.NewRedisStore(
			cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB, cfg.Session.TTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		sessions = redisStore
		log.Println("Redis session store connected")
	default:
		sessions = session.NewMemoryStore(cfg.Session.TTL)
		log.Println("In-memory session store ready")
	}

	var publisher *broker.EventPublisher
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var notifier *worker.Notifier
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		notifier = worker.NewNotifier(consumer)
		go func() {
			if err := notifier.Start(workerCtx); err != nil {
				log.Printf("Notifier worker error: %v", err)
			}
		}()
	}

	pricing := service.Pricing{
		FreeShippingThreshold: cfg.Business.FreeShippingThreshold,
		FlatShippingRate:      cfg.Business.FlatShippingRate,
		TaxRate:               cfg.Business.TaxRate,
	}

	userService := service.NewUserService(db)
	catalogService := service.NewCatalogService(db)
	cartService := service.NewCartService(db)
	checkoutService := service.NewCheckoutService(db, publisher, pricing)
	orderService := service.NewOrderService(db, publisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		userService, catalogService, cartService, checkoutService, orderService,
		sessions, cfg.Session.CookieName, cfg.Session.TTL)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	if notifier != nil {
		notifier.Stop()
	}

	log.Println("Server exited")
}
