package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/api"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/cart"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/catalog"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/checkout"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/config"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/identity"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/ledger"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/metrics"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/notification"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)
	if err := cart.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Printf("Redis ping succeeded")

	ledgerStore, err := openLedger(cfg)
	if err != nil {
		log.Fatalf("Failed to open ledger store: %v", err)
	}
	defer ledgerStore.Close()
	if err := ledgerStore.RunMigrations(cfg.MigrationsDirPath); err != nil {
		log.Fatalf("Failed to run ledger migrations: %v", err)
	}
	log.Println("Ledger migrations completed")

	var sink notification.Sink
	if cfg.KafkaBrokers != "" {
		kafkaSink := notification.NewKafkaSink(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Printf("Publishing purchase notifications to %s", cfg.KafkaBrokers)
	} else {
		sink = notification.NewLogSink()
		log.Println("No Kafka brokers configured, notifications are log-only")
	}

	users := identity.NewMongoStore(mongoDB)
	catalogAccessor := catalog.NewMongoAccessor(mongoDB)
	cartService := cart.NewService(cart.NewMongoRepository(mongoDB), cart.NewRedisCache(redisClient))

	reconciler := checkout.NewService(users, catalogAccessor, ledgerStore, cartService, sink, checkout.Timeouts{
		Catalog: cfg.CatalogTimeout,
		Ledger:  cfg.LedgerTimeout,
		Notify:  cfg.NotifyTimeout,
	})
	queryService := checkout.NewQueryService(ledgerStore)

	serverMetrics := metrics.NewServerMetrics()
	router := api.NewRouter(
		api.NewPurchaseHandler(reconciler, queryService, cartService, serverMetrics),
		api.NewCartHandler(cartService),
		api.NewProductHandler(catalogAccessor),
		serverMetrics,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Shop API listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := mongoDB.Client().Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect error: %v", err)
	}
	log.Println("Shop API stopped")
}

func openLedger(cfg *config.Config) (*ledger.SQLStore, error) {
	if cfg.LedgerDBHost == "" {
		log.Printf("LEDGER_DB_HOST not set, using sqlite ledger at %s", cfg.LedgerSQLitePath)
		return ledger.NewSQLiteStore(cfg.LedgerSQLitePath)
	}
	return ledger.NewPostgresStore(&ledger.Credentials{
		Host:              cfg.LedgerDBHost,
		Port:              cfg.LedgerDBPort,
		User:              cfg.LedgerDBUser,
		Password:          cfg.LedgerDBPassword,
		DBName:            cfg.LedgerDBName,
		MigrationsDirPath: cfg.MigrationsDirPath,
	})
}
