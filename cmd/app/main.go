package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/cache"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/config"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/db/postgres"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/db/postgres/providers"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/orderbook"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/publisher"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/repository"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/repository/memory"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/routes"
	"github.com/rushiveerasaisurya/bondli-rushiveerasaisurya/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// 1. Store: PostgreSQL when configured, in-memory for demo mode.
	var store service.Store
	if cfg.UsePostgres() {
		postgresClient, err := postgres.ConnectDB(cfg, logger)
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		defer postgresClient.Stop()

		if err := postgresClient.InitSchema(); err != nil {
			logger.Fatal("initialize database schema", zap.Error(err))
		}

		dbHelper, err := providers.NewDbProvider(postgresClient.PostgresClient)
		if err != nil {
			logger.Fatal("initialize db helper", zap.Error(err))
		}
		store = repository.NewPostgresStore(dbHelper)
	} else {
		logger.Info("no POSTGRES_HOST configured, using in-memory store")
		store = memory.NewStore()
	}

	// 2. Event publisher: Kafka when brokers are configured.
	var pub publisher.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		pub = kp
	} else {
		pub = publisher.NewLogPublisher(logger)
	}

	// 3. Read cache, order books, engine, service.
	readCache, err := cache.New(1<<26, cfg.CacheTTL)
	if err != nil {
		logger.Fatal("initialize cache", zap.Error(err))
	}

	books := orderbook.NewManager(store.GetOpenOrders)
	engine := service.NewMatchingEngine(store, books, pub, logger)
	orderSrv := service.NewOrderService(store, engine, readCache)
	if initial, err := decimal.NewFromString(cfg.InitialCashBalance); err == nil {
		orderSrv.InitialCash = initial
	}

	// 4. Gin router and handlers.
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	routes.RegisterRoutes(router, orderSrv)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// 5. Run the server in a goroutine so main can wait on signals.
	go func() {
		logger.Info("bond trading API running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("start server", zap.Error(err))
		}
	}()

	// 6. Wait for an OS signal, then shut down gracefully.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
