package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/fishmarket/backend/internal/catalog"
	"github.com/fishmarket/backend/internal/config"
	"github.com/fishmarket/backend/internal/database"
	"github.com/fishmarket/backend/internal/messaging"
	"github.com/fishmarket/backend/internal/orders"
	"github.com/fishmarket/backend/internal/promo"
	"github.com/fishmarket/backend/internal/sales"
	"github.com/fishmarket/backend/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if cfg.Database.URL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(10 * time.Second)); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var producer *messaging.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderCreatedTopic)
		defer func() { _ = producer.Close() }()
	}

	catalogStore := catalog.NewStore(db)
	promoStore := promo.NewStore(db)
	salesStore := sales.NewStore(db)
	engine := orders.NewEngine(db, catalogStore, promoStore, producer, logger)

	ordersHandler := orders.NewHandler(engine, logger)
	catalogHandler := catalog.NewHandler(catalogStore, logger)
	promoHandler := promo.NewHandler(promoStore, logger)
	salesHandler := sales.NewHandler(salesStore, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(ordersHandler.HandleSubmit))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(ordersHandler.HandleList))
	mux.HandleFunc("GET /orders/mine", telemetry.WithHTTPRoute(ordersHandler.HandleListMine))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(ordersHandler.HandleGet))
	mux.HandleFunc("POST /orders/{id}/cancel", telemetry.WithHTTPRoute(ordersHandler.HandleCancel))
	mux.HandleFunc("POST /orders/{id}/confirm", telemetry.WithHTTPRoute(ordersHandler.HandleConfirm))
	mux.HandleFunc("POST /orders/{id}/reject", telemetry.WithHTTPRoute(ordersHandler.HandleReject))
	mux.HandleFunc("POST /orders/{id}/out-for-delivery", telemetry.WithHTTPRoute(ordersHandler.HandleOutForDelivery))
	mux.HandleFunc("POST /orders/{id}/delivered", telemetry.WithHTTPRoute(ordersHandler.HandleDelivered))

	mux.HandleFunc("POST /categories", telemetry.WithHTTPRoute(catalogHandler.HandleCreateCategory))
	mux.HandleFunc("GET /categories", telemetry.WithHTTPRoute(catalogHandler.HandleListCategories))
	mux.HandleFunc("PUT /categories/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDeleteCategory))

	mux.HandleFunc("POST /products", telemetry.WithHTTPRoute(catalogHandler.HandleCreateProduct))
	mux.HandleFunc("GET /products", telemetry.WithHTTPRoute(catalogHandler.HandleListProducts))
	mux.HandleFunc("GET /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleGetProduct))
	mux.HandleFunc("PUT /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleUpdateProduct))
	mux.HandleFunc("DELETE /products/{id}", telemetry.WithHTTPRoute(catalogHandler.HandleDeleteProduct))

	mux.HandleFunc("POST /promo-codes", telemetry.WithHTTPRoute(promoHandler.HandleCreate))
	mux.HandleFunc("GET /promo-codes", telemetry.WithHTTPRoute(promoHandler.HandleList))
	mux.HandleFunc("GET /promo-codes/{id}", telemetry.WithHTTPRoute(promoHandler.HandleGet))
	mux.HandleFunc("PUT /promo-codes/{id}", telemetry.WithHTTPRoute(promoHandler.HandleUpdate))
	mux.HandleFunc("DELETE /promo-codes/{id}", telemetry.WithHTTPRoute(promoHandler.HandleDelete))

	mux.HandleFunc("GET /sales/summary", telemetry.WithHTTPRoute(salesHandler.HandleSummary))
	mux.HandleFunc("GET /sales/monthly", telemetry.WithHTTPRoute(salesHandler.HandleMonthly))
	mux.HandleFunc("GET /sales/top-products", telemetry.WithHTTPRoute(salesHandler.HandleTopProducts))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: otelhttp.NewHandler(mux, "api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting api service", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
