package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bizdesk/internal/crm/handler"
	crmmetrics "bizdesk/internal/crm/metrics"
	"bizdesk/internal/crm/service"
	"bizdesk/internal/crm/store/contact"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/order"
	"bizdesk/internal/crm/store/shipment"
	"bizdesk/internal/crm/store/task"
	"bizdesk/internal/platform/config"
	"bizdesk/internal/platform/database"
	"bizdesk/internal/platform/httpserver"
	"bizdesk/internal/platform/logger"
	platformmetrics "bizdesk/internal/platform/metrics"
	"bizdesk/internal/report"
	"bizdesk/pkg/platform/middleware/requestid"
	"bizdesk/pkg/platform/middleware/requesttime"
)

// main wires configuration, the chosen store backend, services and the HTTP
// router, then runs the server until a shutdown signal.
func main() {
	log := logger.New()
	cfg := config.FromEnv(log)
	ctx := context.Background()

	var (
		customerStore service.CustomerStore
		contactStore  service.ContactStore
		taskStore     service.TaskStore
		shipmentStore service.ShipmentStore
		orderStore    service.OrderStore
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Info("using in-memory stores")
		customerStore = customer.NewInMemory()
		contactStore = contact.NewInMemory()
		taskStore = task.NewInMemory()
		shipmentStore = shipment.NewInMemory()
		orderStore = order.NewInMemory()
	default:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("using postgres stores")
		customerStore = customer.NewPostgres(db)
		contactStore = contact.NewPostgres(db)
		taskStore = task.NewPostgres(db)
		shipmentStore = shipment.NewPostgres(db)
		orderStore = order.NewPostgres(db)
	}

	m := crmmetrics.New()
	opts := []service.Option{service.WithLogger(log), service.WithMetrics(m)}

	customers := service.NewCustomerService(customerStore, contactStore, taskStore, shipmentStore, orderStore, opts...)
	tasks := service.NewTaskService(taskStore, customerStore, shipmentStore, orderStore, opts...)
	shipments := service.NewShipmentService(shipmentStore, customerStore, opts...)
	orders := service.NewOrderService(orderStore, customerStore, shipmentStore, opts...)
	reports := report.NewService(customers, tasks, shipments, orders,
		report.WithLogger(log), report.WithMetrics(m))

	h := handler.New(customers, tasks, shipments, orders, reports, log)
	httpMetrics := platformmetrics.NewHTTP()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(httpMetrics.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	h.Register(r)

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
