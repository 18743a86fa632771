// Command report prints the daily business report once and exits. It shares
// the server's configuration, so STORE=memory renders an empty report and a
// DATABASE_URL renders the real one.
package main

import (
	"context"
	"fmt"
	"os"

	"bizdesk/internal/crm/service"
	"bizdesk/internal/crm/store/contact"
	"bizdesk/internal/crm/store/customer"
	"bizdesk/internal/crm/store/order"
	"bizdesk/internal/crm/store/shipment"
	"bizdesk/internal/crm/store/task"
	"bizdesk/internal/platform/config"
	"bizdesk/internal/platform/database"
	"bizdesk/internal/platform/logger"
	"bizdesk/internal/report"
)

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
	if cfg.Store == config.StoreMemory {
		customerStore = customer.NewInMemory()
		contactStore = contact.NewInMemory()
		taskStore = task.NewInMemory()
		shipmentStore = shipment.NewInMemory()
		orderStore = order.NewInMemory()
	} else {
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
		customerStore = customer.NewPostgres(db)
		contactStore = contact.NewPostgres(db)
		taskStore = task.NewPostgres(db)
		shipmentStore = shipment.NewPostgres(db)
		orderStore = order.NewPostgres(db)
	}

	customers := service.NewCustomerService(customerStore, contactStore, taskStore, shipmentStore, orderStore, service.WithLogger(log))
	tasks := service.NewTaskService(taskStore, customerStore, shipmentStore, orderStore, service.WithLogger(log))
	shipments := service.NewShipmentService(shipmentStore, customerStore, service.WithLogger(log))
	orders := service.NewOrderService(orderStore, customerStore, shipmentStore, service.WithLogger(log))
	reports := report.NewService(customers, tasks, shipments, orders, report.WithLogger(log))

	text, err := reports.GenerateDailyReport(ctx)
	if err != nil {
		log.Error("report generation failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
