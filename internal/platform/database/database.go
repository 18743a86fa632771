// Package database opens the PostgreSQL handle and applies the schema.
//
// The handle is constructed once in main and passed to the stores; nothing
// in this repository reaches for a process-wide singleton.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to PostgreSQL via the pgx stdlib driver and verifies the
// connection with a bounded ping.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// Migrate applies the schema. Statements are idempotent so repeated startup
// is safe; there is no versioned migration history at this scale.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// tags and dimensions are JSON text inside scalar columns; they round-trip
// through pkg/fieldcodec, never through SQL predicates.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id              UUID PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	phone           TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	address         TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL DEFAULT '',
	zip_code        TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL,
	website         TEXT NOT NULL DEFAULT '',
	vat_number      TEXT NOT NULL DEFAULT '',
	industry        TEXT NOT NULL DEFAULT '',
	tags            TEXT NOT NULL DEFAULT '[]',
	notes           TEXT NOT NULL DEFAULT '',
	needs_attention BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id          UUID PRIMARY KEY,
	customer_id UUID NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL DEFAULT '',
	is_primary  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS shipments (
	id                 UUID PRIMARY KEY,
	tracking_number    TEXT NOT NULL UNIQUE,
	customer_id        UUID NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
	origin             TEXT NOT NULL,
	destination        TEXT NOT NULL,
	carrier            TEXT NOT NULL,
	status             TEXT NOT NULL,
	estimated_delivery TIMESTAMPTZ,
	actual_delivery    TIMESTAMPTZ,
	weight             DOUBLE PRECISION,
	dimensions         TEXT NOT NULL DEFAULT '',
	value              DOUBLE PRECISION,
	insurance          DOUBLE PRECISION,
	notes              TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id           UUID PRIMARY KEY,
	order_number TEXT NOT NULL UNIQUE,
	customer_id  UUID NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
	status       TEXT NOT NULL,
	order_date   TIMESTAMPTZ NOT NULL,
	due_date     TIMESTAMPTZ,
	total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
	notes        TEXT NOT NULL DEFAULT '',
	shipment_id  UUID REFERENCES shipments(id) ON DELETE SET NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
	id          UUID PRIMARY KEY,
	order_id    UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL,
	unit_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id              UUID PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	priority        TEXT NOT NULL,
	status          TEXT NOT NULL,
	due_date        TIMESTAMPTZ,
	assigned_to     TEXT NOT NULL DEFAULT '',
	customer_id     UUID REFERENCES customers(id) ON DELETE SET NULL,
	shipment_id     UUID REFERENCES shipments(id) ON DELETE SET NULL,
	order_id        UUID REFERENCES orders(id) ON DELETE SET NULL,
	tags            TEXT NOT NULL DEFAULT '[]',
	estimated_hours DOUBLE PRECISION,
	actual_hours    DOUBLE PRECISION,
	completed_at    TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_customer ON contacts(customer_id);
CREATE INDEX IF NOT EXISTS idx_shipments_customer ON shipments(customer_id);
CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date);
CREATE INDEX IF NOT EXISTS idx_tasks_customer ON tasks(customer_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
`
