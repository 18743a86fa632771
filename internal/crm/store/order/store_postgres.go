package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bizdesk/internal/crm/models"
	"bizdesk/internal/crm/store"
	"bizdesk/pkg/domain"
	"bizdesk/pkg/platform/sentinel"
)

// PostgresStore persists orders and their items in PostgreSQL. Items are
// owned rows; deleting an order cascades to them.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed order store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orderColumns = `id, order_number, customer_id, status, order_date, due_date,
	total_amount, notes, shipment_id, created_at, updated_at`

const itemColumns = `id, order_id, product_name, description, quantity, unit_price,
	total_price, created_at`

func (s *PostgresStore) List(ctx context.Context, f store.OrderFilter) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListWithItems returns matching orders with their items attached.
func (s *PostgresStore) ListWithItems(ctx context.Context, f store.OrderFilter) ([]*models.OrderWithItems, error) {
	orders, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]*models.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		items, err := s.ListItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &models.OrderWithItems{Order: *o, Items: items})
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context, f store.OrderFilter) (int, error) {
	query := `SELECT COUNT(*) FROM orders`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

// SumTotalAmount sums total_amount over matching orders.
func (s *PostgresStore) SumTotalAmount(ctx context.Context, f store.OrderFilter) (float64, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var sum float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum order totals: %w", err)
	}
	return sum, nil
}

func buildConds(f store.OrderFilter) ([]string, []any) {
	var conds []string
	var args []any

	if f.CustomerID != nil {
		args = append(args, uuid.UUID(*f.CustomerID))
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.StatusNot != nil {
		args = append(args, string(*f.StatusNot))
		conds = append(conds, fmt.Sprintf("status <> $%d", len(args)))
	}
	if f.OrderedSince != nil {
		args = append(args, *f.OrderedSince)
		conds = append(conds, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if f.OrderedThrough != nil {
		args = append(args, *f.OrderedThrough)
		conds = append(conds, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	if f.Query != "" || f.ItemQuery != "" {
		var ors []string
		if f.Query != "" {
			args = append(args, store.LikePattern(f.Query))
			ors = append(ors, fmt.Sprintf("order_number ILIKE $%d", len(args)))
		}
		if f.ItemQuery != "" {
			args = append(args, store.LikePattern(f.ItemQuery))
			p := fmt.Sprintf("$%d", len(args))
			ors = append(ors, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND (oi.product_name ILIKE %[1]s OR oi.description ILIKE %[1]s))", p))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	return conds, args
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.OrderID) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, uuid.UUID(id))
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) FindByIDWithItems(ctx context.Context, id domain.OrderID) (*models.OrderWithItems, error) {
	o, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.OrderWithItems{Order: *o, Items: items}, nil
}

func (s *PostgresStore) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find order by number: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) Create(ctx context.Context, o *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, status, order_date, due_date,
			total_amount, notes, shipment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.UUID(o.ID), o.OrderNumber, uuid.UUID(o.CustomerID), string(o.Status),
		o.OrderDate, o.DueDate, o.TotalAmount, o.Notes, shipmentArg(o.ShipmentID),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, o *models.Order) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET order_number = $2, customer_id = $3, status = $4, order_date = $5,
			due_date = $6, total_amount = $7, notes = $8, shipment_id = $9, updated_at = $10
		WHERE id = $1`,
		uuid.UUID(o.ID), o.OrderNumber, uuid.UUID(o.CustomerID), string(o.Status),
		o.OrderDate, o.DueDate, o.TotalAmount, o.Notes, shipmentArg(o.ShipmentID),
		o.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update order: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.OrderID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) AddItem(ctx context.Context, item *models.OrderItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_name, description, quantity,
			unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(item.ID), uuid.UUID(item.OrderID), item.ProductName, item.Description,
		item.Quantity, item.UnitPrice, item.TotalPrice, item.CreatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("add order item: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListItems(ctx context.Context, orderID domain.OrderID) ([]*models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at, id`,
		uuid.UUID(orderID))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		var item models.OrderItem
		var id, oid uuid.UUID
		err := rows.Scan(&id, &oid, &item.ProductName, &item.Description, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.ID = domain.OrderItemID(id)
		item.OrderID = domain.OrderID(oid)
		items = append(items, &item)
	}
	return items, rows.Err()
}

func shipmentArg(id *domain.ShipmentID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	var id, customerID uuid.UUID
	var shipmentID uuid.NullUUID
	err := row.Scan(&id, &o.OrderNumber, &customerID, &o.Status, &o.OrderDate, &o.DueDate,
		&o.TotalAmount, &o.Notes, &shipmentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.ID = domain.OrderID(id)
	o.CustomerID = domain.CustomerID(customerID)
	if shipmentID.Valid {
		sid := domain.ShipmentID(shipmentID.UUID)
		o.ShipmentID = &sid
	}
	return &o, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
