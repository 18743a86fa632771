package task

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
	"bizdesk/pkg/fieldcodec"
	"bizdesk/pkg/platform/sentinel"
)

// PostgresStore persists tasks in PostgreSQL. Tags round-trip through the
// field codec at the column boundary.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed task store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const taskColumns = `id, title, description, priority, status, due_date, assigned_to,
	customer_id, shipment_id, order_id, tags, estimated_hours, actual_hours,
	completed_at, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, f store.TaskFilter) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, f store.TaskFilter) (int, error) {
	query := `SELECT COUNT(*) FROM tasks`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func buildConds(f store.TaskFilter) ([]string, []any) {
	var conds []string
	var args []any

	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.StatusNot != nil {
		args = append(args, string(*f.StatusNot))
		conds = append(conds, fmt.Sprintf("status <> $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, string(*f.Priority))
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		conds = append(conds, fmt.Sprintf("due_date < $%d", len(args)))
	}
	if f.DueFrom != nil {
		args = append(args, *f.DueFrom)
		conds = append(conds, fmt.Sprintf("due_date >= $%d", len(args)))
	}
	if f.CustomerID != nil {
		args = append(args, uuid.UUID(*f.CustomerID))
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.ShipmentID != nil {
		args = append(args, uuid.UUID(*f.ShipmentID))
		conds = append(conds, fmt.Sprintf("shipment_id = $%d", len(args)))
	}
	if f.OrderID != nil {
		args = append(args, uuid.UUID(*f.OrderID))
		conds = append(conds, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if f.HasCustomer {
		conds = append(conds, "customer_id IS NOT NULL")
	}
	if f.HasShipment {
		conds = append(conds, "shipment_id IS NOT NULL")
	}
	if f.Query != "" {
		args = append(args, store.LikePattern(f.Query))
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	return conds, args
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.TaskID) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, uuid.UUID(id))
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Create(ctx context.Context, t *models.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, priority, status, due_date, assigned_to,
			customer_id, shipment_id, order_id, tags, estimated_hours, actual_hours,
			completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(t.ID), t.Title, t.Description, string(t.Priority), string(t.Status),
		t.DueDate, t.AssignedTo, customerArg(t.CustomerID), shipmentArg(t.ShipmentID),
		orderArg(t.OrderID), fieldcodec.EncodeTags(t.Tags), t.EstimatedHours, t.ActualHours,
		t.CompletedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, t *models.Task) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = $2, description = $3, priority = $4, status = $5,
			due_date = $6, assigned_to = $7, customer_id = $8, shipment_id = $9,
			order_id = $10, tags = $11, estimated_hours = $12, actual_hours = $13,
			completed_at = $14, updated_at = $15
		WHERE id = $1`,
		uuid.UUID(t.ID), t.Title, t.Description, string(t.Priority), string(t.Status),
		t.DueDate, t.AssignedTo, customerArg(t.CustomerID), shipmentArg(t.ShipmentID),
		orderArg(t.OrderID), fieldcodec.EncodeTags(t.Tags), t.EstimatedHours, t.ActualHours,
		t.CompletedAt, t.UpdatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.TaskID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireRow(result)
}

// ClearCustomer drops the customer reference from every task pointing at the
// given customer. The schema's ON DELETE SET NULL covers the cascade case;
// this keeps the memory and PostgreSQL backends interchangeable when the
// service clears references explicitly.
func (s *PostgresStore) ClearCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET customer_id = NULL WHERE customer_id = $1`, uuid.UUID(customerID))
	if err != nil {
		return fmt.Errorf("clear task customer refs: %w", err)
	}
	return nil
}

func customerArg(id *domain.CustomerID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

func shipmentArg(id *domain.ShipmentID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

func orderArg(id *domain.OrderID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var id uuid.UUID
	var customerID, shipmentID, orderID uuid.NullUUID
	var tags string
	err := row.Scan(&id, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate,
		&t.AssignedTo, &customerID, &shipmentID, &orderID, &tags, &t.EstimatedHours,
		&t.ActualHours, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.ID = domain.TaskID(id)
	t.Tags = fieldcodec.DecodeTags(tags)
	if customerID.Valid {
		cid := domain.CustomerID(customerID.UUID)
		t.CustomerID = &cid
	}
	if shipmentID.Valid {
		sid := domain.ShipmentID(shipmentID.UUID)
		t.ShipmentID = &sid
	}
	if orderID.Valid {
		oid := domain.OrderID(orderID.UUID)
		t.OrderID = &oid
	}
	return &t, nil
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
