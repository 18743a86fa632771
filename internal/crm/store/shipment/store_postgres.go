package shipment

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

// PostgresStore persists shipments in PostgreSQL. Dimensions round-trip
// through the field codec at the column boundary.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed shipment store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const shipmentColumns = `id, tracking_number, customer_id, origin, destination, carrier,
	status, estimated_delivery, actual_delivery, weight, dimensions, value, insurance,
	notes, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, f store.ShipmentFilter) ([]*models.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	out := []*models.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context, f store.ShipmentFilter) (int, error) {
	query := `SELECT COUNT(*) FROM shipments`
	conds, args := buildConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count shipments: %w", err)
	}
	return count, nil
}

func buildConds(f store.ShipmentFilter) ([]string, []any) {
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
	if len(f.StatusIn) > 0 {
		statuses := make([]string, len(f.StatusIn))
		for i, st := range f.StatusIn {
			statuses[i] = string(st)
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d::text[])", len(args)))
	}
	if f.StatusNot != nil {
		args = append(args, string(*f.StatusNot))
		conds = append(conds, fmt.Sprintf("status <> $%d", len(args)))
	}
	if f.EstimatedBefore != nil {
		args = append(args, *f.EstimatedBefore)
		conds = append(conds, fmt.Sprintf("estimated_delivery < $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, store.LikePattern(f.Query))
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf(
			"(tracking_number ILIKE %[1]s OR origin ILIKE %[1]s OR destination ILIKE %[1]s OR carrier ILIKE %[1]s OR notes ILIKE %[1]s)", p))
	}
	return conds, args
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ShipmentID) (*models.Shipment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, uuid.UUID(id))
	sh, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find shipment: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE tracking_number = $1`, trackingNumber)
	sh, err := scanShipment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find shipment by tracking number: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) Create(ctx context.Context, sh *models.Shipment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shipments (id, tracking_number, customer_id, origin, destination, carrier,
			status, estimated_delivery, actual_delivery, weight, dimensions, value, insurance,
			notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(sh.ID), sh.TrackingNumber, uuid.UUID(sh.CustomerID), sh.Origin,
		sh.Destination, sh.Carrier, string(sh.Status), sh.EstimatedDelivery, sh.ActualDelivery,
		sh.Weight, fieldcodec.EncodeDimensions(sh.Dimensions), sh.Value, sh.Insurance,
		sh.Notes, sh.CreatedAt, sh.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create shipment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, sh *models.Shipment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shipments SET tracking_number = $2, customer_id = $3, origin = $4,
			destination = $5, carrier = $6, status = $7, estimated_delivery = $8,
			actual_delivery = $9, weight = $10, dimensions = $11, value = $12,
			insurance = $13, notes = $14, updated_at = $15
		WHERE id = $1`,
		uuid.UUID(sh.ID), sh.TrackingNumber, uuid.UUID(sh.CustomerID), sh.Origin,
		sh.Destination, sh.Carrier, string(sh.Status), sh.EstimatedDelivery, sh.ActualDelivery,
		sh.Weight, fieldcodec.EncodeDimensions(sh.Dimensions), sh.Value, sh.Insurance,
		sh.Notes, sh.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update shipment: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ShipmentID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete shipment: %w", err)
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var sh models.Shipment
	var id, customerID uuid.UUID
	var dimensions string
	err := row.Scan(&id, &sh.TrackingNumber, &customerID, &sh.Origin, &sh.Destination,
		&sh.Carrier, &sh.Status, &sh.EstimatedDelivery, &sh.ActualDelivery, &sh.Weight,
		&dimensions, &sh.Value, &sh.Insurance, &sh.Notes, &sh.CreatedAt, &sh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sh.ID = domain.ShipmentID(id)
	sh.CustomerID = domain.CustomerID(customerID)
	sh.Dimensions = fieldcodec.DecodeDimensions(dimensions)
	return &sh, nil
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
