package contact

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

// PostgresStore persists contacts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed contact store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const contactColumns = `id, customer_id, name, email, phone, role, is_primary, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, f store.ContactFilter) ([]*models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	var conds []string
	var args []any

	if f.CustomerID != nil {
		args = append(args, uuid.UUID(*f.CustomerID))
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, store.LikePattern(f.Query))
		p := fmt.Sprintf("$%d", len(args))
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE %[1]s OR email ILIKE %[1]s OR phone ILIKE %[1]s OR role ILIKE %[1]s)", p))
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := []*models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ContactID) (*models.Contact, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1`, uuid.UUID(id))
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Contact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, customer_id, name, email, phone, role, is_primary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(c.ID), uuid.UUID(c.CustomerID), c.Name, c.Email, c.Phone, c.Role,
		c.IsPrimary, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.ContactID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByCustomer(ctx context.Context, customerID domain.CustomerID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE customer_id = $1`, uuid.UUID(customerID))
	if err != nil {
		return fmt.Errorf("delete contacts by customer: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var id, customerID uuid.UUID
	err := row.Scan(&id, &customerID, &c.Name, &c.Email, &c.Phone, &c.Role,
		&c.IsPrimary, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = domain.ContactID(id)
	c.CustomerID = domain.CustomerID(customerID)
	return &c, nil
}
