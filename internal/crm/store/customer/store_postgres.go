package customer

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

// PostgresStore persists customers in PostgreSQL. Tags are serialized
// through the field codec at the column boundary; tag predicates are never
// pushed into SQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed customer store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const customerColumns = `id, name, email, phone, company, address, city, state, zip_code,
	country, website, vat_number, industry, tags, notes, needs_attention, created_at, updated_at`

func (s *PostgresStore) List(ctx context.Context, f store.CustomerFilter) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var conds []string
	var args []any

	if f.Industry != "" {
		args = append(args, f.Industry)
		conds = append(conds, fmt.Sprintf("industry = $%d", len(args)))
	}
	if f.Country != "" {
		args = append(args, f.Country)
		conds = append(conds, fmt.Sprintf("country = $%d", len(args)))
	}
	if f.NeedsAttention != nil {
		args = append(args, *f.NeedsAttention)
		conds = append(conds, fmt.Sprintf("needs_attention = $%d", len(args)))
	}
	if f.Query != "" || len(f.MatchIDs) > 0 {
		var ors []string
		if f.Query != "" {
			args = append(args, store.LikePattern(f.Query))
			p := fmt.Sprintf("$%d", len(args))
			ors = append(ors, fmt.Sprintf(
				"name ILIKE %[1]s OR email ILIKE %[1]s OR company ILIKE %[1]s OR phone ILIKE %[1]s OR country ILIKE %[1]s OR industry ILIKE %[1]s", p))
		}
		if len(f.MatchIDs) > 0 {
			ids := make([]string, len(f.MatchIDs))
			for i, id := range f.MatchIDs {
				ids[i] = id.String()
			}
			args = append(args, ids)
			ors = append(ors, fmt.Sprintf("id = ANY($%d::uuid[])", len(args)))
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	out := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.CustomerID) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, uuid.UUID(id))
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, c *models.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, company, address, city, state, zip_code,
			country, website, vat_number, industry, tags, notes, needs_attention, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		uuid.UUID(c.ID), c.Name, c.Email, c.Phone, c.Company, c.Address, c.City, c.State, c.ZipCode,
		c.Country, c.Website, c.VATNumber, c.Industry, fieldcodec.EncodeTags(c.Tags), c.Notes,
		c.NeedsAttention, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Customer) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = $2, email = $3, phone = $4, company = $5, address = $6,
			city = $7, state = $8, zip_code = $9, country = $10, website = $11, vat_number = $12,
			industry = $13, tags = $14, notes = $15, needs_attention = $16, updated_at = $17
		WHERE id = $1`,
		uuid.UUID(c.ID), c.Name, c.Email, c.Phone, c.Company, c.Address, c.City, c.State,
		c.ZipCode, c.Country, c.Website, c.VATNumber, c.Industry, fieldcodec.EncodeTags(c.Tags),
		c.Notes, c.NeedsAttention, c.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.CustomerID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	var id uuid.UUID
	var tags string
	err := row.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.City, &c.State,
		&c.ZipCode, &c.Country, &c.Website, &c.VATNumber, &c.Industry, &tags, &c.Notes,
		&c.NeedsAttention, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = domain.CustomerID(id)
	c.Tags = fieldcodec.DecodeTags(tags)
	return &c, nil
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
