// Package store defines the filter types shared by every entity store.
//
// Filters express the query surface the managers need: exact match,
// case-insensitive contains, date range bounds, set membership, and
// negation. A Query field means multi-field OR "contains"; an empty Query
// matches everything.
package store

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"bizdesk/internal/crm/models"
	"bizdesk/pkg/domain"
)

// CustomerFilter narrows customer listings. Query OR-spans name, email,
// company, phone, country and industry; MatchIDs is ORed in so the customer
// service can union in contact-derived and tag-derived matches.
type CustomerFilter struct {
	Query          string
	MatchIDs       []domain.CustomerID
	Industry       string
	Country        string
	NeedsAttention *bool
}

// ContactFilter narrows contact listings. Query OR-spans name, email, phone
// and role.
type ContactFilter struct {
	CustomerID *domain.CustomerID
	Query      string
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status      *models.TaskStatus
	StatusNot   *models.TaskStatus
	Priority    *models.Priority
	DueBefore   *time.Time // due_date < DueBefore
	DueFrom     *time.Time // due_date >= DueFrom
	CustomerID  *domain.CustomerID
	ShipmentID  *domain.ShipmentID
	OrderID     *domain.OrderID
	HasCustomer bool // customer reference set, regardless of value
	HasShipment bool
	Query       string // contains on title, description
}

// ShipmentFilter narrows shipment listings.
type ShipmentFilter struct {
	CustomerID      *domain.CustomerID
	Status          *models.ShipmentStatus
	StatusIn        []models.ShipmentStatus
	StatusNot       *models.ShipmentStatus
	EstimatedBefore *time.Time // estimated_delivery < EstimatedBefore
	Query           string     // contains on tracking number, origin, destination, carrier, notes
}

// OrderFilter narrows order listings. Query matches the order number;
// ItemQuery matches owned item product names and descriptions. When both are
// set they are ORed, and an order matching several criteria appears once.
type OrderFilter struct {
	CustomerID     *domain.CustomerID
	Status         *models.OrderStatus
	StatusNot      *models.OrderStatus
	OrderedSince   *time.Time // order_date >= OrderedSince
	OrderedThrough *time.Time // order_date <= OrderedThrough
	Query          string
	ItemQuery      string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern builds a contains pattern for ILIKE with the LIKE
// metacharacters in q escaped, so user input matches literally.
func LikePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// IsUniqueViolation reports whether a PostgreSQL error is a unique
// constraint hit (duplicate email, tracking number, order number).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports whether a PostgreSQL error is a foreign key
// constraint hit (e.g. deleting a customer that still has orders).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
