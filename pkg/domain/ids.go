// Package domain holds the typed identifiers shared across the business layer.
//
// Each entity gets its own ID type over uuid.UUID so a TaskID can never be
// passed where a CustomerID is expected. Parsing rejects empty, malformed,
// and nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "bizdesk/pkg/domain-errors"
)

type (
	CustomerID  uuid.UUID
	ContactID   uuid.UUID
	TaskID      uuid.UUID
	ShipmentID  uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
)

func NewCustomerID() CustomerID   { return CustomerID(uuid.New()) }
func NewContactID() ContactID     { return ContactID(uuid.New()) }
func NewTaskID() TaskID           { return TaskID(uuid.New()) }
func NewShipmentID() ShipmentID   { return ShipmentID(uuid.New()) }
func NewOrderID() OrderID         { return OrderID(uuid.New()) }
func NewOrderItemID() OrderItemID { return OrderItemID(uuid.New()) }

func (id CustomerID) String() string  { return uuid.UUID(id).String() }
func (id ContactID) String() string   { return uuid.UUID(id).String() }
func (id TaskID) String() string      { return uuid.UUID(id).String() }
func (id ShipmentID) String() string  { return uuid.UUID(id).String() }
func (id OrderID) String() string     { return uuid.UUID(id).String() }
func (id OrderItemID) String() string { return uuid.UUID(id).String() }

func (id CustomerID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ShipmentID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id OrderID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }
func (id OrderItemID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the canonical string form in JSON payloads; defined
// types do not inherit uuid.UUID's methods.

func (id CustomerID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ContactID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TaskID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ShipmentID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id OrderID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id OrderItemID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CustomerID) UnmarshalText(b []byte) error {
	parsed, err := ParseCustomerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ContactID) UnmarshalText(b []byte) error {
	parsed, err := ParseContactID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *TaskID) UnmarshalText(b []byte) error {
	parsed, err := ParseTaskID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ShipmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseShipmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OrderID) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OrderItemID) UnmarshalText(b []byte) error {
	parsed, err := ParseOrderItemID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func ParseCustomerID(raw string) (CustomerID, error) {
	u, err := parseUUID(raw, "customer id")
	return CustomerID(u), err
}

func ParseContactID(raw string) (ContactID, error) {
	u, err := parseUUID(raw, "contact id")
	return ContactID(u), err
}

func ParseTaskID(raw string) (TaskID, error) {
	u, err := parseUUID(raw, "task id")
	return TaskID(u), err
}

func ParseShipmentID(raw string) (ShipmentID, error) {
	u, err := parseUUID(raw, "shipment id")
	return ShipmentID(u), err
}

func ParseOrderID(raw string) (OrderID, error) {
	u, err := parseUUID(raw, "order id")
	return OrderID(u), err
}

func ParseOrderItemID(raw string) (OrderItemID, error) {
	u, err := parseUUID(raw, "order item id")
	return OrderItemID(u), err
}

func parseUUID(raw, label string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" must not be the nil UUID")
	}
	return u, nil
}
