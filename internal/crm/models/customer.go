package models

import (
	"slices"
	"time"

	"bizdesk/pkg/domain"
)

// Customer is the aggregate root for a business relationship. Contacts are
// owned (deleted with the customer); tasks, shipments and orders hold
// non-owning back-references.
//
// Invariants:
//   - ID is assigned at creation and immutable
//   - Email and Country are required; email shape is validated before writes
//   - Tags round-trip through pkg/fieldcodec preserving order and duplicates
type Customer struct {
	ID             domain.CustomerID `json:"id"`
	Name           string            `json:"name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Company        string            `json:"company,omitempty"`
	Address        string            `json:"address,omitempty"`
	City           string            `json:"city,omitempty"`
	State          string            `json:"state,omitempty"`
	ZipCode        string            `json:"zip_code,omitempty"`
	Country        string            `json:"country"`
	Website        string            `json:"website,omitempty"`
	VATNumber      string            `json:"vat_number,omitempty"`
	Industry       string            `json:"industry,omitempty"`
	Tags           []string          `json:"tags"`
	Notes          string            `json:"notes,omitempty"`
	NeedsAttention bool              `json:"needs_attention"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// HasTag reports exact tag membership.
func (c *Customer) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// CustomerWithRelations is a customer plus everything that references it.
type CustomerWithRelations struct {
	Customer
	Contacts  []*Contact  `json:"contacts"`
	Tasks     []*Task     `json:"tasks"`
	Shipments []*Shipment `json:"shipments"`
	Orders    []*Order    `json:"orders"`
}

// Contact belongs to exactly one customer. Uniqueness of "primary per
// customer" is not enforced.
type Contact struct {
	ID         domain.ContactID  `json:"id"`
	CustomerID domain.CustomerID `json:"customer_id"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Role       string            `json:"role,omitempty"`
	IsPrimary  bool              `json:"is_primary"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
