package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	Draft     InvoiceStatus = "draft"
	Final     InvoiceStatus = "final"
	Paid      InvoiceStatus = "paid"
	Cancelled InvoiceStatus = "cancelled"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	Draft:     {Final, Cancelled},
	Final:     {Paid, Cancelled},
	Paid:      nil,
	Cancelled: nil,
}

func (s InvoiceStatus) Valid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

// Editable reports whether line items may still be added.
func (s InvoiceStatus) Editable() bool { return s == Draft }

func (s InvoiceStatus) Terminal() bool {
	next, ok := invoiceTransitions[s]
	return ok && len(next) == 0
}

func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo validates a lifecycle step and returns the new status.
func (s InvoiceStatus) TransitionTo(next InvoiceStatus) (InvoiceStatus, error) {
	if !s.CanTransitionTo(next) {
		return s, &InvalidStateError{Reason: "invoice cannot move from " + string(s) + " to " + string(next)}
	}
	return next, nil
}

type Invoice struct {
	ID            uuid.UUID
	ShopID        uuid.UUID
	CustomerID    uuid.UUID
	VehicleID     *uuid.UUID
	InvoiceNumber *string
	Status        InvoiceStatus
	Notes         string
	TotalNet      decimal.Decimal
	TotalVAT      decimal.Decimal
	TotalGross    decimal.Decimal
	InvoiceDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type LineItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	NetAmount   decimal.Decimal
	VATAmount   decimal.Decimal
	GrossAmount decimal.Decimal
	CreatedAt   time.Time
}

type InvoiceRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, invoice *Invoice) error
	// Find returns ErrInvoiceNotFound for invoices of other shops.
	Find(ctx context.Context, shopID, id uuid.UUID) (*Invoice, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]Invoice, error)
	// AddItem inserts only while the invoice is a draft and returns ErrInvoiceNotEditable otherwise.
	AddItem(ctx context.Context, item *LineItem) error
	ListItems(ctx context.Context, invoiceID uuid.UUID) ([]LineItem, error)
}

// TotalsRecalculator recomputes the three invoice totals from the full item set.
// It is the only writer of the totals.
type TotalsRecalculator interface {
	RecalculateTotals(ctx context.Context, invoiceID uuid.UUID) error
}

// InvoiceFinalizer moves a draft invoice to final and returns the assigned number.
type InvoiceFinalizer interface {
	FinalizeInvoice(ctx context.Context, invoiceID uuid.UUID, accessToken string) (string, error)
}

// InvoiceNumberIssuer is the store side of finalization: a compare-and-swap from draft to
// final that draws the next number of the shop's sequence.
type InvoiceNumberIssuer interface {
	IssueInvoiceNumber(ctx context.Context, shopID, invoiceID uuid.UUID, issuedAt time.Time) (string, error)
}
