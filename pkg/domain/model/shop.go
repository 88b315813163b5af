package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Shop struct {
	ID         uuid.UUID
	Name       string
	Address    string
	City       string
	PostalCode string
	VATID      string
	Email      string
	Phone      string
	BankName   string
	IBAN       string
	BIC        string
	UpdatedAt  time.Time
}

type ShopRepository interface {
	Create(ctx context.Context, shop *Shop) error
	Find(ctx context.Context, id uuid.UUID) (*Shop, error)
	Update(ctx context.Context, shop *Shop) error
}

// DashboardStats are the three figures on the start screen.
type DashboardStats struct {
	InvoicesToday int
	InvoicesMonth int
	RevenueMonth  decimal.Decimal
}

type DashboardReader interface {
	CountInvoicesOn(ctx context.Context, shopID uuid.UUID, day time.Time) (int, error)
	// CountInvoicesSince and RevenueSince skip cancelled invoices.
	CountInvoicesSince(ctx context.Context, shopID uuid.UUID, from time.Time) (int, error)
	RevenueSince(ctx context.Context, shopID uuid.UUID, from time.Time) (decimal.Decimal, error)
}
