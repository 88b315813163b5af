package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID
	ShopID    uuid.UUID
	Name      string
	City      string
	Phone     string
	Email     string
	CreatedAt time.Time
}

type Vehicle struct {
	ID           uuid.UUID
	ShopID       uuid.UUID
	CustomerID   uuid.UUID
	Brand        string
	Model        string
	LicensePlate string
	VIN          string
	CreatedAt    time.Time
}

type CustomerRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, customer *Customer) error
	Find(ctx context.Context, shopID, id uuid.UUID) (*Customer, error)
	// ListByShop returns the newest customers first.
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]Customer, error)
}

type VehicleRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, vehicle *Vehicle) error
	Find(ctx context.Context, shopID, id uuid.UUID) (*Vehicle, error)
	ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID) ([]Vehicle, error)
}
