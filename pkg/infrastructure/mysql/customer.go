package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"autoshop/pkg/domain/model"
)

type customerRow struct {
	ID        uuid.UUID `db:"id"`
	ShopID    uuid.UUID `db:"shop_id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	Phone     string    `db:"phone"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO customers (id, shop_id, name, city, phone, email, created_at)
		VALUES (:id, :shop_id, :name, :city, :phone, :email, :created_at)`,
		customerRow(*customer),
	)
	return errors.Wrap(err, "failed to insert customer")
}

func (r *CustomerRepository) Find(ctx context.Context, shopID, id uuid.UUID) (*model.Customer, error) {
	var row customerRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, shop_id, name, city, phone, email, created_at
		FROM customers WHERE id = ? AND shop_id = ?`, id, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCustomerNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select customer")
	}
	customer := model.Customer(row)
	return &customer, nil
}

func (r *CustomerRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Customer, error) {
	var rows []customerRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, shop_id, name, city, phone, email, created_at
		FROM customers WHERE shop_id = ? ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select customers")
	}
	customers := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, model.Customer(row))
	}
	return customers, nil
}

type vehicleRow struct {
	ID           uuid.UUID `db:"id"`
	ShopID       uuid.UUID `db:"shop_id"`
	CustomerID   uuid.UUID `db:"customer_id"`
	Brand        string    `db:"brand"`
	Model        string    `db:"model"`
	LicensePlate string    `db:"license_plate"`
	VIN          string    `db:"vin"`
	CreatedAt    time.Time `db:"created_at"`
}

type VehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO vehicles (id, shop_id, customer_id, brand, model, license_plate, vin, created_at)
		VALUES (:id, :shop_id, :customer_id, :brand, :model, :license_plate, :vin, :created_at)`,
		vehicleRow(*vehicle),
	)
	return errors.Wrap(err, "failed to insert vehicle")
}

func (r *VehicleRepository) Find(ctx context.Context, shopID, id uuid.UUID) (*model.Vehicle, error) {
	var row vehicleRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, shop_id, customer_id, brand, model, license_plate, vin, created_at
		FROM vehicles WHERE id = ? AND shop_id = ?`, id, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrVehicleNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select vehicle")
	}
	vehicle := model.Vehicle(row)
	return &vehicle, nil
}

func (r *VehicleRepository) ListByCustomer(ctx context.Context, shopID, customerID uuid.UUID) ([]model.Vehicle, error) {
	var rows []vehicleRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, shop_id, customer_id, brand, model, license_plate, vin, created_at
		FROM vehicles WHERE shop_id = ? AND customer_id = ? ORDER BY created_at DESC`, shopID, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select vehicles")
	}
	vehicles := make([]model.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, model.Vehicle(row))
	}
	return vehicles, nil
}
