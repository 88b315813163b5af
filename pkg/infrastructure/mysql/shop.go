package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"autoshop/pkg/domain/model"
)

type shopRow struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	Address    string    `db:"address"`
	City       string    `db:"city"`
	PostalCode string    `db:"postal_code"`
	VATID      string    `db:"vat_id"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	BankName   string    `db:"bank_name"`
	IBAN       string    `db:"iban"`
	BIC        string    `db:"bic"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type ShopRepository struct {
	db *sqlx.DB
}

func NewShopRepository(db *sqlx.DB) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO shops (id, name, address, city, postal_code, vat_id, email, phone, bank_name, iban, bic, updated_at)
		VALUES (:id, :name, :address, :city, :postal_code, :vat_id, :email, :phone, :bank_name, :iban, :bic, :updated_at)`,
		shopRow(*shop),
	)
	return errors.Wrap(err, "failed to insert shop")
}

func (r *ShopRepository) Find(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var row shopRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, address, city, postal_code, vat_id, email, phone, bank_name, iban, bic, updated_at
		FROM shops WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrShopNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select shop")
	}
	shop := model.Shop(row)
	return &shop, nil
}

func (r *ShopRepository) Update(ctx context.Context, shop *model.Shop) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE shops SET
			name = :name, address = :address, city = :city, postal_code = :postal_code,
			vat_id = :vat_id, email = :email, phone = :phone, bank_name = :bank_name,
			iban = :iban, bic = :bic, updated_at = :updated_at
		WHERE id = :id`,
		shopRow(*shop),
	)
	if err != nil {
		return errors.Wrap(err, "failed to update shop")
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrShopNotFound
	}
	return nil
}

// DashboardReader answers the start screen counters straight from the invoices table.
type DashboardReader struct {
	db *sqlx.DB
}

func NewDashboardReader(db *sqlx.DB) *DashboardReader {
	return &DashboardReader{db: db}
}

func (r *DashboardReader) CountInvoicesOn(ctx context.Context, shopID uuid.UUID, day time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM invoices WHERE shop_id = ? AND invoice_date = ?`,
		shopID, day.Format(dateLayout))
	return count, errors.Wrap(err, "failed to count invoices of the day")
}

func (r *DashboardReader) CountInvoicesSince(ctx context.Context, shopID uuid.UUID, from time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM invoices
		WHERE shop_id = ? AND invoice_date >= ? AND status <> ?`,
		shopID, from.Format(dateLayout), string(model.Cancelled))
	return count, errors.Wrap(err, "failed to count invoices")
}

func (r *DashboardReader) RevenueSince(ctx context.Context, shopID uuid.UUID, from time.Time) (decimal.Decimal, error) {
	var revenue decimal.Decimal
	err := r.db.GetContext(ctx, &revenue, `
		SELECT COALESCE(SUM(total_gross), 0) FROM invoices
		WHERE shop_id = ? AND invoice_date >= ? AND status <> ?`,
		shopID, from.Format(dateLayout), string(model.Cancelled))
	return revenue, errors.Wrap(err, "failed to sum revenue")
}
