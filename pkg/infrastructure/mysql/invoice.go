package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"autoshop/pkg/domain/model"
)

const invoiceColumns = `id, shop_id, customer_id, vehicle_id, invoice_number, status, notes,
	total_net, total_vat, total_gross, invoice_date, created_at, updated_at`

const itemColumns = `id, invoice_id, description, quantity, unit_price, vat_rate,
	net_amount, vat_amount, gross_amount, created_at`

type invoiceRow struct {
	ID            uuid.UUID       `db:"id"`
	ShopID        uuid.UUID       `db:"shop_id"`
	CustomerID    uuid.UUID       `db:"customer_id"`
	VehicleID     uuid.NullUUID   `db:"vehicle_id"`
	InvoiceNumber sql.NullString  `db:"invoice_number"`
	Status        string          `db:"status"`
	Notes         string          `db:"notes"`
	TotalNet      decimal.Decimal `db:"total_net"`
	TotalVAT      decimal.Decimal `db:"total_vat"`
	TotalGross    decimal.Decimal `db:"total_gross"`
	InvoiceDate   time.Time       `db:"invoice_date"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r invoiceRow) toModel() model.Invoice {
	invoice := model.Invoice{
		ID:          r.ID,
		ShopID:      r.ShopID,
		CustomerID:  r.CustomerID,
		Status:      model.InvoiceStatus(r.Status),
		Notes:       r.Notes,
		TotalNet:    r.TotalNet,
		TotalVAT:    r.TotalVAT,
		TotalGross:  r.TotalGross,
		InvoiceDate: r.InvoiceDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.VehicleID.Valid {
		vehicleID := r.VehicleID.UUID
		invoice.VehicleID = &vehicleID
	}
	if r.InvoiceNumber.Valid {
		number := r.InvoiceNumber.String
		invoice.InvoiceNumber = &number
	}
	return invoice
}

type itemRow struct {
	ID          uuid.UUID       `db:"id"`
	InvoiceID   uuid.UUID       `db:"invoice_id"`
	Description string          `db:"description"`
	Quantity    decimal.Decimal `db:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price"`
	VATRate     decimal.Decimal `db:"vat_rate"`
	NetAmount   decimal.Decimal `db:"net_amount"`
	VATAmount   decimal.Decimal `db:"vat_amount"`
	GrossAmount decimal.Decimal `db:"gross_amount"`
	CreatedAt   time.Time       `db:"created_at"`
}

func (r itemRow) toModel() model.LineItem {
	return model.LineItem(r)
}

// InvoiceRepository stores invoices and their items and owns the two writes that must
// be consistent under concurrency: the totals recalculation and finalization.
type InvoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	var vehicleID uuid.NullUUID
	if invoice.VehicleID != nil {
		vehicleID = uuid.NullUUID{UUID: *invoice.VehicleID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.ShopID, invoice.CustomerID, vehicleID, string(invoice.Status), invoice.Notes,
		invoice.TotalNet, invoice.TotalVAT, invoice.TotalGross,
		invoice.InvoiceDate.Format(dateLayout), invoice.CreatedAt, invoice.UpdatedAt,
	)
	return errors.Wrap(err, "failed to insert invoice")
}

func (r *InvoiceRepository) Find(ctx context.Context, shopID, id uuid.UUID) (*model.Invoice, error) {
	var row invoiceRow
	err := r.db.GetContext(ctx, &row, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ? AND shop_id = ?`, id, shopID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to select invoice")
	}
	invoice := row.toModel()
	return &invoice, nil
}

func (r *InvoiceRepository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]model.Invoice, error) {
	var rows []invoiceRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+invoiceColumns+` FROM invoices WHERE shop_id = ? ORDER BY created_at DESC`, shopID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select invoices")
	}
	invoices := make([]model.Invoice, 0, len(rows))
	for _, row := range rows {
		invoices = append(invoices, row.toModel())
	}
	return invoices, nil
}

// AddItem inserts through a SELECT on the draft invoice row, so an item can never land
// on an invoice that was finalized in the meantime.
func (r *InvoiceRepository) AddItem(ctx context.Context, item *model.LineItem) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO invoice_items (`+itemColumns+`)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		FROM invoices WHERE id = ? AND status = ?`,
		item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.VATRate,
		item.NetAmount, item.VATAmount, item.GrossAmount, item.CreatedAt,
		item.InvoiceID, string(model.Draft),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert invoice item")
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var status string
	err = r.db.GetContext(ctx, &status, `SELECT status FROM invoices WHERE id = ?`, item.InvoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrInvoiceNotFound
	}
	if err != nil {
		return errors.Wrap(err, "failed to select invoice status")
	}
	return model.ErrInvoiceNotEditable
}

func (r *InvoiceRepository) ListItems(ctx context.Context, invoiceID uuid.UUID) ([]model.LineItem, error) {
	var rows []itemRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+itemColumns+` FROM invoice_items WHERE invoice_id = ? ORDER BY created_at, id`, invoiceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select invoice items")
	}
	items := make([]model.LineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// RecalculateTotals rewrites the three totals from the full item set while holding the
// invoice row lock. Running it twice gives the same result.
func (r *InvoiceRepository) RecalculateTotals(ctx context.Context, invoiceID uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id uuid.UUID
		err := tx.GetContext(ctx, &id, `SELECT id FROM invoices WHERE id = ? FOR UPDATE`, invoiceID)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrInvoiceNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to lock invoice")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE invoices SET
				total_net = (SELECT COALESCE(SUM(net_amount), 0) FROM invoice_items WHERE invoice_id = ?),
				total_vat = (SELECT COALESCE(SUM(vat_amount), 0) FROM invoice_items WHERE invoice_id = ?),
				total_gross = (SELECT COALESCE(SUM(net_amount + vat_amount), 0) FROM invoice_items WHERE invoice_id = ?),
				updated_at = ?
			WHERE id = ?`,
			invoiceID, invoiceID, invoiceID, time.Now().UTC(), invoiceID,
		)
		return errors.Wrap(err, "failed to update invoice totals")
	})
}

// IssueInvoiceNumber finalizes a draft and draws the next number of the shop's yearly
// sequence in the same transaction. A rolled back finalization consumes no number.
func (r *InvoiceRepository) IssueInvoiceNumber(ctx context.Context, shopID, invoiceID uuid.UUID, issuedAt time.Time) (string, error) {
	var number string
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		err := tx.GetContext(ctx, &status, `SELECT status FROM invoices WHERE id = ? AND shop_id = ? FOR UPDATE`, invoiceID, shopID)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrInvoiceNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to lock invoice")
		}
		current := model.InvoiceStatus(status)
		if current == model.Final {
			return model.ErrInvoiceAlreadyFinalized
		}
		if _, err := current.TransitionTo(model.Final); err != nil {
			return err
		}

		var items int
		if err := tx.GetContext(ctx, &items, `SELECT COUNT(*) FROM invoice_items WHERE invoice_id = ?`, invoiceID); err != nil {
			return errors.Wrap(err, "failed to count invoice items")
		}
		if items == 0 {
			return ErrEmptyInvoice
		}

		year := issuedAt.UTC().Year()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO invoice_sequences (shop_id, year, last_value) VALUES (?, ?, 1)
			ON DUPLICATE KEY UPDATE last_value = last_value + 1`,
			shopID, year,
		)
		if err != nil {
			return errors.Wrap(err, "failed to advance invoice sequence")
		}
		var seq int
		err = tx.GetContext(ctx, &seq, `SELECT last_value FROM invoice_sequences WHERE shop_id = ? AND year = ?`, shopID, year)
		if err != nil {
			return errors.Wrap(err, "failed to read invoice sequence")
		}
		number = FormatInvoiceNumber(year, seq)

		result, err := tx.ExecContext(ctx, `
			UPDATE invoices SET status = ?, invoice_number = ?, updated_at = ?
			WHERE id = ? AND status = ?`,
			string(model.Final), number, issuedAt.UTC(), invoiceID, string(model.Draft),
		)
		if err != nil {
			return errors.Wrap(err, "failed to finalize invoice")
		}
		n, err := rowsAffected(result)
		if err != nil {
			return err
		}
		if n != 1 {
			return model.ErrInvoiceAlreadyFinalized
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// ErrEmptyInvoice rejects finalizing an invoice without line items.
var ErrEmptyInvoice = &model.InvalidStateError{Reason: "invoice has no line items"}

func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("INV-%d-%05d", year, seq)
}

const dateLayout = "2006-01-02"
