package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type profileDTO struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	ShopID   uuid.UUID `json:"shop_id"`
	Role     string    `json:"role"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Active   bool      `json:"active"`
}

func toProfileDTO(p model.Profile) profileDTO {
	return profileDTO{
		ID:       p.ID,
		UserID:   p.UserID,
		ShopID:   p.ShopID,
		Role:     string(p.Role),
		FullName: p.FullName,
		Email:    p.Email,
		Active:   p.Active,
	}
}

type customerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toCustomerDTO(c model.Customer) customerDTO {
	return customerDTO{ID: c.ID, Name: c.Name, City: c.City, Phone: c.Phone, Email: c.Email, CreatedAt: c.CreatedAt}
}

type vehicleDTO struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   uuid.UUID `json:"customer_id"`
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	LicensePlate string    `json:"license_plate"`
	VIN          string    `json:"vin"`
}

func toVehicleDTO(v model.Vehicle) vehicleDTO {
	return vehicleDTO{
		ID:           v.ID,
		CustomerID:   v.CustomerID,
		Brand:        v.Brand,
		Model:        v.Model,
		LicensePlate: v.LicensePlate,
		VIN:          v.VIN,
	}
}

type invoiceDTO struct {
	ID            uuid.UUID  `json:"id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	VehicleID     *uuid.UUID `json:"vehicle_id"`
	InvoiceNumber *string    `json:"invoice_number"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
	TotalNet      string     `json:"total_net"`
	TotalVAT      string     `json:"total_vat"`
	TotalGross    string     `json:"total_gross"`
	InvoiceDate   string     `json:"invoice_date"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toInvoiceDTO(i model.Invoice) invoiceDTO {
	return invoiceDTO{
		ID:            i.ID,
		CustomerID:    i.CustomerID,
		VehicleID:     i.VehicleID,
		InvoiceNumber: i.InvoiceNumber,
		Status:        string(i.Status),
		Notes:         i.Notes,
		TotalNet:      money(i.TotalNet),
		TotalVAT:      money(i.TotalVAT),
		TotalGross:    money(i.TotalGross),
		InvoiceDate:   i.InvoiceDate.Format("2006-01-02"),
		CreatedAt:     i.CreatedAt,
	}
}

type lineItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    string    `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	VATRate     string    `json:"vat_rate"`
	NetAmount   string    `json:"net_amount"`
	VATAmount   string    `json:"vat_amount"`
	GrossAmount string    `json:"gross_amount"`
}

type invoiceViewDTO struct {
	Invoice invoiceDTO    `json:"invoice"`
	Items   []lineItemDTO `json:"items"`
}

func toInvoiceViewDTO(v *service.InvoiceView) invoiceViewDTO {
	items := make([]lineItemDTO, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, lineItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   item.UnitPrice.String(),
			VATRate:     item.VATRate.String(),
			NetAmount:   money(item.NetAmount),
			VATAmount:   money(item.VATAmount),
			GrossAmount: money(item.GrossAmount),
		})
	}
	return invoiceViewDTO{Invoice: toInvoiceDTO(v.Invoice), Items: items}
}

type shopDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	VATID      string    `json:"vat_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	BankName   string    `json:"bank_name"`
	IBAN       string    `json:"iban"`
	BIC        string    `json:"bic"`
}

func toShopDTO(s model.Shop) shopDTO {
	return shopDTO{
		ID:         s.ID,
		Name:       s.Name,
		Address:    s.Address,
		City:       s.City,
		PostalCode: s.PostalCode,
		VATID:      s.VATID,
		Email:      s.Email,
		Phone:      s.Phone,
		BankName:   s.BankName,
		IBAN:       s.IBAN,
		BIC:        s.BIC,
	}
}

type dashboardDTO struct {
	InvoicesToday int    `json:"invoices_today"`
	InvoicesMonth int    `json:"invoices_month"`
	RevenueMonth  string `json:"revenue_month"`
}
