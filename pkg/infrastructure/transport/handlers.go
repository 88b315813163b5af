package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, &model.ValidationError{Field: "id", Reason: "not a valid id"}
	}
	return id, nil
}

// --- Auth ---

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.services.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"expires_at":    token.ExpiresAt,
		"user_id":       token.User.ID,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Auth.Logout(r.Context(), sessionFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, toProfileDTO(*session.Profile))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Dashboard.Stats(r.Context(), sessionFrom(r.Context()), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardDTO{
		InvoicesToday: stats.InvoicesToday,
		InvoicesMonth: stats.InvoicesMonth,
		RevenueMonth:  money(stats.RevenueMonth),
	})
}

// --- Customers and vehicles ---

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.services.Customers.ListCustomers(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]customerDTO, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		City  string `json:"city"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	customer, err := h.services.Customers.CreateCustomer(r.Context(), sessionFrom(r.Context()), service.CustomerInput{
		Name:  req.Name,
		City:  req.City,
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(*customer))
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	vehicles, err := h.services.Customers.ListVehicles(r.Context(), sessionFrom(r.Context()), customerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]vehicleDTO, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, toVehicleDTO(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addVehicle(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Brand        string `json:"brand"`
		Model        string `json:"model"`
		LicensePlate string `json:"license_plate"`
		VIN          string `json:"vin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vehicle, err := h.services.Customers.AddVehicle(r.Context(), sessionFrom(r.Context()), customerID, service.VehicleInput{
		Brand:        req.Brand,
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		VIN:          req.VIN,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toVehicleDTO(*vehicle))
}

// --- Invoices ---

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.services.Invoices.ListInvoices(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]invoiceDTO, 0, len(invoices))
	for _, i := range invoices {
		out = append(out, toInvoiceDTO(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID uuid.UUID  `json:"customer_id"`
		VehicleID  *uuid.UUID `json:"vehicle_id"`
		Notes      string     `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	invoice, err := h.services.Invoices.CreateDraftInvoice(r.Context(), sessionFrom(r.Context()), service.DraftInvoiceInput{
		CustomerID: req.CustomerID,
		VehicleID:  req.VehicleID,
		Notes:      req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(*invoice))
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.services.Invoices.GetInvoice(r.Context(), sessionFrom(r.Context()), invoiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceViewDTO(view))
}

func (h *Handler) addLineItem(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Description string          `json:"description"`
		Quantity    decimal.Decimal `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.services.Invoices.AddLineItem(r.Context(), sessionFrom(r.Context()), invoiceID, service.LineItemInput{
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceViewDTO(view))
}

func (h *Handler) finalizeInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	session := sessionFrom(r.Context())

	number, err := h.services.Invoices.FinalizeInvoice(r.Context(), session, invoiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.services.Invoices.GetInvoice(r.Context(), session, invoiceID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		InvoiceNumber string `json:"invoice_number"`
		invoiceViewDTO
	}{InvoiceNumber: number, invoiceViewDTO: toInvoiceViewDTO(view)})
}

// finalizeInvoiceFunction serves the finalize-invoice function contract:
// {invoice_id} in, {invoice_number} or {error} out.
func (h *Handler) finalizeInvoiceFunction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvoiceID uuid.UUID `json:"invoice_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.InvoiceID == uuid.Nil {
		writeError(w, r, &model.ValidationError{Field: "invoice_id", Reason: "invoice_id is required"})
		return
	}

	session := sessionFrom(r.Context())
	if err := model.AuthorizeSession(session, model.FinalizeInvoice); err != nil {
		writeError(w, r, err)
		return
	}

	number, err := h.services.Issuer.IssueInvoiceNumber(r.Context(), session.Profile.ShopID, req.InvoiceID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.WithFields(log.Fields{"invoice": req.InvoiceID, "number": number}).Info("invoice number issued")
	writeJSON(w, http.StatusOK, map[string]string{"invoice_number": number})
}

// --- Staff ---

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.services.Staff.ListStaff(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]profileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	userID, err := h.services.Staff.CreateStaff(r.Context(), sessionFrom(r.Context()), req.Email, req.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"user_id": userID})
}

func (h *Handler) disableStaff(w http.ResponseWriter, r *http.Request) {
	profileID, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.services.Staff.DisableStaff(r.Context(), sessionFrom(r.Context()), profileID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Shop ---

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.services.Shop.GetShop(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShopDTO(*shop))
}

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request) {
	var req shopDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	shop, err := h.services.Shop.UpdateShopSettings(r.Context(), sessionFrom(r.Context()), service.ShopSettings{
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		VATID:      req.VATID,
		Email:      req.Email,
		Phone:      req.Phone,
		BankName:   req.BankName,
		IBAN:       req.IBAN,
		BIC:        req.BIC,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShopDTO(*shop))
}
