package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"autoshop/pkg/domain/model"
)

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}

type DraftInvoiceInput struct {
	CustomerID uuid.UUID
	VehicleID  *uuid.UUID
	Notes      string
}

type LineItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// InvoiceView is always loaded fresh: invoice row and full item list.
type InvoiceView struct {
	Invoice model.Invoice
	Items   []model.LineItem
}

type InvoiceService interface {
	ListInvoices(ctx context.Context, session model.Session) ([]model.Invoice, error)
	CreateDraftInvoice(ctx context.Context, session model.Session, input DraftInvoiceInput) (*model.Invoice, error)
	GetInvoice(ctx context.Context, session model.Session, invoiceID uuid.UUID) (*InvoiceView, error)
	AddLineItem(ctx context.Context, session model.Session, invoiceID uuid.UUID, input LineItemInput) (*InvoiceView, error)
	FinalizeInvoice(ctx context.Context, session model.Session, invoiceID uuid.UUID) (string, error)
}

func NewInvoiceService(
	invoices model.InvoiceRepository,
	customers model.CustomerRepository,
	vehicles model.VehicleRepository,
	recalculator model.TotalsRecalculator,
	finalizer model.InvoiceFinalizer,
	dispatcher EventDispatcher,
) InvoiceService {
	return &invoiceService{
		invoices:     invoices,
		customers:    customers,
		vehicles:     vehicles,
		recalculator: recalculator,
		finalizer:    finalizer,
		dispatcher:   dispatcher,
	}
}

type invoiceService struct {
	invoices     model.InvoiceRepository
	customers    model.CustomerRepository
	vehicles     model.VehicleRepository
	recalculator model.TotalsRecalculator
	finalizer    model.InvoiceFinalizer
	dispatcher   EventDispatcher
}

func (s *invoiceService) ListInvoices(ctx context.Context, session model.Session) ([]model.Invoice, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	invoices, err := s.invoices.ListByShop(ctx, session.Profile.ShopID)
	if err != nil {
		return nil, backendError("list invoices", err)
	}
	return invoices, nil
}

func (s *invoiceService) CreateDraftInvoice(ctx context.Context, session model.Session, input DraftInvoiceInput) (*model.Invoice, error) {
	if err := model.AuthorizeSession(session, model.CreateInvoice); err != nil {
		return nil, err
	}
	if input.CustomerID == uuid.Nil {
		return nil, &model.ValidationError{Field: "customer_id", Reason: "please select a customer"}
	}
	shopID := session.Profile.ShopID

	if _, err := s.customers.Find(ctx, shopID, input.CustomerID); err != nil {
		return nil, backendError("find customer", err)
	}
	if input.VehicleID != nil {
		vehicle, err := s.vehicles.Find(ctx, shopID, *input.VehicleID)
		if err != nil {
			return nil, backendError("find vehicle", err)
		}
		if vehicle.CustomerID != input.CustomerID {
			return nil, &model.ValidationError{Field: "vehicle_id", Reason: "vehicle does not belong to the customer"}
		}
	}

	invoiceID, err := s.invoices.NextID()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	invoice := &model.Invoice{
		ID:          invoiceID,
		ShopID:      shopID,
		CustomerID:  input.CustomerID,
		VehicleID:   input.VehicleID,
		Status:      model.Draft,
		Notes:       strings.TrimSpace(input.Notes),
		TotalNet:    decimal.Zero,
		TotalVAT:    decimal.Zero,
		TotalGross:  decimal.Zero,
		InvoiceDate: now.Truncate(24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, backendError("create invoice", err)
	}

	_ = s.dispatcher.Dispatch(model.InvoiceCreated{InvoiceID: invoiceID, ShopID: shopID, CustomerID: input.CustomerID})
	return invoice, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, session model.Session, invoiceID uuid.UUID) (*InvoiceView, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	return s.loadView(ctx, session.Profile.ShopID, invoiceID)
}

// AddLineItem persists one item and then asks the store to recompute the invoice totals.
// Totals are never summed here: concurrent inserts by other staff would be lost.
func (s *invoiceService) AddLineItem(ctx context.Context, session model.Session, invoiceID uuid.UUID, input LineItemInput) (*InvoiceView, error) {
	if err := model.AuthorizeSession(session, model.AddLineItem); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, &model.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	amounts, err := model.ComputeLineAmounts(input.Quantity, input.UnitPrice, model.DefaultVATRate)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoices.Find(ctx, session.Profile.ShopID, invoiceID)
	if err != nil {
		return nil, backendError("find invoice", err)
	}
	if !invoice.Status.Editable() {
		return nil, model.ErrInvoiceNotEditable
	}

	itemID, err := s.invoices.NextID()
	if err != nil {
		return nil, err
	}
	item := &model.LineItem{
		ID:          itemID,
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		VATRate:     model.DefaultVATRate,
		NetAmount:   amounts.Net,
		VATAmount:   amounts.VAT,
		GrossAmount: amounts.Gross,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.invoices.AddItem(ctx, item); err != nil {
		return nil, backendError("add line item", err)
	}

	_ = s.dispatcher.Dispatch(model.LineItemAdded{InvoiceID: invoiceID, ItemID: itemID, GrossAmount: amounts.Gross})

	if err := s.recalculator.RecalculateTotals(ctx, invoiceID); err != nil {
		return nil, &model.CollaboratorError{
			Op:      "recalculate totals",
			Message: err.Error(),
			Stale:   true,
			Err:     err,
		}
	}

	return s.loadView(ctx, session.Profile.ShopID, invoiceID)
}

func (s *invoiceService) FinalizeInvoice(ctx context.Context, session model.Session, invoiceID uuid.UUID) (string, error) {
	if err := model.AuthorizeSession(session, model.FinalizeInvoice); err != nil {
		return "", err
	}

	invoice, err := s.invoices.Find(ctx, session.Profile.ShopID, invoiceID)
	if err != nil {
		return "", backendError("find invoice", err)
	}
	if invoice.Status == model.Final {
		return "", model.ErrInvoiceAlreadyFinalized
	}
	if _, err := invoice.Status.TransitionTo(model.Final); err != nil {
		return "", err
	}

	number, err := s.finalizer.FinalizeInvoice(ctx, invoiceID, session.AccessToken)
	if err != nil {
		return "", model.NewCollaboratorError("finalize invoice", err)
	}

	_ = s.dispatcher.Dispatch(model.InvoiceFinalized{InvoiceID: invoiceID, ShopID: invoice.ShopID, InvoiceNumber: number})
	return number, nil
}

func (s *invoiceService) loadView(ctx context.Context, shopID, invoiceID uuid.UUID) (*InvoiceView, error) {
	invoice, err := s.invoices.Find(ctx, shopID, invoiceID)
	if err != nil {
		return nil, backendError("find invoice", err)
	}
	items, err := s.invoices.ListItems(ctx, invoiceID)
	if err != nil {
		return nil, backendError("list line items", err)
	}
	return &InvoiceView{Invoice: *invoice, Items: items}, nil
}

var domainErrors = []error{
	model.ErrValidation,
	model.ErrInvalidState,
	model.ErrUnauthorized,
	model.ErrCollaborator,
	model.ErrUnauthenticated,
	model.ErrInvoiceNotFound,
	model.ErrCustomerNotFound,
	model.ErrVehicleNotFound,
	model.ErrProfileNotFound,
	model.ErrShopNotFound,
}

// backendError passes domain errors through and turns anything else coming out of a
// store or remote call into a CollaboratorError.
func backendError(op string, err error) error {
	for _, known := range domainErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return model.NewCollaboratorError(op, err)
}
