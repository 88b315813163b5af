package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoshop/pkg/domain/model"
)

type CustomerInput struct {
	Name  string
	City  string
	Phone string
	Email string
}

type VehicleInput struct {
	Brand        string
	Model        string
	LicensePlate string
	VIN          string
}

type CustomerService interface {
	ListCustomers(ctx context.Context, session model.Session) ([]model.Customer, error)
	CreateCustomer(ctx context.Context, session model.Session, input CustomerInput) (*model.Customer, error)
	ListVehicles(ctx context.Context, session model.Session, customerID uuid.UUID) ([]model.Vehicle, error)
	AddVehicle(ctx context.Context, session model.Session, customerID uuid.UUID, input VehicleInput) (*model.Vehicle, error)
}

func NewCustomerService(customers model.CustomerRepository, vehicles model.VehicleRepository, dispatcher EventDispatcher) CustomerService {
	return &customerService{customers: customers, vehicles: vehicles, dispatcher: dispatcher}
}

type customerService struct {
	customers  model.CustomerRepository
	vehicles   model.VehicleRepository
	dispatcher EventDispatcher
}

func (s *customerService) ListCustomers(ctx context.Context, session model.Session) ([]model.Customer, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	customers, err := s.customers.ListByShop(ctx, session.Profile.ShopID)
	if err != nil {
		return nil, backendError("list customers", err)
	}
	return customers, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, session model.Session, input CustomerInput) (*model.Customer, error) {
	if err := model.AuthorizeSession(session, model.ManageCustomers); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	customerID, err := s.customers.NextID()
	if err != nil {
		return nil, err
	}
	customer := &model.Customer{
		ID:        customerID,
		ShopID:    session.Profile.ShopID,
		Name:      name,
		City:      strings.TrimSpace(input.City),
		Phone:     strings.TrimSpace(input.Phone),
		Email:     strings.TrimSpace(input.Email),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, backendError("create customer", err)
	}

	_ = s.dispatcher.Dispatch(model.CustomerCreated{CustomerID: customerID, ShopID: customer.ShopID})
	return customer, nil
}

func (s *customerService) ListVehicles(ctx context.Context, session model.Session, customerID uuid.UUID) ([]model.Vehicle, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	if _, err := s.customers.Find(ctx, session.Profile.ShopID, customerID); err != nil {
		return nil, backendError("find customer", err)
	}
	vehicles, err := s.vehicles.ListByCustomer(ctx, session.Profile.ShopID, customerID)
	if err != nil {
		return nil, backendError("list vehicles", err)
	}
	return vehicles, nil
}

func (s *customerService) AddVehicle(ctx context.Context, session model.Session, customerID uuid.UUID, input VehicleInput) (*model.Vehicle, error) {
	if err := model.AuthorizeSession(session, model.ManageCustomers); err != nil {
		return nil, err
	}
	plate := strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	if plate == "" {
		return nil, &model.ValidationError{Field: "license_plate", Reason: "customer and license plate are required"}
	}
	if _, err := s.customers.Find(ctx, session.Profile.ShopID, customerID); err != nil {
		return nil, backendError("find customer", err)
	}

	vehicleID, err := s.vehicles.NextID()
	if err != nil {
		return nil, err
	}
	vehicle := &model.Vehicle{
		ID:           vehicleID,
		ShopID:       session.Profile.ShopID,
		CustomerID:   customerID,
		Brand:        strings.TrimSpace(input.Brand),
		Model:        strings.TrimSpace(input.Model),
		LicensePlate: plate,
		VIN:          strings.ToUpper(strings.TrimSpace(input.VIN)),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, backendError("add vehicle", err)
	}

	_ = s.dispatcher.Dispatch(model.VehicleAdded{VehicleID: vehicleID, CustomerID: customerID})
	return vehicle, nil
}
