package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceCreated struct {
	InvoiceID  uuid.UUID
	ShopID     uuid.UUID
	CustomerID uuid.UUID
}

func (e InvoiceCreated) Type() string { return "InvoiceCreated" }

type LineItemAdded struct {
	InvoiceID   uuid.UUID
	ItemID      uuid.UUID
	GrossAmount decimal.Decimal
}

func (e LineItemAdded) Type() string { return "LineItemAdded" }

type InvoiceFinalized struct {
	InvoiceID     uuid.UUID
	ShopID        uuid.UUID
	InvoiceNumber string
}

func (e InvoiceFinalized) Type() string { return "InvoiceFinalized" }

type CustomerCreated struct {
	CustomerID uuid.UUID
	ShopID     uuid.UUID
}

func (e CustomerCreated) Type() string { return "CustomerCreated" }

type VehicleAdded struct {
	VehicleID  uuid.UUID
	CustomerID uuid.UUID
}

func (e VehicleAdded) Type() string { return "VehicleAdded" }

type StaffCreated struct {
	ShopID uuid.UUID
	UserID uuid.UUID
	Email  string
}

func (e StaffCreated) Type() string { return "StaffCreated" }

type StaffDisabled struct {
	ShopID    uuid.UUID
	ProfileID uuid.UUID
}

func (e StaffDisabled) Type() string { return "StaffDisabled" }

type ShopSettingsUpdated struct {
	ShopID uuid.UUID
}

func (e ShopSettingsUpdated) Type() string { return "ShopSettingsUpdated" }

type ShopRegistered struct {
	ShopID      uuid.UUID
	OwnerUserID uuid.UUID
}

func (e ShopRegistered) Type() string { return "ShopRegistered" }
