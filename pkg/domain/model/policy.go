package model

import "github.com/google/uuid"

type Action int

const (
	ViewRecords Action = iota
	CreateInvoice
	AddLineItem
	ManageCustomers
	FinalizeInvoice
	ManageStaff
	EditShopSettings
)

func (a Action) String() string {
	switch a {
	case ViewRecords:
		return "view records"
	case CreateInvoice:
		return "create invoice"
	case AddLineItem:
		return "add line item"
	case ManageCustomers:
		return "manage customers"
	case FinalizeInvoice:
		return "finalize invoice"
	case ManageStaff:
		return "manage staff"
	case EditShopSettings:
		return "edit shop settings"
	}
	return "unknown action"
}

func (a Action) Mutating() bool { return a != ViewRecords }

var ownerOnly = map[Action]bool{
	FinalizeInvoice:  true,
	ManageStaff:      true,
	EditShopSettings: true,
}

// Authorize is the single place role and shop rules are decided.
// shopID is the shop owning the record the action touches.
func Authorize(profile *Profile, action Action, shopID uuid.UUID) error {
	if profile == nil {
		return &AuthorizationError{Action: action, Reason: "no profile"}
	}
	if profile.ShopID != shopID {
		return &AuthorizationError{Action: action, Reason: "record belongs to another shop"}
	}
	if action.Mutating() && !profile.Active {
		return &AuthorizationError{Action: action, Reason: "profile is inactive"}
	}

	switch profile.Role {
	case RoleOwner:
		return nil
	case RoleStaff:
		if ownerOnly[action] {
			return &AuthorizationError{Action: action, Reason: "requires owner role"}
		}
		return nil
	}
	return &AuthorizationError{Action: action, Reason: "unknown role " + string(profile.Role)}
}

// AuthorizeSession applies Authorize to the session's own shop.
func AuthorizeSession(session Session, action Action) error {
	if session.Profile == nil {
		return &AuthorizationError{Action: action, Reason: "no profile"}
	}
	return Authorize(session.Profile, action, session.Profile.ShopID)
}
