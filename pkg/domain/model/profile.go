package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

type Profile struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ShopID    uuid.UUID
	Role      Role
	FullName  string
	Email     string
	Active    bool
	CreatedAt time.Time
}

// Session is the explicit request context every service operation receives.
type Session struct {
	UserID      uuid.UUID
	AccessToken string
	Profile     *Profile
}

type ProfileRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, profile *Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Find(ctx context.Context, shopID, id uuid.UUID) (*Profile, error)
	ListByShop(ctx context.Context, shopID uuid.UUID) ([]Profile, error)
	SetActive(ctx context.Context, shopID, id uuid.UUID, active bool) error
}

type AuthUser struct {
	ID    uuid.UUID
	Email string
}

type AuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         AuthUser
}

// IdentityProvider is the hosted authentication service.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthToken, error)
	GetUser(ctx context.Context, accessToken string) (*AuthUser, error)
	SignOut(ctx context.Context, accessToken string) error
}

type NewStaffMember struct {
	Email    string
	FullName string
}

// StaffProvisioner creates the auth user of a new staff member and returns its id.
type StaffProvisioner interface {
	CreateStaffUser(ctx context.Context, member NewStaffMember, accessToken string) (uuid.UUID, error)
}

type SessionEventKind string

const (
	SignedIn  SessionEventKind = "signed_in"
	SignedOut SessionEventKind = "signed_out"
)

type SessionEvent struct {
	Kind   SessionEventKind
	UserID uuid.UUID
	At     time.Time
}
