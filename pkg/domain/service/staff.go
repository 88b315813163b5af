package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoshop/pkg/domain/model"
)

var (
	ErrCannotDisableSelf      = &model.InvalidStateError{Reason: "you cannot disable your own profile"}
	ErrOnlyStaffCanBeDisabled = &model.InvalidStateError{Reason: "only staff profiles can be disabled"}
)

type StaffService interface {
	ListStaff(ctx context.Context, session model.Session) ([]model.Profile, error)
	CreateStaff(ctx context.Context, session model.Session, email, fullName string) (uuid.UUID, error)
	DisableStaff(ctx context.Context, session model.Session, profileID uuid.UUID) error
}

func NewStaffService(profiles model.ProfileRepository, provisioner model.StaffProvisioner, dispatcher EventDispatcher) StaffService {
	return &staffService{
		profiles:    profiles,
		provisioner: provisioner,
		dispatcher:  dispatcher,
	}
}

type staffService struct {
	profiles    model.ProfileRepository
	provisioner model.StaffProvisioner
	dispatcher  EventDispatcher
}

func (s *staffService) ListStaff(ctx context.Context, session model.Session) ([]model.Profile, error) {
	if err := model.AuthorizeSession(session, model.ManageStaff); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.ListByShop(ctx, session.Profile.ShopID)
	if err != nil {
		return nil, backendError("list staff", err)
	}
	return profiles, nil
}

func (s *staffService) CreateStaff(ctx context.Context, session model.Session, email, fullName string) (uuid.UUID, error) {
	if err := model.AuthorizeSession(session, model.ManageStaff); err != nil {
		return uuid.Nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return uuid.Nil, &model.ValidationError{Field: "email", Reason: "email is required"}
	}
	if !strings.Contains(email, "@") {
		return uuid.Nil, &model.ValidationError{Field: "email", Reason: "not an email address"}
	}

	fullName = strings.TrimSpace(fullName)
	userID, err := s.provisioner.CreateStaffUser(ctx, model.NewStaffMember{
		Email:    email,
		FullName: fullName,
	}, session.AccessToken)
	if err != nil {
		return uuid.Nil, model.NewCollaboratorError("create staff user", err)
	}

	profileID, err := s.profiles.NextID()
	if err != nil {
		return uuid.Nil, err
	}
	profile := &model.Profile{
		ID:        profileID,
		UserID:    userID,
		ShopID:    session.Profile.ShopID,
		Role:      model.RoleStaff,
		FullName:  fullName,
		Email:     email,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return uuid.Nil, backendError("create staff profile", err)
	}

	_ = s.dispatcher.Dispatch(model.StaffCreated{ShopID: session.Profile.ShopID, UserID: userID, Email: email})
	return userID, nil
}

func (s *staffService) DisableStaff(ctx context.Context, session model.Session, profileID uuid.UUID) error {
	if err := model.AuthorizeSession(session, model.ManageStaff); err != nil {
		return err
	}
	if profileID == session.Profile.ID {
		return ErrCannotDisableSelf
	}

	profile, err := s.profiles.Find(ctx, session.Profile.ShopID, profileID)
	if err != nil {
		return backendError("find profile", err)
	}
	if profile.Role != model.RoleStaff {
		return ErrOnlyStaffCanBeDisabled
	}
	if !profile.Active {
		return nil
	}

	if err := s.profiles.SetActive(ctx, session.Profile.ShopID, profileID, false); err != nil {
		return backendError("disable staff", err)
	}

	_ = s.dispatcher.Dispatch(model.StaffDisabled{ShopID: session.Profile.ShopID, ProfileID: profileID})
	return nil
}
