package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoshop/pkg/domain/model"
)

type ShopSettings struct {
	Name       string
	Address    string
	City       string
	PostalCode string
	VATID      string
	Email      string
	Phone      string
	BankName   string
	IBAN       string
	BIC        string
}

type ShopOwner struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

type ShopService interface {
	// RegisterShop is the operator bootstrap: a new shop together with its owner profile.
	RegisterShop(ctx context.Context, settings ShopSettings, owner ShopOwner) (*model.Shop, *model.Profile, error)
	GetShop(ctx context.Context, session model.Session) (*model.Shop, error)
	UpdateShopSettings(ctx context.Context, session model.Session, settings ShopSettings) (*model.Shop, error)
}

func NewShopService(shops model.ShopRepository, profiles model.ProfileRepository, dispatcher EventDispatcher) ShopService {
	return &shopService{shops: shops, profiles: profiles, dispatcher: dispatcher}
}

type shopService struct {
	shops      model.ShopRepository
	profiles   model.ProfileRepository
	dispatcher EventDispatcher
}

func (s *shopService) RegisterShop(ctx context.Context, settings ShopSettings, owner ShopOwner) (*model.Shop, *model.Profile, error) {
	if strings.TrimSpace(settings.Name) == "" {
		return nil, nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if owner.UserID == uuid.Nil {
		return nil, nil, &model.ValidationError{Field: "owner_user_id", Reason: "must be set"}
	}
	if _, err := s.profiles.FindByUserID(ctx, owner.UserID); err == nil {
		return nil, nil, &model.InvalidStateError{Reason: "user already has a profile"}
	}

	shopID, err := uuid.NewRandom()
	if err != nil {
		return nil, nil, err
	}
	shop := &model.Shop{ID: shopID}
	applySettings(shop, settings)
	if err := s.shops.Create(ctx, shop); err != nil {
		return nil, nil, backendError("create shop", err)
	}

	profileID, err := s.profiles.NextID()
	if err != nil {
		return nil, nil, err
	}
	profile := &model.Profile{
		ID:        profileID,
		UserID:    owner.UserID,
		ShopID:    shopID,
		Role:      model.RoleOwner,
		FullName:  strings.TrimSpace(owner.FullName),
		Email:     strings.TrimSpace(owner.Email),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, nil, backendError("create owner profile", err)
	}

	_ = s.dispatcher.Dispatch(model.ShopRegistered{ShopID: shopID, OwnerUserID: owner.UserID})
	return shop, profile, nil
}

func (s *shopService) GetShop(ctx context.Context, session model.Session) (*model.Shop, error) {
	if err := model.AuthorizeSession(session, model.ViewRecords); err != nil {
		return nil, err
	}
	shop, err := s.shops.Find(ctx, session.Profile.ShopID)
	if err != nil {
		return nil, backendError("find shop", err)
	}
	return shop, nil
}

func (s *shopService) UpdateShopSettings(ctx context.Context, session model.Session, settings ShopSettings) (*model.Shop, error) {
	if err := model.AuthorizeSession(session, model.EditShopSettings); err != nil {
		return nil, err
	}
	if strings.TrimSpace(settings.Name) == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	shop, err := s.shops.Find(ctx, session.Profile.ShopID)
	if err != nil {
		return nil, backendError("find shop", err)
	}

	applySettings(shop, settings)

	if err := s.shops.Update(ctx, shop); err != nil {
		return nil, backendError("update shop", err)
	}

	_ = s.dispatcher.Dispatch(model.ShopSettingsUpdated{ShopID: shop.ID})
	return shop, nil
}

func applySettings(shop *model.Shop, settings ShopSettings) {
	shop.Name = strings.TrimSpace(settings.Name)
	shop.Address = settings.Address
	shop.City = settings.City
	shop.PostalCode = settings.PostalCode
	shop.VATID = settings.VATID
	shop.Email = settings.Email
	shop.Phone = settings.Phone
	shop.BankName = settings.BankName
	shop.IBAN = strings.ToUpper(strings.ReplaceAll(settings.IBAN, " ", ""))
	shop.BIC = strings.ToUpper(strings.TrimSpace(settings.BIC))
	shop.UpdatedAt = time.Now().UTC()
}
