package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoshop/pkg/domain/model"
	"autoshop/pkg/domain/service"
)

func setupStaffTest(t *testing.T) (service.StaffService, *mockProfileRepository, *mockProvisioner, *mockEventDispatcher) {
	profiles := newMockProfileRepository()
	provisioner := &mockProvisioner{}
	dispatcher := &mockEventDispatcher{}
	svc := service.NewStaffService(profiles, provisioner, dispatcher)
	return svc, profiles, provisioner, dispatcher
}

func TestCreateStaff(t *testing.T) {
	svc, profiles, provisioner, dispatcher := setupStaffTest(t)
	session := ownerSession(uuid.New())

	userID, err := svc.CreateStaff(context.Background(), session, " lena@werkstatt.de ", " Lena Koch ")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)
	require.Len(t, provisioner.members, 1)
	assert.Equal(t, model.NewStaffMember{Email: "lena@werkstatt.de", FullName: "Lena Koch"}, provisioner.members[0])

	profile, err := profiles.FindByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, profile.Role)
	assert.Equal(t, session.Profile.ShopID, profile.ShopID)
	assert.True(t, profile.Active)

	require.Len(t, dispatcher.events, 1)
	event, ok := dispatcher.events[0].(model.StaffCreated)
	require.True(t, ok)
	assert.Equal(t, userID, event.UserID)
}

func TestCreateStaff_OnlyOwner(t *testing.T) {
	svc, _, provisioner, _ := setupStaffTest(t)

	_, err := svc.CreateStaff(context.Background(), staffSession(uuid.New()), "lena@werkstatt.de", "Lena Koch")

	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Empty(t, provisioner.members)
}

func TestCreateStaff_InvalidEmail(t *testing.T) {
	svc, _, provisioner, _ := setupStaffTest(t)

	for _, email := range []string{"", "   ", "lena.werkstatt.de"} {
		_, err := svc.CreateStaff(context.Background(), ownerSession(uuid.New()), email, "Lena")
		assert.ErrorIs(t, err, model.ErrValidation, email)
	}
	assert.Empty(t, provisioner.members)
}

func TestCreateStaff_ProvisionerMessageIsVerbatim(t *testing.T) {
	svc, _, provisioner, dispatcher := setupStaffTest(t)
	provisioner.err = errors.New("A user with this email address has already been registered")

	_, err := svc.CreateStaff(context.Background(), ownerSession(uuid.New()), "lena@werkstatt.de", "Lena")

	assert.ErrorIs(t, err, model.ErrCollaborator)
	assert.Equal(t, "A user with this email address has already been registered", err.Error())
	assert.Empty(t, dispatcher.events)
}

func TestDisableStaff(t *testing.T) {
	svc, profiles, _, dispatcher := setupStaffTest(t)
	session := ownerSession(uuid.New())
	member := model.Profile{ID: uuid.New(), ShopID: session.Profile.ShopID, Role: model.RoleStaff, Active: true}
	profiles.add(member)

	err := svc.DisableStaff(context.Background(), session, member.ID)

	require.NoError(t, err)
	assert.False(t, profiles.profiles[member.ID].Active)
	require.Len(t, dispatcher.events, 1)

	dispatcher.Reset()
	require.NoError(t, svc.DisableStaff(context.Background(), session, member.ID))
	assert.Empty(t, dispatcher.events, "disabling twice is a no-op")
}

func TestDisableStaff_Rules(t *testing.T) {
	svc, profiles, _, _ := setupStaffTest(t)
	session := ownerSession(uuid.New())
	profiles.add(*session.Profile)
	otherOwner := model.Profile{ID: uuid.New(), ShopID: session.Profile.ShopID, Role: model.RoleOwner, Active: true}
	profiles.add(otherOwner)
	foreign := model.Profile{ID: uuid.New(), ShopID: uuid.New(), Role: model.RoleStaff, Active: true}
	profiles.add(foreign)

	assert.ErrorIs(t, svc.DisableStaff(context.Background(), session, session.Profile.ID), service.ErrCannotDisableSelf)
	assert.ErrorIs(t, svc.DisableStaff(context.Background(), session, otherOwner.ID), service.ErrOnlyStaffCanBeDisabled)
	assert.ErrorIs(t, svc.DisableStaff(context.Background(), session, foreign.ID), model.ErrProfileNotFound)
	assert.True(t, profiles.profiles[foreign.ID].Active)

	member := model.Profile{ID: uuid.New(), ShopID: session.Profile.ShopID, Role: model.RoleStaff, Active: true}
	profiles.add(member)
	assert.ErrorIs(t, svc.DisableStaff(context.Background(), staffSession(session.Profile.ShopID), member.ID), model.ErrUnauthorized)
}

func TestListStaff(t *testing.T) {
	svc, profiles, _, _ := setupStaffTest(t)
	session := ownerSession(uuid.New())
	profiles.add(*session.Profile)
	profiles.add(model.Profile{ID: uuid.New(), ShopID: session.Profile.ShopID, Role: model.RoleStaff, Active: true})
	profiles.add(model.Profile{ID: uuid.New(), ShopID: uuid.New(), Role: model.RoleStaff, Active: true})

	list, err := svc.ListStaff(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListStaff(context.Background(), staffSession(session.Profile.ShopID))
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}
