package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"autoshop/pkg/domain/model"
)

type SessionPublisher interface {
	Publish(event model.SessionEvent)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.AuthToken, error)
	Logout(ctx context.Context, session model.Session) error
	// ResolveSession turns a bearer token into the session passed to every other service.
	ResolveSession(ctx context.Context, accessToken string) (model.Session, error)
}

func NewAuthService(identity model.IdentityProvider, profiles model.ProfileRepository, publisher SessionPublisher) AuthService {
	return &authService{identity: identity, profiles: profiles, publisher: publisher}
}

type authService struct {
	identity  model.IdentityProvider
	profiles  model.ProfileRepository
	publisher SessionPublisher
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.AuthToken, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &model.ValidationError{Field: "email", Reason: "please enter email and password"}
	}

	token, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, model.NewCollaboratorError("sign in", err)
	}

	s.publisher.Publish(model.SessionEvent{Kind: model.SignedIn, UserID: token.User.ID, At: time.Now().UTC()})
	return token, nil
}

func (s *authService) Logout(ctx context.Context, session model.Session) error {
	if err := s.identity.SignOut(ctx, session.AccessToken); err != nil {
		return model.NewCollaboratorError("sign out", err)
	}
	s.publisher.Publish(model.SessionEvent{Kind: model.SignedOut, UserID: session.UserID, At: time.Now().UTC()})
	return nil
}

func (s *authService) ResolveSession(ctx context.Context, accessToken string) (model.Session, error) {
	if accessToken == "" {
		return model.Session{}, model.ErrUnauthenticated
	}

	user, err := s.identity.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, model.ErrUnauthenticated) {
			return model.Session{}, err
		}
		return model.Session{}, model.NewCollaboratorError("get user", err)
	}

	profile, err := s.profiles.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			return model.Session{}, &model.AuthorizationError{Action: model.ViewRecords, Reason: "no profile for this user"}
		}
		return model.Session{}, backendError("find profile", err)
	}

	return model.Session{UserID: user.ID, AccessToken: accessToken, Profile: profile}, nil
}
