package identity

import (
	"context"

	"farmconnect/models"
)

type AuthEventType string

const (
	SignedIn    AuthEventType = "SIGNED_IN"
	SignedOut   AuthEventType = "SIGNED_OUT"
	UserUpdated AuthEventType = "USER_UPDATED"
)

// AuthEvent is a provider notification about the session. Session is nil
// for SignedOut.
type AuthEvent struct {
	Type    AuthEventType
	Session *models.Session
}

// Provider is the identity-and-data service the Manager synchronizes with.
//
// GetSession returns (nil, nil) when nobody is signed in. GetProfile returns
// an error wrapping models.ErrNotFound, or (nil, nil), when the account has no
// profile. OnAuthStateChange callbacks may run on the goroutine that caused
// the change.
type Provider interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password string, meta models.AccountMetadata) (*models.SignupResult, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(AuthEvent)) (unsubscribe func())

	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	InsertProfile(ctx context.Context, profile models.Profile) error
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) error
}
