package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"farmconnect/models"
	"farmconnect/utils"

	"github.com/rs/zerolog"
)

type AccountStore interface {
	Create(ctx context.Context, acc *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Confirm(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	Update(ctx context.Context, id string, req models.UpdateProfileRequest) (*models.Profile, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthConfig struct {
	SessionTTL          time.Duration
	SignupTokenTTL      time.Duration
	ConfirmTokenTTL     time.Duration
	RequireConfirmation bool
	PublicURL           string
}

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", models.ErrAuthentication)

type AuthService struct {
	accounts AccountStore
	profiles ProfileStore
	tokens   TokenStore
	tm       *utils.TokenManager
	mailer   Mailer
	cfg      AuthConfig
	logger   zerolog.Logger
}

// NewAuthService wires the account flows. mailer may be nil, in which case
// accounts are confirmed at sign-up.
func NewAuthService(accounts AccountStore, profiles ProfileStore, tokens TokenStore, tm *utils.TokenManager, mailer Mailer, cfg AuthConfig, logger zerolog.Logger) *AuthService {
	if cfg.ConfirmTokenTTL == 0 {
		cfg.ConfirmTokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts: accounts,
		profiles: profiles,
		tokens:   tokens,
		tm:       tm,
		mailer:   mailer,
		cfg:      cfg,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.SignupResult, error) {
	if !req.Metadata.Role.Valid() {
		return nil, models.Validationf("unknown role %q", req.Metadata.Role)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	needConfirm := s.cfg.RequireConfirmation && s.mailer != nil
	acc := &models.Account{
		Email:    normalizeEmail(req.Email),
		Password: hashed,
		Metadata: models.AccountMetadata{Name: strings.TrimSpace(req.Metadata.Name), Role: req.Metadata.Role},
	}
	if !needConfirm {
		now := time.Now().UTC()
		acc.EmailConfirmedAt = &now
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", models.ErrDuplicate)
		}
		return nil, err
	}

	result := &models.SignupResult{UserID: acc.ID, Role: acc.Metadata.Role}

	if !needConfirm {
		session, err := s.issueSession(acc)
		if err != nil {
			return nil, err
		}
		result.Session = session
		return result, nil
	}

	if err := s.sendConfirmation(acc); err != nil {
		// Without the mail the account could never be confirmed.
		if delErr := s.accounts.Delete(ctx, acc.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("user_id", acc.ID).Msg("remove unconfirmable account failed")
		}
		return nil, fmt.Errorf("%w: send confirmation mail: %v", models.ErrNetwork, err)
	}

	token, _, err := s.tm.Generate(acc.ID, acc.Email, string(acc.Metadata.Role), utils.ScopeSignup, s.cfg.SignupTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generate signup token: %w", err)
	}
	result.RequiresEmailConfirmation = true
	result.SignupToken = token
	return result, nil
}

func (s *AuthService) sendConfirmation(acc *models.Account) error {
	token, _, err := s.tm.Generate(acc.ID, acc.Email, string(acc.Metadata.Role), utils.ScopeConfirmEmail, s.cfg.ConfirmTokenTTL)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.cfg.PublicURL, "/") + "/auth/confirm?token=" + url.QueryEscape(token)
	return s.mailer.SendConfirmation(acc.Email, acc.Metadata.Name, link)
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Session, error) {
	acc, err := s.accounts.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(acc.Password, req.Password) {
		return nil, errInvalidCredentials
	}
	if !acc.Confirmed() {
		return nil, fmt.Errorf("%w: email not confirmed", models.ErrAuthentication)
	}

	return s.issueSession(acc)
}

func (s *AuthService) issueSession(acc *models.Account) (*models.Session, error) {
	token, expiresAt, err := s.tm.Generate(acc.ID, acc.Email, string(acc.Metadata.Role), utils.ScopeSession, s.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &models.Session{
		AccessToken: token,
		UserID:      acc.ID,
		Email:       acc.Email,
		ExpiresAt:   expiresAt,
	}, nil
}

// Authenticate validates a bearer token, checks that its scope is one of
// scopes and that it has not been revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string, scopes ...string) (*utils.Claims, error) {
	claims, err := s.tm.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}
	if !slices.Contains(scopes, claims.Scope) {
		return nil, fmt.Errorf("%w: token scope %q not accepted here", models.ErrAuthentication, claims.Scope)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", models.ErrAuthentication)
	}
	return claims, nil
}

// Session describes the session behind an authenticated token. A token whose
// account has since been deleted is rejected.
func (s *AuthService) Session(ctx context.Context, claims *utils.Claims, token string) (*models.Session, error) {
	acc, err := s.accounts.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", models.ErrAuthentication)
		}
		return nil, err
	}
	return &models.Session{
		AccessToken: token,
		UserID:      acc.ID,
		Email:       acc.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	return s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.tm.Validate(token)
	if err != nil || claims.Scope != utils.ScopeConfirmEmail {
		return models.Validationf("invalid or expired confirmation link")
	}
	return s.accounts.Confirm(ctx, claims.UserID)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return models.Validationf("new password and confirmation do not match")
	}

	acc, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(acc.Password, req.OldPassword) {
		return models.Validationf("current password is incorrect")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.accounts.UpdatePassword(ctx, userID, hashed)
}

// DeleteAccount removes the account with everything it owns and revokes the
// token used to ask for it.
func (s *AuthService) DeleteAccount(ctx context.Context, claims *utils.Claims) error {
	if err := s.accounts.Delete(ctx, claims.UserID); err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("revoke token of deleted account failed")
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.FindByID(ctx, id)
}

// CreateProfile stores the profile of the token's own account. The role must
// match the one chosen at sign-up.
func (s *AuthService) CreateProfile(ctx context.Context, claims *utils.Claims, req models.CreateProfileRequest) (*models.Profile, error) {
	if req.ID != claims.UserID {
		return nil, models.Permissionf("cannot create a profile for another account")
	}

	acc, err := s.accounts.FindByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if req.Role != acc.Metadata.Role {
		return nil, models.Validationf("role %q does not match the account role %q", req.Role, acc.Metadata.Role)
	}

	p := &models.Profile{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		Role:     req.Role,
		Location: strings.TrimSpace(req.Location),
		Phone:    strings.TrimSpace(req.Phone),
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, fmt.Errorf("%w: profile already exists", models.ErrDuplicate)
		}
		return nil, err
	}
	return p, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, claims *utils.Claims, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	if id != claims.UserID {
		return nil, models.Permissionf("cannot update another account's profile")
	}
	return s.profiles.Update(ctx, id, req)
}
