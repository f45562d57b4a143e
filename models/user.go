package models

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

func (r Role) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// User is the identity a client holds for the signed-in principal. It is
// composed from the session (email) and the profile record.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Location string `json:"location,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type AccountMetadata struct {
	Name string `json:"name" binding:"required,min=2"`
	Role Role   `json:"role" binding:"required,role"`
}

type Account struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	Password         string          `json:"-"`
	Metadata         AccountMetadata `json:"metadata"`
	EmailConfirmedAt *time.Time      `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (a *Account) Confirmed() bool {
	return a.EmailConfirmedAt != nil
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Location  string    `json:"location"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.AccessToken != "" && s.UserID != "" && now.Before(s.ExpiresAt)
}

type SignupResult struct {
	UserID                    string   `json:"user_id"`
	Role                      Role     `json:"role"`
	RequiresEmailConfirmation bool     `json:"requires_email_confirmation"`
	Session                   *Session `json:"session,omitempty"`
	SignupToken               string   `json:"signup_token,omitempty"`
}
