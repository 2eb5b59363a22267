package techcv

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// AuthUser is the identity held by an authenticated session.
type AuthUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// VerifiedUser is the richer identity projection returned by the
// registration verification exchange. It is mapped down to an AuthUser
// before entering the session store.
type VerifiedUser struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	IsActive        bool       `json:"is_active"`
	EmailVerifiedAt time.Time  `json:"email_verified_at"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AuthUser projects the verified identity into session shape. Name falls
// back to the empty string when the server omitted it; the avatar is never
// populated from a verification response.
func (v VerifiedUser) AuthUser() AuthUser {
	return AuthUser{
		ID:    v.ID,
		Email: v.Email,
		Name:  v.Name,
	}
}

// Navigator performs client-side navigation. Replace swaps the current
// history entry instead of pushing a new one.
type Navigator interface {
	Navigate(path string)
	Replace(path string)
}

// TokenStore persists the long-lived auth token under a fixed key.
type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
}

// OAuthService covers the two sequential calls of the OAuth callback flow.
type OAuthService interface {
	CompleteOAuthCallback(ctx context.Context, code, state string) error
	CurrentUser(ctx context.Context) (*AuthUser, error)
}

// VerificationService exchanges a verification token for credentials.
type VerificationService interface {
	VerifyRegistration(ctx context.Context, token string) (*VerificationResult, error)
}

// RegistrationService starts a registration and returns the verification
// token expiry.
type RegistrationService interface {
	Register(ctx context.Context, payload RegistrationPayload) (*RegisterResult, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] TECHCV "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] TECHCV "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] TECHCV "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
