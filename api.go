package techcv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	registerPath      = "/techcv/api/v1/auth/register"
	verifyPath        = "/techcv/api/v1/auth/verify"
	oauthCallbackPath = "/api/v1/auth/google/callback"
	currentUserPath   = "/api/v1/auth/me"
	oauthLoginPath    = "/api/v1/auth/google/login"
)

// RegisterResult is the successful registration response.
type RegisterResult struct {
	Message string `json:"message"`
	// ExpiresAt is when the emailed verification token expires.
	ExpiresAt time.Time `json:"expires_at"`
}

// VerificationResult is the successful verification exchange: the
// long-lived auth token and the verified identity.
type VerificationResult struct {
	Message   string       `json:"message"`
	AuthToken string       `json:"auth_token"`
	User      VerifiedUser `json:"user"`
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// Register starts a registration for the given payload.
func (c *Client) Register(ctx context.Context, payload RegistrationPayload) (*RegisterResult, error) {
	body := registerRequest{
		Email:                payload.Email,
		Password:             payload.Password,
		PasswordConfirmation: payload.PasswordConfirmation,
	}

	var env envelope
	if err := c.do(ctx, "register", http.MethodPost, registerPath, body, &env); err != nil {
		return nil, err
	}

	result := &RegisterResult{}
	if err := decodeData(env, result); err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyRegistration exchanges a verification token for the long-lived
// auth token and the verified identity.
func (c *Client) VerifyRegistration(ctx context.Context, token string) (*VerificationResult, error) {
	var env envelope
	if err := c.do(ctx, "verify", http.MethodPost, verifyPath, verifyRequest{Token: token}, &env); err != nil {
		return nil, err
	}

	result := &VerificationResult{}
	if err := decodeData(env, result); err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteOAuthCallback exchanges the one-time OAuth code with the backend.
// The response body carries no data the client consumes.
func (c *Client) CompleteOAuthCallback(ctx context.Context, code, state string) error {
	q := url.Values{}
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	return c.do(ctx, "oauth_callback", http.MethodGet, oauthCallbackPath+"?"+q.Encode(), nil, nil)
}

// CurrentUser fetches the authenticated identity. Concurrent calls are
// collapsed into a single request.
func (c *Client) CurrentUser(ctx context.Context) (*AuthUser, error) {
	v, err, _ := c.group.Do("current-user", func() (any, error) {
		var body struct {
			User AuthUser `json:"user"`
		}
		if err := c.do(ctx, "current_user", http.MethodGet, currentUserPath, nil, &body); err != nil {
			return nil, err
		}
		return &body.User, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AuthUser), nil
}

// GoogleLoginURL is the browser redirect target that starts the OAuth
// flow. It is not an API fetch.
func (c *Client) GoogleLoginURL(redirectTo string) string {
	q := url.Values{}
	if c.cfg.OAuthClientID != "" {
		q.Set("client_id", c.cfg.OAuthClientID)
	}
	if redirectTo != "" {
		q.Set("redirect_to", redirectTo)
	}
	dest := c.cfg.BaseURL + oauthLoginPath
	if enc := q.Encode(); enc != "" {
		dest += "?" + enc
	}
	return dest
}

func decodeData(env envelope, out any) error {
	if env.Data == nil {
		return &APIError{Message: "response envelope has no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
