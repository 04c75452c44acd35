package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// Login authenticates with email and password. The access token is stored;
// the refresh cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password, deviceID string) (*LoginResult, error) {
	var out LoginResult
	err := c.DoWithCredentials(ctx, http.MethodPost, "/api/auth",
		loginRequest{Email: email, Password: password, DeviceID: deviceID}, false, &out)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if out.AccessJWT == "" {
		return nil, fmt.Errorf("login: response has no access token")
	}
	if err := c.tokens.SetToken(out.AccessJWT); err != nil {
		return nil, fmt.Errorf("storing access token: %w", err)
	}
	c.logger.Info("logged in", zap.String("email", email))
	return &out, nil
}

// Logout ends the session on the server. Local state is cleared even when
// the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.DoWithCredentials(ctx, http.MethodDelete, "/api/auth", nil, true, nil)
	if clearErr := c.tokens.ClearAll(); clearErr != nil {
		c.logger.Warn("clearing session", zap.Error(clearErr))
	}
	if clearErr := c.jar.Clear(); clearErr != nil {
		c.logger.Warn("clearing cookies", zap.Error(clearErr))
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Claims are the access token fields the client displays.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// TokenClaims decodes the access token without verifying its signature.
// The client never trusts these values for authorization; the backend does
// the checking.
func TokenClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}
	return &claims, nil
}

var deviceNamespace = uuid.MustParse("6f1c7c36-5d0b-4a4f-9a2e-6b8d2f0c9e11")

// DeviceID returns a stable identifier for this machine, derived from the
// hostname so it needs no storage.
func DeviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return uuid.NewSHA1(deviceNamespace, []byte(host+"/"+runtime.GOOS)).String()
}
