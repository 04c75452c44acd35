package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

func (c *Client) GetProfile(ctx context.Context) (*Member, error) {
	var m Member
	if err := c.Get(ctx, "/api/members", nil, &m); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	return &m, nil
}

func (c *Client) Register(ctx context.Context, r Registration) error {
	err := c.Do(ctx, http.MethodPost, "/api/members", RequestOptions{Body: r, SkipAuth: true}, nil)
	if err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	return nil
}

// DeleteAccount removes the member and clears local session state.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.Delete(ctx, "/api/members", nil); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	if err := c.tokens.ClearAll(); err != nil {
		c.logger.Warn("clearing session", zap.Error(err))
	}
	if err := c.jar.Clear(); err != nil {
		c.logger.Warn("clearing cookies", zap.Error(err))
	}
	return nil
}

func (c *Client) UpdateName(ctx context.Context, name string) error {
	body := struct {
		Name string `json:"name"`
	}{name}
	if err := c.Patch(ctx, "/api/members/names", body, nil); err != nil {
		return fmt.Errorf("updating nickname: %w", err)
	}
	return nil
}

func (c *Client) UpdatePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}{oldPassword, newPassword}
	if err := c.Patch(ctx, "/api/members/passwords", body, nil); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

func (c *Client) UpdateProfileImage(ctx context.Context, objectKey string) error {
	body := struct {
		ImageObjectKey string `json:"imageObjectKey"`
	}{objectKey}
	if err := c.Patch(ctx, "/api/members/profileImages", body, nil); err != nil {
		return fmt.Errorf("updating profile image: %w", err)
	}
	return nil
}

// EmailAvailability is the optional body of a signup duplicate check.
type EmailAvailability struct {
	Available *bool `json:"available"`
}

// CheckEmail reports whether email can be used for a new account. The
// backend rejects taken addresses with an error envelope, which is reported
// as unavailable rather than as a failure.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	var out EmailAvailability
	err := c.Do(ctx, http.MethodGet, "/api/members/emails",
		RequestOptions{Params: url.Values{"email": {email}}, SkipAuth: true}, &out)
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	if out.Available != nil {
		return *out.Available, nil
	}
	return true, nil
}

func (c *Client) SendRecoverCode(ctx context.Context, email string) error {
	body := struct {
		Email string `json:"email"`
	}{email}
	err := c.Do(ctx, http.MethodPost, "/api/members/recover/codes", RequestOptions{Body: body, SkipAuth: true}, nil)
	if err != nil {
		return fmt.Errorf("sending recovery code: %w", err)
	}
	return nil
}

// VerifyRecoverCode exchanges the emailed code for a short-lived token that
// authorizes RecoverMember.
func (c *Client) VerifyRecoverCode(ctx context.Context, email, code string) (string, error) {
	body := struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}{email, code}
	var out struct {
		EmailVerifiedToken string `json:"emailVerifiedToken"`
	}
	err := c.Do(ctx, http.MethodPost, "/api/members/recover/codes/verify", RequestOptions{Body: body, SkipAuth: true}, &out)
	if err != nil {
		return "", fmt.Errorf("verifying recovery code: %w", err)
	}
	if out.EmailVerifiedToken == "" {
		return "", fmt.Errorf("verifying recovery code: response has no token")
	}
	return out.EmailVerifiedToken, nil
}

func (c *Client) RecoverMember(ctx context.Context, email, password, verifiedToken string) error {
	body := struct {
		Email              string `json:"email"`
		Password           string `json:"password"`
		EmailVerifiedToken string `json:"emailVerifiedToken"`
	}{email, password, verifiedToken}
	err := c.Do(ctx, http.MethodPatch, "/api/members/recover", RequestOptions{Body: body, SkipAuth: true}, nil)
	if err != nil {
		return fmt.Errorf("resetting password: %w", err)
	}
	return nil
}
