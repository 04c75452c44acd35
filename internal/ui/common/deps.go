// Package common holds what every page model shares: the service handles,
// styles, toasts and a few file helpers.
package common

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/cdn"
	"github.com/kaboocam/kaboocam/internal/config"
	"github.com/kaboocam/kaboocam/internal/store"
)

// Deps are the long-lived handles a page needs to talk to the backend.
type Deps struct {
	Cfg    config.Config
	Client *api.Client
	CDN    *cdn.Accessor
	Cache  *cache.DB
	Store  *store.Store
	Logger *zap.Logger
}

// Context returns a context bounded by the configured request timeout.
func (d Deps) Context() (context.Context, context.CancelFunc) {
	if d.Cfg.RequestTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), d.Cfg.RequestTimeout)
}

// Log never returns nil.
func (d Deps) Log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// CurrentUser returns the member saved at login, or nil.
func (d Deps) CurrentUser() *api.Member {
	if d.Store == nil || !d.Store.HasToken() {
		return nil
	}
	var m api.Member
	ok, err := d.Store.User(&m)
	if err != nil || !ok {
		return nil
	}
	return &m
}

// InvalidatePost drops the cached copies a mutation of post id made stale.
func (d Deps) InvalidatePost(id api.ID) {
	if err := d.Cache.InvalidatePost(id); err != nil {
		d.Log().Warn("invalidating post", zap.Error(err))
	}
	if err := d.Cache.InvalidatePostLists(); err != nil {
		d.Log().Warn("invalidating post lists", zap.Error(err))
	}
}

// SignIn logs in and saves the member as the stored user. A profile that
// cannot be fetched falls back to the name carried in the access token.
func (d Deps) SignIn(ctx context.Context, email, password string) (*api.Member, error) {
	if _, err := d.Client.Login(ctx, email, password, api.DeviceID()); err != nil {
		return nil, err
	}
	member, err := d.Client.GetProfile(ctx)
	if err != nil {
		d.Log().Warn("loading profile after login", zap.Error(err))
		member = &api.Member{Email: email}
		if claims, cerr := api.TokenClaims(d.Store.Token()); cerr == nil {
			member.Name = claims.Name
		}
	}
	if err := d.Store.SetUser(member); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	if d.Cache != nil {
		if err := d.Cache.PutProfile(member); err != nil {
			d.Log().Warn("caching profile", zap.Error(err))
		}
	}
	return member, nil
}
