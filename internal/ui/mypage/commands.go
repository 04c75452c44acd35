package mypage

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

type savedMsg struct {
	toast  string
	name   string
	reload bool
	err    error
}

type signedOutMsg struct {
	toast string
	err   error
}

type imageSavedMsg struct {
	path string
	err  error
}

// loadProfile prefers a fresh cached profile and falls back to a stale one
// when the backend fails.
func loadProfile(deps common.Deps, force bool) tea.Cmd {
	return func() tea.Msg {
		cached, fresh, _ := deps.Cache.GetProfile(deps.Cfg.ProfileTTL)
		if fresh && cached != nil && !force {
			return messages.ProfileLoadedMsg{Member: cached}
		}
		ctx, cancel := deps.Context()
		defer cancel()
		member, err := deps.Client.GetProfile(ctx)
		if err != nil {
			if cached != nil {
				return messages.ProfileLoadedMsg{Member: cached}
			}
			return messages.ProfileLoadedMsg{Err: err}
		}
		if err := deps.Cache.PutProfile(member); err != nil {
			deps.Log().Warn("caching profile", zap.Error(err))
		}
		if err := deps.Store.SetUser(member); err != nil {
			deps.Log().Warn("saving user", zap.Error(err))
		}
		return messages.ProfileLoadedMsg{Member: member}
	}
}

func updateName(deps common.Deps, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		if err := deps.Client.UpdateName(ctx, name); err != nil {
			return savedMsg{err: err}
		}
		forgetProfile(deps)
		return savedMsg{toast: "Nickname changed", name: name, reload: true}
	}
}

func updatePassword(deps common.Deps, oldPassword, newPassword string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		if err := deps.Client.UpdatePassword(ctx, oldPassword, newPassword); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{toast: "Password changed"}
	}
}

func updateImage(deps common.Deps, img *validate.Image) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		target, err := deps.Client.ProfileImagePresignedURL(ctx, common.FileSpec(img))
		if err != nil {
			return savedMsg{err: err}
		}
		if err := common.UploadImage(ctx, deps.Client.HTTPClient(), img, target); err != nil {
			return savedMsg{err: err}
		}
		if err := deps.Client.UpdateProfileImage(ctx, target.ObjectKey); err != nil {
			return savedMsg{err: err}
		}
		forgetProfile(deps)
		return savedMsg{toast: "Profile image changed", reload: true}
	}
}

func fetchProfileImage(deps common.Deps, member api.Member) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		var data []byte
		var err error
		if member.ProfileImageObjectKey != "" && member.CDNBaseURL != "" {
			data, err = deps.CDN.FetchImage(ctx, member.CDNBaseURL, member.ProfileImageObjectKey)
		} else if member.ProfileImageURL != "" {
			data, err = deps.CDN.FetchURL(ctx, member.ProfileImageURL)
		} else {
			err = fmt.Errorf("the profile image has no address")
		}
		if err != nil {
			return imageSavedMsg{err: err}
		}
		path, err := common.SaveImage(deps.Cfg.ImageDir, "profile-"+string(member.ID), data)
		return imageSavedMsg{path: path, err: err}
	}
}

func logout(deps common.Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		err := deps.Client.Logout(ctx)
		// The local session is gone either way.
		forgetProfile(deps)
		if err != nil {
			deps.Log().Warn("logout", zap.Error(err))
		}
		return signedOutMsg{toast: "Logged out"}
	}
}

func deleteAccount(deps common.Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		if err := deps.Client.DeleteAccount(ctx); err != nil {
			return signedOutMsg{err: err}
		}
		forgetProfile(deps)
		return signedOutMsg{toast: "Your account has been deleted"}
	}
}

func forgetProfile(deps common.Deps) {
	if err := deps.Cache.ClearProfile(); err != nil {
		deps.Log().Warn("clearing cached profile", zap.Error(err))
	}
}
