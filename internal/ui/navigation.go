package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/login"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/mypage"
	"github.com/kaboocam/kaboocam/internal/ui/recovery"
	"github.com/kaboocam/kaboocam/internal/ui/signup"
)

// pages maps every page path to the view that serves it. It is filled in
// init because the handlers call back into navigate.
var pages map[string]func(a *App, msg messages.NavigateMsg) tea.Cmd

func init() {
	pages = map[string]func(a *App, msg messages.NavigateMsg) tea.Cmd{
		"/": func(a *App, _ messages.NavigateMsg) tea.Cmd {
			a.switchTab(ViewHome)
			return nil
		},
		"/board": func(a *App, _ messages.NavigateMsg) tea.Cmd {
			a.switchTab(ViewBoard)
			if a.boardLoaded {
				return nil
			}
			a.boardLoaded = true
			return a.board.Init()
		},
		"/board/detail": func(a *App, msg messages.NavigateMsg) tea.Cmd {
			if msg.PostID == "" {
				return common.Toast("No post selected")
			}
			return a.openPost(msg.PostID)
		},
		"/mypage": func(a *App, _ messages.NavigateMsg) tea.Cmd {
			if !a.loggedIn() {
				return a.requireLogin()
			}
			a.myPage = mypage.New(a.deps)
			a.switchTab(ViewMyPage)
			return a.myPage.Init()
		},
		"/login": func(a *App, msg messages.NavigateMsg) tea.Cmd {
			a.dropAuthViews()
			a.loginForm = login.New(a.deps, msg.Email)
			a.pushView(ViewLogin)
			return nil
		},
		"/signup": func(a *App, _ messages.NavigateMsg) tea.Cmd {
			a.dropAuthViews()
			a.signupForm = signup.New(a.deps)
			a.pushView(ViewSignup)
			return nil
		},
		"/recover": func(a *App, msg messages.NavigateMsg) tea.Cmd {
			a.dropAuthViews()
			a.recoverForm = recovery.New(a.deps, msg.Email)
			a.pushView(ViewRecover)
			return a.recoverForm.Init()
		},
	}
}

// navigate opens the page registered for msg.Path. Unknown paths fall back
// to the home page.
func (a *App) navigate(msg messages.NavigateMsg) tea.Cmd {
	open, ok := pages[msg.Path]
	if !ok {
		a.deps.Log().Debug("unknown page", zap.String("path", msg.Path))
		open = pages["/"]
	}
	return open(a, msg)
}

// switchTab makes v the only view on the stack.
func (a *App) switchTab(v ViewType) {
	a.previousViews = nil
	a.activeView = v
	a.resize()
	a.statusBar.SetActiveTab(a.tabPath())
}

// dropAuthViews pops login, signup and recover views so moving between
// them does not grow the stack.
func (a *App) dropAuthViews() {
	for len(a.previousViews) > 0 {
		switch a.activeView {
		case ViewLogin, ViewSignup, ViewRecover:
			a.goBack()
		default:
			return
		}
	}
}
