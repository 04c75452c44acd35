package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/monitor"
	"github.com/kaboocam/kaboocam/internal/ui/activity"
	"github.com/kaboocam/kaboocam/internal/ui/board"
	"github.com/kaboocam/kaboocam/internal/ui/commentform"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/compose"
	"github.com/kaboocam/kaboocam/internal/ui/home"
	"github.com/kaboocam/kaboocam/internal/ui/login"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/ui/mypage"
	"github.com/kaboocam/kaboocam/internal/ui/postview"
	"github.com/kaboocam/kaboocam/internal/ui/recovery"
	"github.com/kaboocam/kaboocam/internal/ui/signup"
	"github.com/kaboocam/kaboocam/internal/ui/statusbar"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewHome ViewType = iota
	ViewBoard
	ViewPost
	ViewCompose
	ViewComment
	ViewLogin
	ViewSignup
	ViewRecover
	ViewMyPage
	ViewActivity
)

// App is the root Bubble Tea model.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType

	// Child models
	home        home.Model
	board       board.Model
	postView    postview.Model
	compose     compose.Model
	commentForm commentform.Model
	loginForm   login.Model
	signupForm  signup.Model
	recoverForm recovery.Model
	myPage      mypage.Model
	activity    activity.Model
	statusBar   statusbar.Model
	help        help.Model
	showHelp    bool

	// Shared state
	deps        common.Deps
	monitor     *monitor.Monitor
	boardLoaded bool

	// Dimensions
	width  int
	height int

	// For passing program reference to monitor
	program monitor.Notifier
}

// NewApp creates the root application model.
func NewApp(deps common.Deps, mon *monitor.Monitor) *App {
	return &App{
		activeView: ViewHome,
		home:       home.New(deps),
		board:      board.New(deps),
		activity:   activity.New(deps),
		statusBar:  statusbar.New(),
		help:       help.New(),
		deps:       deps,
		monitor:    mon,
	}
}

// SetProgram stores the program for the background monitor and routes
// session expiry from the API client into the UI.
func (a *App) SetProgram(p monitor.Notifier) {
	a.program = p
	a.deps.Client.SetSessionExpiredHandler(func(redirect string) {
		p.Send(messages.SessionChangedMsg{LoggedIn: false})
		p.Send(messages.NavigateMsg{Path: redirect})
	})
}

// Init restores a saved session and loads the home page.
func (a *App) Init() tea.Cmd {
	if user := a.deps.CurrentUser(); user != nil {
		a.statusBar.SetUser(user.Name)
		a.statusBar.SetUnread(a.deps.Cache.UnreadActivityCount())
		a.startMonitor(user.Name)
	}
	a.statusBar.SetActiveTab("/")
	return a.home.Init()
}

func (a *App) loggedIn() bool {
	return a.deps.Store.HasToken()
}

func (a *App) startMonitor(self string) {
	if a.program != nil && a.monitor != nil {
		a.monitor.Start(a.program, self)
	}
}

func (a *App) stopMonitor() {
	if a.monitor != nil {
		a.monitor.Stop()
	}
}

func (a *App) contentHeight() int {
	if a.showHelp {
		return a.height - 2
	}
	return a.height - 1
}

// textInputActive reports whether the active view consumes printable keys.
func (a *App) textInputActive() bool {
	switch a.activeView {
	case ViewLogin, ViewSignup, ViewRecover, ViewCompose, ViewComment:
		return true
	case ViewMyPage:
		return a.myPage.InputActive()
	case ViewBoard:
		return a.board.Filtering()
	case ViewPost:
		return a.postView.Confirming()
	}
	return false
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.statusBar.SetSize(msg.Width)
		a.help.Width = msg.Width
		a.resize()
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.ForceQuit) {
			a.stopMonitor()
			return a, tea.Quit
		}
		if a.textInputActive() {
			// Forms keep esc for themselves only while they own a prompt.
			if key.Matches(msg, Keys.Back) && a.activeView != ViewMyPage && a.activeView != ViewBoard && a.activeView != ViewPost {
				return a, a.goBack()
			}
			break
		}
		switch {
		case key.Matches(msg, Keys.Quit):
			if a.isTab(a.activeView) {
				a.stopMonitor()
				return a, tea.Quit
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.Back):
			if len(a.previousViews) > 0 {
				return a, a.goBack()
			}
			return a, nil
		case key.Matches(msg, Keys.Help):
			a.showHelp = !a.showHelp
			a.resize()
			return a, nil
		case key.Matches(msg, Keys.Home):
			return a, a.navigate(messages.NavigateMsg{Path: "/"})
		case key.Matches(msg, Keys.Board):
			return a, a.navigate(messages.NavigateMsg{Path: "/board"})
		case key.Matches(msg, Keys.MyPage):
			return a, a.navigate(messages.NavigateMsg{Path: "/mypage"})
		case key.Matches(msg, Keys.Login):
			if !a.loggedIn() {
				return a, a.navigate(messages.NavigateMsg{Path: "/login"})
			}
			return a, common.Toast("Already logged in")
		case key.Matches(msg, Keys.Activity):
			return a, a.openActivity()
		}

	// View transitions.
	case messages.NavigateMsg:
		return a, a.busy(a.navigate(msg))

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.OpenPostMsg:
		return a, a.busy(a.openPost(msg.PostID))

	case messages.OpenActivityMsg:
		return a, a.openActivity()

	case messages.OpenComposeMsg:
		if !a.loggedIn() {
			return a, a.requireLogin()
		}
		a.compose = compose.New(a.deps, msg.Post)
		a.pushView(ViewCompose)
		return a, nil

	case messages.OpenCommentFormMsg:
		if !a.loggedIn() {
			return a, a.requireLogin()
		}
		a.commentForm = commentform.New(a.deps, msg.PostID, msg.Comment)
		a.pushView(ViewComment)
		return a, nil

	// Session.
	case messages.LoginResultMsg:
		a.loginForm, _ = a.loginForm.Update(msg)
		if msg.Err != nil {
			return a, a.busy(nil)
		}
		name := msg.Email
		if user := a.deps.CurrentUser(); user != nil && user.Name != "" {
			name = user.Name
		}
		a.statusBar.SetUser(name)
		a.statusBar.SetUnread(a.deps.Cache.UnreadActivityCount())
		a.startMonitor(name)
		a.deps.Log().Info("logged in", zap.String("email", msg.Email))
		return a, tea.Batch(
			a.busy(a.navigate(messages.NavigateMsg{Path: "/"})),
			common.Toast("Welcome, "+name),
		)

	case messages.SessionChangedMsg:
		if msg.LoggedIn {
			a.statusBar.SetUser(msg.Name)
		} else {
			a.statusBar.SetUser("")
			a.statusBar.SetUnread(0)
			a.stopMonitor()
		}

	case messages.NewActivityMsg:
		a.statusBar.SetUnread(msg.Unread)

	// Results that close a form.
	case messages.CommentSavedMsg:
		if msg.Err == nil && a.activeView == ViewComment {
			a.goBack()
			var cmd tea.Cmd
			if a.activeView == ViewPost {
				cmd = a.postView.Reload()
			}
			return a, a.busy(tea.Batch(cmd, common.Toast("Comment saved")))
		}

	case messages.PostSavedMsg:
		if msg.Err == nil && a.activeView == ViewCompose {
			editing := a.compose.Editing()
			a.goBack()
			cmds := []tea.Cmd{common.Toast("Post published")}
			if editing {
				cmds[0] = common.Toast("Post updated")
			}
			switch a.activeView {
			case ViewPost:
				cmds = append(cmds, a.postView.Reload())
			case ViewBoard:
				cmds = append(cmds, a.board.Refresh())
			case ViewHome:
				cmds = append(cmds, a.home.Refresh())
			}
			return a, a.busy(tea.Batch(cmds...))
		}

	case messages.PostDeletedMsg:
		a.postView, _ = a.postView.Update(msg)
		if msg.Err != nil {
			return a, tea.Batch(common.ErrorToast(msg.Err), a.busy(nil))
		}
		if a.activeView == ViewPost {
			a.goBack()
		}
		cmds := []tea.Cmd{common.Toast("Post deleted")}
		switch a.activeView {
		case ViewBoard:
			cmds = append(cmds, a.board.Refresh())
		case ViewHome:
			cmds = append(cmds, a.home.Refresh())
		}
		return a, a.busy(tea.Batch(cmds...))
	}

	// Route to the owning or active view.
	cmds = append(cmds, a.route(msg))

	var cmd tea.Cmd
	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd, a.busy(nil))

	return a, tea.Batch(cmds...)
}

// route delivers data messages to the page that requested them, even when
// the user has moved on, and everything else to the active view.
func (a *App) route(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.(type) {
	case messages.HomeLoadedMsg:
		a.home, cmd = a.home.Update(msg)
		return cmd
	case messages.PostsLoadedMsg:
		a.board, cmd = a.board.Update(msg)
		return cmd
	case messages.PostLoadedMsg, messages.ImagesLoadedMsg, messages.LikeResultMsg, messages.CommentDeletedMsg:
		a.postView, cmd = a.postView.Update(msg)
		return cmd
	case messages.ProfileLoadedMsg:
		a.myPage, cmd = a.myPage.Update(msg)
		return cmd
	case messages.CommentSavedMsg:
		a.commentForm, cmd = a.commentForm.Update(msg)
		return cmd
	case messages.PostSavedMsg:
		a.compose, cmd = a.compose.Update(msg)
		return cmd
	case messages.NewActivityMsg:
		if a.activeView != ViewActivity {
			return nil
		}
	}

	switch a.activeView {
	case ViewHome:
		a.home, cmd = a.home.Update(msg)
	case ViewBoard:
		a.board, cmd = a.board.Update(msg)
	case ViewPost:
		a.postView, cmd = a.postView.Update(msg)
	case ViewCompose:
		a.compose, cmd = a.compose.Update(msg)
	case ViewComment:
		a.commentForm, cmd = a.commentForm.Update(msg)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
	case ViewSignup:
		a.signupForm, cmd = a.signupForm.Update(msg)
	case ViewRecover:
		a.recoverForm, cmd = a.recoverForm.Update(msg)
	case ViewMyPage:
		a.myPage, cmd = a.myPage.Update(msg)
	case ViewActivity:
		a.activity, cmd = a.activity.Update(msg)
	}
	return cmd
}

// busy syncs the status bar spinner with the active view and adds its tick
// to cmd.
func (a *App) busy(cmd tea.Cmd) tea.Cmd {
	return tea.Batch(cmd, a.statusBar.SetBusy(a.activeLoading()))
}

func (a *App) activeLoading() bool {
	switch a.activeView {
	case ViewHome:
		return a.home.Loading()
	case ViewBoard:
		return a.board.Loading()
	case ViewPost:
		return a.postView.Loading()
	case ViewCompose:
		return a.compose.Loading()
	case ViewComment:
		return a.commentForm.Loading()
	case ViewLogin:
		return a.loginForm.Loading()
	case ViewSignup:
		return a.signupForm.Loading()
	case ViewRecover:
		return a.recoverForm.Loading()
	case ViewMyPage:
		return a.myPage.Loading()
	}
	return false
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewHome:
		content = a.home.View()
	case ViewBoard:
		content = a.board.View()
	case ViewPost:
		content = a.postView.View()
	case ViewCompose:
		content = a.compose.View()
	case ViewComment:
		content = a.commentForm.View()
	case ViewLogin:
		content = a.loginForm.View()
	case ViewSignup:
		content = a.signupForm.View()
	case ViewRecover:
		content = a.recoverForm.View()
	case ViewMyPage:
		content = a.myPage.View()
	case ViewActivity:
		content = a.activity.View()
	}

	if a.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left, content, a.help.View(Keys), a.statusBar.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// ActiveView reports which view has focus.
func (a *App) ActiveView() ViewType {
	return a.activeView
}

func (a *App) resize() {
	w, h := a.width, a.contentHeight()
	a.home.SetSize(w, h)
	a.board.SetSize(w, h)
	a.activity.SetSize(w, h)
	switch a.activeView {
	case ViewPost:
		a.postView.SetSize(w, h)
	case ViewCompose:
		a.compose.SetSize(w, h)
	case ViewComment:
		a.commentForm.SetSize(w, h)
	case ViewLogin:
		a.loginForm.SetSize(w, h)
	case ViewSignup:
		a.signupForm.SetSize(w, h)
	case ViewRecover:
		a.recoverForm.SetSize(w, h)
	case ViewMyPage:
		a.myPage.SetSize(w, h)
	}
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
	a.resize()
	a.statusBar.SetActiveTab(a.tabPath())
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
		a.resize()
		a.statusBar.SetActiveTab(a.tabPath())
	}
	return a.busy(nil)
}

func (a *App) isTab(v ViewType) bool {
	return v == ViewHome || v == ViewBoard || v == ViewMyPage
}

// tabPath is the path of the tab the current view lives under.
func (a *App) tabPath() string {
	v := a.activeView
	for i := len(a.previousViews); !a.isTab(v) && i > 0; i-- {
		v = a.previousViews[i-1]
	}
	switch v {
	case ViewBoard:
		return "/board"
	case ViewMyPage:
		return "/mypage"
	}
	return "/"
}

func (a *App) requireLogin() tea.Cmd {
	return tea.Batch(
		common.Toast("Please log in first"),
		a.navigate(messages.NavigateMsg{Path: "/login"}),
	)
}

func (a *App) openPost(id api.ID) tea.Cmd {
	a.postView = postview.New(a.deps, id)
	a.pushView(ViewPost)
	return a.postView.Init()
}

func (a *App) openActivity() tea.Cmd {
	if a.activeView != ViewActivity {
		a.pushView(ViewActivity)
	}
	a.activity.Load()
	return nil
}
