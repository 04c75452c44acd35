package board

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

// Model is the paged post list.
type Model struct {
	list       list.Model
	strategy   api.Strategy
	posts      []api.PostSummary
	cdnBaseURL string
	nextCursor string
	hasNext    bool
	deps       common.Deps
	loading    bool
	width      int
	height     int
}

// New creates a new board model.
func New(deps common.Deps) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := Model{
		list:     l,
		strategy: api.StrategyRecent,
		deps:     deps,
		loading:  true,
	}
	m.list.Title = m.title()
	return m
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadFirst(false)
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

func (m Model) Loading() bool {
	return m.loading
}

// Filtering reports whether the filter prompt owns the keyboard.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Strategy returns the current ordering.
func (m Model) Strategy() api.Strategy {
	return m.strategy
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.PostsLoadedMsg:
		if msg.Strategy != m.strategy {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = m.title()
			return m, common.ErrorToast(msg.Err)
		}
		page := msg.Page
		if msg.Append {
			m.posts = append(m.posts, page.Items...)
		} else {
			m.posts = append([]api.PostSummary(nil), page.Items...)
		}
		if page.CDNBaseURL != "" {
			m.cdnBaseURL = page.CDNBaseURL
		}
		m.nextCursor = page.NextCursor
		m.hasNext = page.HasNext && page.NextCursor != ""
		m.list.Title = m.title()
		cmd := m.list.SetItems(m.items())
		return m, cmd

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(PostItem); ok {
				id := item.PostID
				return m, func() tea.Msg { return messages.OpenPostMsg{PostID: id} }
			}
			return m, nil
		case "tab", "s":
			if m.strategy == api.StrategyRecent {
				m.strategy = api.StrategyPopular
			} else {
				m.strategy = api.StrategyRecent
			}
			m.posts = nil
			m.nextCursor = ""
			m.hasNext = false
			m.loading = true
			m.list.ResetFilter()
			m.list.Select(0)
			m.list.Title = m.title()
			cmd := tea.Batch(m.list.SetItems(nil), m.loadFirst(false))
			return m, cmd
		case "r", "ctrl+r":
			cmd := m.Refresh()
			return m, cmd
		case "w":
			return m, func() tea.Msg { return messages.OpenComposeMsg{} }
		case "m":
			if next := m.loadMore(); next != nil {
				m.loading = true
				m.list.Title = m.title()
				return m, next
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	// Reaching the last row pulls the next page.
	if _, isKey := msg.(tea.KeyMsg); isKey && !m.Filtering() && !m.loading &&
		len(m.posts) > 0 && m.list.Index() == len(m.posts)-1 {
		if next := m.loadMore(); next != nil {
			m.loading = true
			m.list.Title = m.title()
			return m, tea.Batch(cmd, next)
		}
	}
	return m, cmd
}

// Refresh reloads the first page of the current strategy, bypassing the
// cache.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	m.list.Title = m.title()
	return m.loadFirst(true)
}

// View renders the board.
func (m Model) View() string {
	return m.list.View()
}

func (m Model) items() []list.Item {
	items := make([]list.Item, len(m.posts))
	for i, p := range m.posts {
		items[i] = PostItem{PostSummary: p, Index: i}
	}
	return items
}

func (m Model) title() string {
	t := "Board · Recent"
	if m.strategy == api.StrategyPopular {
		t = "Board · Popular"
	}
	switch {
	case m.loading:
		t += " (loading...)"
	case m.hasNext:
		t += " (more below)"
	}
	return t
}

func (m Model) loadFirst(force bool) tea.Cmd {
	deps := m.deps
	strategy := m.strategy
	return func() tea.Msg {
		if !force {
			if page, fresh, _ := deps.Cache.GetPostList(strategy, deps.Cfg.PostListTTL); fresh && page != nil {
				return messages.PostsLoadedMsg{Strategy: strategy, Page: page}
			}
		}
		ctx, cancel := deps.Context()
		defer cancel()
		page, err := deps.Client.ListPosts(ctx, api.PostQuery{Strategy: strategy})
		if err != nil {
			if cached, _, _ := deps.Cache.GetPostList(strategy, 0); cached != nil {
				return messages.PostsLoadedMsg{Strategy: strategy, Page: cached}
			}
			return messages.PostsLoadedMsg{Strategy: strategy, Err: err}
		}
		if err := deps.Cache.PutPostList(strategy, page); err != nil {
			deps.Log().Warn("caching post list", zap.Error(err))
		}
		return messages.PostsLoadedMsg{Strategy: strategy, Page: page}
	}
}

func (m Model) loadMore() tea.Cmd {
	if !m.hasNext || m.loading {
		return nil
	}
	deps := m.deps
	strategy := m.strategy
	cursor := m.nextCursor
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		page, err := deps.Client.ListPosts(ctx, api.PostQuery{Strategy: strategy, Cursor: cursor})
		return messages.PostsLoadedMsg{Strategy: strategy, Page: page, Append: true, Err: err}
	}
}
