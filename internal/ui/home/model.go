package home

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

// perSection is how many posts each home section shows.
const perSection = 3

type section struct {
	title string
	posts []api.PostSummary
	err   error
}

// Model is the landing page: the most popular and the newest posts.
type Model struct {
	viewport viewport.Model
	sections [2]section
	cursor   int
	deps     common.Deps
	loading  bool
	width    int
	height   int
	now      func() time.Time
}

func New(deps common.Deps) Model {
	return Model{
		viewport: viewport.New(0, 0),
		sections: [2]section{{title: "Popular"}, {title: "Recent"}},
		deps:     deps,
		loading:  true,
		now:      time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return load(m.deps, false)
}

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 2
	m.rebuild()
}

func (m Model) Loading() bool {
	return m.loading
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.HomeLoadedMsg:
		m.loading = false
		m.sections[0].posts, m.sections[0].err = msg.Popular, nil
		m.sections[1].posts, m.sections[1].err = msg.Recent, nil
		if msg.Err != nil {
			if msg.Popular == nil {
				m.sections[0].err = msg.Err
			}
			if msg.Recent == nil {
				m.sections[1].err = msg.Err
			}
		}
		if m.cursor >= m.count() {
			m.cursor = max(m.count()-1, 0)
		}
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < m.count()-1 {
				m.cursor++
				m.rebuild()
			}
			return m, nil
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
				m.rebuild()
			}
			return m, nil
		case "enter":
			if p, ok := m.selected(); ok {
				id := p.PostID
				return m, func() tea.Msg { return messages.OpenPostMsg{PostID: id} }
			}
			return m, nil
		case "r", "ctrl+r":
			cmd := m.Refresh()
			return m, cmd
		case "b":
			return m, common.Navigate("/board")
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Refresh reloads both sections from the backend.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	return load(m.deps, true)
}

func (m Model) View() string {
	return common.TitleStyle.Render("Kaboocam") + "\n" + m.viewport.View()
}

func (m Model) count() int {
	return len(m.sections[0].posts) + len(m.sections[1].posts)
}

func (m Model) selected() (api.PostSummary, bool) {
	i := m.cursor
	for _, s := range m.sections {
		if i < len(s.posts) {
			return s.posts[i], true
		}
		i -= len(s.posts)
	}
	return api.PostSummary{}, false
}

func (m *Model) rebuild() {
	var sb strings.Builder
	idx := 0
	now := m.now()
	for _, s := range m.sections {
		sb.WriteString(common.AuthorStyle.Render(s.title) + "\n\n")
		switch {
		case m.loading && s.posts == nil:
			sb.WriteString(common.MetaStyle.Render("  Loading...") + "\n\n")
		case s.err != nil:
			sb.WriteString(common.ErrorStyle.Render("  Could not load posts: "+common.ErrorText(s.err)) + "\n\n")
		case len(s.posts) == 0:
			sb.WriteString(common.MetaStyle.Render("  No posts yet") + "\n\n")
		}
		for _, p := range s.posts {
			sb.WriteString(common.PostCard(p, idx == m.cursor, m.width-2, now) + "\n\n")
			idx++
		}
	}
	sb.WriteString(common.HintStyle.Render("j/k: move  enter: open  r: refresh  b: board"))
	m.viewport.SetContent(sb.String())
}

// load fetches both sections concurrently. Each section falls back to the
// cached list when its request fails.
func load(deps common.Deps, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()

		strategies := [2]api.Strategy{api.StrategyPopular, api.StrategyRecent}
		var results [2][]api.PostSummary
		var errs [2]error

		var g errgroup.Group
		for i, strategy := range strategies {
			g.Go(func() error {
				if !force {
					if page, fresh, _ := deps.Cache.GetPostList(strategy, deps.Cfg.PostListTTL); fresh && page != nil {
						results[i] = top(page.Items)
						return nil
					}
				}
				page, err := deps.Client.ListPosts(ctx, api.PostQuery{Strategy: strategy})
				if err != nil {
					if cached, _, _ := deps.Cache.GetPostList(strategy, 0); cached != nil {
						results[i] = top(cached.Items)
						return nil
					}
					errs[i] = err
					return nil
				}
				if err := deps.Cache.PutPostList(strategy, page); err != nil {
					deps.Log().Warn("caching post list", zap.Error(err))
				}
				results[i] = top(page.Items)
				return nil
			})
		}
		g.Wait()

		msg := messages.HomeLoadedMsg{Popular: results[0], Recent: results[1]}
		for _, err := range errs {
			if err != nil {
				msg.Err = err
				break
			}
		}
		return msg
	}
}

func top(items []api.PostSummary) []api.PostSummary {
	if items == nil {
		return []api.PostSummary{}
	}
	if len(items) > perSection {
		items = items[:perSection]
	}
	return items
}
