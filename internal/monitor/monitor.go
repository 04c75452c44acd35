package monitor

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/render"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

const previewLen = 120

// Notifier receives activity messages. *tea.Program satisfies it.
type Notifier interface {
	Send(msg tea.Msg)
}

// Lister fetches a page of posts.
type Lister interface {
	ListPosts(ctx context.Context, q api.PostQuery) (*api.PostPage, error)
}

// Monitor polls the recent board for posts published by other members.
type Monitor struct {
	lister   Lister
	cache    *cache.DB
	logger   *zap.Logger
	interval time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	notifier Notifier
	self     string
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a new background monitor.
func New(lister Lister, db *cache.DB, interval time.Duration, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		lister:   lister,
		cache:    db,
		logger:   logger,
		interval: interval,
		timeout:  15 * time.Second,
	}
}

// Start begins the background polling loop. Posts written by self are
// recorded as seen but never reported. Starting a running monitor is a
// no-op; a stopped monitor can be started again.
func (m *Monitor) Start(notifier Notifier, self string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopCh != nil {
		return
	}
	m.notifier = notifier
	m.self = self
	m.stopCh = make(chan struct{})
	m.wg.Add(1)
	go m.loop(m.stopCh)
}

// Stop halts the background polling and waits for the loop to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// Running reports whether the polling loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCh != nil
}

func (m *Monitor) loop(stop <-chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.poll()
		}
	}
}

func (m *Monitor) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if _, err := m.PollOnce(ctx); err != nil {
		m.logger.Debug("activity poll failed", zap.Error(err))
	}
}

// PollOnce fetches the newest posts and records the ones published since
// the last poll. The first poll only remembers where the board stands.
// It returns the number of newly recorded posts.
func (m *Monitor) PollOnce(ctx context.Context) (int, error) {
	page, err := m.lister.ListPosts(ctx, api.PostQuery{Strategy: api.StrategyRecent})
	if err != nil {
		return 0, err
	}
	if err := m.cache.PutPostList(api.StrategyRecent, page); err != nil {
		m.logger.Warn("caching recent posts", zap.Error(err))
	}
	if len(page.Items) == 0 {
		return 0, nil
	}

	lastSeen := m.cache.LatestSeenPost()
	newest := page.Items[0].PostID
	if lastSeen == "" {
		return 0, m.cache.SetLatestSeenPost(newest)
	}

	added := 0
	for _, p := range page.Items {
		if p.PostID == lastSeen {
			break
		}
		author := ""
		if p.Author != nil {
			author = p.Author.Name
		}
		if m.self != "" && author == m.self {
			continue
		}
		err := m.cache.AddActivity(cache.Activity{
			PostID:    p.PostID,
			Title:     p.Title,
			Author:    author,
			Preview:   render.Summary(p.Content, previewLen),
			CreatedAt: p.CreatedAt.Time,
		})
		if err != nil {
			return added, err
		}
		added++
	}

	if err := m.cache.SetLatestSeenPost(newest); err != nil {
		return added, err
	}
	if added > 0 && m.notifier != nil {
		m.notifier.Send(messages.NewActivityMsg{Unread: m.cache.UnreadActivityCount()})
	}
	return added, nil
}
