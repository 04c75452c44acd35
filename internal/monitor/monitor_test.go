package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/cache"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

type fakeLister struct {
	mu    sync.Mutex
	items []api.PostSummary
	err   error
	calls int
}

func (f *fakeLister) ListPosts(ctx context.Context, q api.PostQuery) (*api.PostPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &api.PostPage{Items: append([]api.PostSummary(nil), f.items...)}, nil
}

func (f *fakeLister) set(items ...api.PostSummary) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func post(id, author string) api.PostSummary {
	return api.PostSummary{PostID: api.ID(id), Title: "post " + id, Content: "body of " + id, Author: &api.Author{Name: author}}
}

func newMonitor(t *testing.T, lister Lister) (*Monitor, *cache.DB) {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(lister, db, time.Hour, nil), db
}

func TestFirstPollSeedsWithoutNotifying(t *testing.T) {
	lister := &fakeLister{}
	lister.set(post("3", "a"), post("2", "b"))
	m, db := newMonitor(t, lister)
	rec := &recorder{}
	m.notifier = rec

	n, err := m.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, api.ID("3"), db.LatestSeenPost())
	assert.Zero(t, rec.count())
}

func TestPollRecordsPostsSinceLastSeen(t *testing.T) {
	lister := &fakeLister{}
	lister.set(post("2", "a"), post("1", "b"))
	m, db := newMonitor(t, lister)
	rec := &recorder{}
	m.notifier = rec
	m.self = "mina"

	_, err := m.PollOnce(context.Background())
	require.NoError(t, err)

	lister.set(post("5", "jun"), post("4", "mina"), post("3", "ara"), post("2", "a"), post("1", "b"))
	n, err := m.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, api.ID("5"), db.LatestSeenPost())

	acts, err := db.Activities(10)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, 2, db.UnreadActivityCount())

	require.Equal(t, 1, rec.count())
	assert.Equal(t, messages.NewActivityMsg{Unread: 2}, rec.msgs[0])

	n, err = m.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, rec.count())
}

func TestPollErrorLeavesStateAlone(t *testing.T) {
	lister := &fakeLister{err: errors.New("offline")}
	m, db := newMonitor(t, lister)

	_, err := m.PollOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, api.ID(""), db.LatestSeenPost())
}

func TestStartStop(t *testing.T) {
	lister := &fakeLister{}
	lister.set(post("1", "a"))
	m, _ := newMonitor(t, lister)
	m.interval = 5 * time.Millisecond

	calls := func() int {
		lister.mu.Lock()
		defer lister.mu.Unlock()
		return lister.calls
	}

	m.Start(&recorder{}, "")
	m.Start(&recorder{}, "")
	assert.True(t, m.Running())
	assert.Eventually(t, func() bool { return calls() > 0 }, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
	assert.False(t, m.Running())

	// A stopped monitor starts again after the next login.
	before := calls()
	m.Start(&recorder{}, "mina")
	assert.Eventually(t, func() bool { return calls() > before }, time.Second, 5*time.Millisecond)
	m.Stop()
}
