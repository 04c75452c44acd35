package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kaboocam/kaboocam/internal/api"
)

// GetPostList retrieves the cached first page for a strategy. Returns
// (page, isFresh, error); page is nil on a cache miss.
func (d *DB) GetPostList(strategy api.Strategy, ttl time.Duration) (*api.PostPage, bool, error) {
	var page api.PostPage
	fresh, err := d.getBlob(`SELECT payload, fetched_at FROM post_lists WHERE strategy = ?`, string(strategy), ttl, &page)
	if err != nil || !fresh.found {
		return nil, false, err
	}
	return &page, fresh.fresh, nil
}

// PutPostList stores the first page for a strategy.
func (d *DB) PutPostList(strategy api.Strategy, page *api.PostPage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encoding post list: %w", err)
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO post_lists (strategy, payload, fetched_at) VALUES (?, ?, ?)`,
		string(strategy), string(data), time.Now().Unix())
	return err
}

// InvalidatePostLists drops every cached listing, e.g. after a post is
// created or deleted.
func (d *DB) InvalidatePostLists() error {
	_, err := d.db.Exec(`DELETE FROM post_lists`)
	return err
}

// GetPost retrieves a cached post detail.
func (d *DB) GetPost(id api.ID, ttl time.Duration) (*api.PostDetail, bool, error) {
	var post api.PostDetail
	fresh, err := d.getBlob(`SELECT payload, fetched_at FROM posts WHERE id = ?`, string(id), ttl, &post)
	if err != nil || !fresh.found {
		return nil, false, err
	}
	return &post, fresh.fresh, nil
}

// PutPost stores a post detail.
func (d *DB) PutPost(post *api.PostDetail) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO posts (id, payload, fetched_at) VALUES (?, ?, ?)`,
		string(post.PostID), string(data), time.Now().Unix())
	return err
}

// InvalidatePost drops a cached post so the next view refetches it.
func (d *DB) InvalidatePost(id api.ID) error {
	_, err := d.db.Exec(`DELETE FROM posts WHERE id = ?`, string(id))
	return err
}

type lookup struct {
	found bool
	fresh bool
}

func (d *DB) getBlob(query string, key any, ttl time.Duration, dst any) (lookup, error) {
	var payload string
	var fetchedAt int64
	err := d.db.QueryRow(query, key).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return lookup{}, nil
	}
	if err != nil {
		return lookup{}, err
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		// Stale schema; behave like a miss.
		return lookup{}, nil
	}
	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return lookup{found: true, fresh: isFresh}, nil
}
