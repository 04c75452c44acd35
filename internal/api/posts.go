package api

import (
	"context"
	"fmt"
	"net/url"
)

// PostQuery selects a page of posts. A cursor continues an earlier listing
// and takes precedence over the strategy.
type PostQuery struct {
	Strategy Strategy
	Cursor   string
}

func (q PostQuery) params() url.Values {
	if q.Cursor != "" {
		return url.Values{"cursor": {q.Cursor}}
	}
	strategy := q.Strategy
	if strategy == "" {
		strategy = StrategyRecent
	}
	return url.Values{"strategy": {string(strategy)}}
}

func (c *Client) ListPosts(ctx context.Context, q PostQuery) (*PostPage, error) {
	var page PostPage
	if err := c.Get(ctx, "/api/posts", q.params(), &page); err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return &page, nil
}

func (c *Client) GetPost(ctx context.Context, id ID) (*PostDetail, error) {
	var post PostDetail
	if err := c.Get(ctx, "/api/posts/"+url.PathEscape(string(id)), nil, &post); err != nil {
		return nil, fmt.Errorf("fetching post %s: %w", id, err)
	}
	if post.PostID == "" {
		post.PostID = id
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, p NewPost) (*PostRef, error) {
	if p.ImageObjectKeys == nil {
		p.ImageObjectKeys = []string{}
	}
	var ref PostRef
	if err := c.Post(ctx, "/api/posts", p, &ref); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}
	return &ref, nil
}

func (c *Client) UpdatePost(ctx context.Context, id ID, u PostUpdate) error {
	if u.AddedImageObjectKeys == nil {
		u.AddedImageObjectKeys = []string{}
	}
	if u.RemovedImageObjectKeys == nil {
		u.RemovedImageObjectKeys = []string{}
	}
	if err := c.Put(ctx, "/api/posts/"+url.PathEscape(string(id)), u, nil); err != nil {
		return fmt.Errorf("updating post %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeletePost(ctx context.Context, id ID) error {
	if err := c.Delete(ctx, "/api/posts/"+url.PathEscape(string(id)), nil); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

func (c *Client) LikePost(ctx context.Context, id ID) error {
	if err := c.Post(ctx, "/api/posts/"+url.PathEscape(string(id))+"/likes", nil, nil); err != nil {
		return fmt.Errorf("liking post %s: %w", id, err)
	}
	return nil
}

func (c *Client) UnlikePost(ctx context.Context, id ID) error {
	if err := c.Delete(ctx, "/api/posts/"+url.PathEscape(string(id))+"/likes", nil); err != nil {
		return fmt.Errorf("unliking post %s: %w", id, err)
	}
	return nil
}
