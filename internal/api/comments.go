package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type commentBody struct {
	Content string `json:"content"`
}

// commentList accepts either a bare array or an object wrapping one.
type commentList []Comment

func (l *commentList) UnmarshalJSON(b []byte) error {
	var items []Comment
	if err := json.Unmarshal(b, &items); err == nil {
		*l = items
		return nil
	}
	var wrapped struct {
		Comments []Comment `json:"comments"`
		Items    []Comment `json:"items"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("decoding comments: %w", err)
	}
	if wrapped.Comments != nil {
		*l = wrapped.Comments
	} else {
		*l = wrapped.Items
	}
	return nil
}

func (c *Client) ListComments(ctx context.Context, postID ID) ([]Comment, error) {
	var list commentList
	if err := c.Get(ctx, "/api/posts/"+url.PathEscape(string(postID))+"/comments", nil, &list); err != nil {
		return nil, fmt.Errorf("listing comments of %s: %w", postID, err)
	}
	return list, nil
}

func (c *Client) CreateComment(ctx context.Context, postID ID, content string) error {
	path := "/api/posts/" + url.PathEscape(string(postID)) + "/comments"
	if err := c.Post(ctx, path, commentBody{Content: content}, nil); err != nil {
		return fmt.Errorf("creating comment: %w", err)
	}
	return nil
}

// Comments are addressed by their own id once created.
func (c *Client) UpdateComment(ctx context.Context, commentID ID, content string) error {
	path := "/api/posts/comments/" + url.PathEscape(string(commentID))
	if err := c.Put(ctx, path, commentBody{Content: content}, nil); err != nil {
		return fmt.Errorf("updating comment %s: %w", commentID, err)
	}
	return nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID ID) error {
	if err := c.Delete(ctx, "/api/posts/comments/"+url.PathEscape(string(commentID)), nil); err != nil {
		return fmt.Errorf("deleting comment %s: %w", commentID, err)
	}
	return nil
}
