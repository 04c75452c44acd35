package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Strategy selects the ordering of a post listing.
type Strategy string

const (
	StrategyPopular Strategy = "POPULAR"
	StrategyRecent  Strategy = "RECENT"
)

// ID is an opaque identifier. The backend may send ids as JSON numbers or
// strings; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(unquoteScalar(b))
	return nil
}

func (id ID) String() string { return string(id) }

// Code is the envelope status code, which may be a string or a number.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	*c = Code(unquoteScalar(b))
	return nil
}

func unquoteScalar(b []byte) string {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp decodes the backend's createdAt values. Zone-less values are
// taken as local time. The raw text is kept for display when parsing fails.
type Timestamp struct {
	time.Time
	Raw string
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	raw := unquoteScalar(b)
	t.Raw = raw
	t.Time = time.Time{}
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		var parsed time.Time
		var err error
		if layout == time.RFC3339Nano {
			parsed, err = time.Parse(layout, raw)
		} else {
			parsed, err = time.ParseInLocation(layout, raw, time.Local)
		}
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

type Author struct {
	Name                  string `json:"name"`
	ProfileImageURL       string `json:"profileImageUrl,omitempty"`
	ProfileImageObjectKey string `json:"profileImageObjectKey,omitempty"`
}

type Like struct {
	Count   int  `json:"count"`
	AmILike bool `json:"amILike"`
}

// PostSummary is one row of a post listing.
type PostSummary struct {
	PostID          ID        `json:"postId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CreatedAt       Timestamp `json:"createdAt"`
	Views           int       `json:"views"`
	Like            Like      `json:"like"`
	CommentCount    int       `json:"commentCount"`
	ImageObjectKeys []string  `json:"imageObjectKeys,omitempty"`
	Author          *Author   `json:"author,omitempty"`
}

// PostPage is one page of GET /api/posts. Older backends return the
// paging fields at the top level instead of under "posts"; both decode.
type PostPage struct {
	CDNBaseURL string        `json:"cdnBaseUrl"`
	Items      []PostSummary `json:"items"`
	NextCursor string        `json:"nextCursor"`
	HasNext    bool          `json:"hasNext"`
}

type pageBody struct {
	Items      []PostSummary `json:"items"`
	NextCursor ID            `json:"nextCursor"`
	HasNext    bool          `json:"hasNext"`
}

func (p *PostPage) UnmarshalJSON(b []byte) error {
	var wire struct {
		CDNBaseURL string    `json:"cdnBaseUrl"`
		Posts      *pageBody `json:"posts"`
		pageBody
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return fmt.Errorf("decoding post page: %w", err)
	}
	body := wire.pageBody
	if wire.Posts != nil {
		body = *wire.Posts
	}
	*p = PostPage{
		CDNBaseURL: wire.CDNBaseURL,
		Items:      body.Items,
		NextCursor: string(body.NextCursor),
		HasNext:    body.HasNext,
	}
	return nil
}

type Comment struct {
	CommentID ID        `json:"commentId"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
	IsOwner   bool      `json:"isOwner"`
	Author    Author    `json:"author"`
}

// PostDetail is the full post returned by GET /api/posts/{id}.
type PostDetail struct {
	PostID          ID        `json:"postId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	CDNBaseURL      string    `json:"cdnBaseUrl,omitempty"`
	ImageURLs       []string  `json:"imageUrls,omitempty"`
	ImageObjectKeys []string  `json:"imageObjectKeys,omitempty"`
	Views           int       `json:"views"`
	Likes           int       `json:"likes"`
	AmILiking       bool      `json:"amILiking"`
	CreatedAt       Timestamp `json:"createdAt"`
	IsUpdated       bool      `json:"isUpdated"`
	IsOwner         bool      `json:"isOwner"`
	Author          Author    `json:"author"`
	Comments        []Comment `json:"comments"`
}

// PostRef is what the backend returns after creating a post.
type PostRef struct {
	PostID ID `json:"postId"`
}

type NewPost struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	ImageObjectKeys []string `json:"imageObjectKeys"`
}

// PostUpdate carries edits to an existing post. The backend names the body
// field "contents" on update.
type PostUpdate struct {
	Title                  string   `json:"title"`
	Contents               string   `json:"contents"`
	AddedImageObjectKeys   []string `json:"addedImageObjectKeys"`
	RemovedImageObjectKeys []string `json:"removedImageObjectKeys"`
}

type Member struct {
	ID                    ID     `json:"id"`
	Email                 string `json:"email,omitempty"`
	Name                  string `json:"name"`
	ProfileImageObjectKey string `json:"profileImageObjectKey,omitempty"`
	ProfileImageURL       string `json:"profileImageUrl,omitempty"`
	CDNBaseURL            string `json:"cdnBaseUrl,omitempty"`
}

type Registration struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	ImageObjectKey string `json:"imageObjectKey,omitempty"`
}

type LoginResult struct {
	AccessJWT string `json:"accessJwt"`
}

// FileSpec describes a file for which a presigned upload URL is requested.
type FileSpec struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

type PresignedURL struct {
	PresignedURL string `json:"presignedUrl"`
	ObjectKey    string `json:"objectKey"`
}
