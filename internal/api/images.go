package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func (c *Client) PostImagePresignedURL(ctx context.Context, file FileSpec) (*PresignedURL, error) {
	var out PresignedURL
	if err := c.Post(ctx, "/api/posts/images/presigned-url", file, &out); err != nil {
		return nil, fmt.Errorf("requesting upload url: %w", err)
	}
	return &out, nil
}

// PostImagesPresignedURLs requests upload URLs for images added to an
// existing post.
func (c *Client) PostImagesPresignedURLs(ctx context.Context, postID ID, files []FileSpec) ([]PresignedURL, error) {
	body := struct {
		Files []FileSpec `json:"files"`
	}{files}
	var out struct {
		URLs []PresignedURL `json:"urls"`
	}
	path := "/api/posts/" + url.PathEscape(string(postID)) + "/images/presigned-url"
	if err := c.Post(ctx, path, body, &out); err != nil {
		return nil, fmt.Errorf("requesting upload urls: %w", err)
	}
	if len(out.URLs) != len(files) {
		return nil, fmt.Errorf("requesting upload urls: got %d urls for %d files", len(out.URLs), len(files))
	}
	return out.URLs, nil
}

func (c *Client) ProfileImagePresignedURL(ctx context.Context, file FileSpec) (*PresignedURL, error) {
	var out PresignedURL
	if err := c.Post(ctx, "/api/members/images/presigned-url", file, &out); err != nil {
		return nil, fmt.Errorf("requesting profile upload url: %w", err)
	}
	return &out, nil
}

// IssueSignedCookie asks the backend to set the CDN signed cookies. The
// cookies arrive through Set-Cookie and are kept by the jar.
func (c *Client) IssueSignedCookie(ctx context.Context) error {
	if c.tokens.Token() == "" {
		return ErrNoToken
	}
	if err := c.DoWithCredentials(ctx, http.MethodPost, "/api/images/signed-cookie", nil, true, nil); err != nil {
		return fmt.Errorf("issuing signed cookie: %w", err)
	}
	return nil
}

// UploadToS3 PUTs the raw bytes to a presigned URL. The request carries no
// API credentials.
func UploadToS3(ctx context.Context, httpClient *http.Client, presignedURL, contentType string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presignedURL, body)
	if err != nil {
		return fmt.Errorf("creating upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if !isOK(resp.StatusCode) {
		return &UploadError{Status: resp.StatusCode}
	}
	return nil
}
