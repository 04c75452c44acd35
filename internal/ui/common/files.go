package common

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
	"github.com/kaboocam/kaboocam/internal/validate"
)

// Presigner asks the backend for an upload URL for one file.
type Presigner func(ctx context.Context, file api.FileSpec) (*api.PresignedURL, error)

// FileSpec describes img the way the presign endpoints expect.
func FileSpec(img *validate.Image) api.FileSpec {
	return api.FileSpec{FileName: img.Name, MimeType: img.MimeType}
}

// UploadImage PUTs img to a presigned URL.
func UploadImage(ctx context.Context, httpClient *http.Client, img *validate.Image, target *api.PresignedURL) error {
	f, err := os.Open(img.Path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", img.Name, err)
	}
	defer f.Close()
	return api.UploadToS3(ctx, httpClient, target.PresignedURL, img.MimeType, f, img.Size)
}

// UploadEach presigns and uploads every image in order, returning the
// object keys.
func UploadEach(ctx context.Context, httpClient *http.Client, images []*validate.Image, presign Presigner) ([]string, error) {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		target, err := presign(ctx, FileSpec(img))
		if err != nil {
			return nil, err
		}
		if err := UploadImage(ctx, httpClient, img, target); err != nil {
			return nil, err
		}
		keys = append(keys, target.ObjectKey)
	}
	return keys, nil
}

// SaveImage writes data under dir using the detected file extension.
// Characters in name other than letters, digits, dot, dash and underscore
// become underscores; the file always lands directly in dir.
func SaveImage(dir, name string, data []byte) (string, error) {
	name = safeFileName(name)
	if name == "" || strings.Trim(name, ".") == "" {
		return "", fmt.Errorf("saving image: invalid file name %q", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating image dir: %w", err)
	}
	path := filepath.Join(dir, name+mimetype.Detect(data).Extension())
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || strings.ContainsRune(rel, filepath.Separator) {
		return "", fmt.Errorf("saving image: %q escapes the image dir", name)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving image: %w", err)
	}
	return path, nil
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}

// OpenFile hands target to the desktop's default opener.
func OpenFile(target string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", target)
		case "linux":
			cmd = exec.Command("xdg-open", target)
		default:
			return messages.ToastMsg{Text: "Saved to " + target}
		}
		if err := cmd.Start(); err != nil {
			return messages.ToastMsg{Text: "Cannot open " + target, IsError: true}
		}
		go cmd.Wait()
		return messages.ToastMsg{Text: "Opened " + filepath.Base(target)}
	}
}
