package postview

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kaboocam/kaboocam/internal/api"
	"github.com/kaboocam/kaboocam/internal/ui/common"
	"github.com/kaboocam/kaboocam/internal/ui/messages"
)

// load serves a fresh cached copy unless force is set. Posts without an
// embedded comment list get their comments fetched separately.
func load(deps common.Deps, id api.ID, force bool) tea.Cmd {
	return func() tea.Msg {
		if !force {
			if post, fresh, _ := deps.Cache.GetPost(id, deps.Cfg.PostTTL); fresh && post != nil {
				return messages.PostLoadedMsg{Post: post}
			}
		}

		ctx, cancel := deps.Context()
		defer cancel()
		post, err := deps.Client.GetPost(ctx, id)
		if err != nil {
			return messages.PostLoadedMsg{Err: err}
		}
		if post.Comments == nil {
			comments, err := deps.Client.ListComments(ctx, id)
			if err != nil {
				deps.Log().Warn("listing comments", zap.String("post", string(id)), zap.Error(err))
			}
			post.Comments = comments
		}
		if err := deps.Cache.PutPost(post); err != nil {
			deps.Log().Warn("caching post", zap.Error(err))
		}
		return messages.PostLoadedMsg{Post: post}
	}
}

// loadImages downloads the post's images through the CDN and saves them
// under the image directory so they can be opened outside the terminal.
func loadImages(deps common.Deps, post *api.PostDetail) tea.Cmd {
	id := post.PostID
	base := post.CDNBaseURL
	keys := append([]string(nil), post.ImageObjectKeys...)
	urls := append([]string(nil), post.ImageURLs...)
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()

		var datas [][]byte
		if len(keys) > 0 && base != "" {
			var err error
			datas, err = deps.CDN.FetchImages(ctx, base, keys)
			if err != nil {
				return messages.ImagesLoadedMsg{PostID: id, Err: err}
			}
		} else {
			for _, u := range urls {
				data, err := deps.CDN.FetchURL(ctx, u)
				if err != nil {
					return messages.ImagesLoadedMsg{PostID: id, Err: err}
				}
				datas = append(datas, data)
			}
		}

		paths := make([]string, 0, len(datas))
		for i, data := range datas {
			path, err := common.SaveImage(deps.Cfg.ImageDir, fmt.Sprintf("%s-%d", id, i+1), data)
			if err != nil {
				return messages.ImagesLoadedMsg{PostID: id, Err: err}
			}
			paths = append(paths, path)
		}
		return messages.ImagesLoadedMsg{PostID: id, Paths: paths}
	}
}

func toggleLike(deps common.Deps, id api.ID, like bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := deps.Context()
		defer cancel()
		var err error
		if like {
			err = deps.Client.LikePost(ctx, id)
		} else {
			err = deps.Client.UnlikePost(ctx, id)
		}
		if err == nil {
			deps.InvalidatePost(id)
		}
		return messages.LikeResultMsg{PostID: id, Liked: like, Err: err}
	}
}
