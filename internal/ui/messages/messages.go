package messages

import (
	"github.com/kaboocam/kaboocam/internal/api"
)

// View transition messages.
type (
	// NavigateMsg switches to the page registered for Path, replacing the
	// view stack when Path is a top-level tab.
	NavigateMsg struct {
		Path   string
		PostID api.ID
		Email  string
	}
	GoBackMsg       struct{}
	OpenPostMsg     struct{ PostID api.ID }
	OpenActivityMsg struct{}

	// OpenComposeMsg opens the post form. Post is nil for a new post.
	OpenComposeMsg struct{ Post *api.PostDetail }

	// OpenCommentFormMsg opens the comment form. Comment is nil for a new
	// comment.
	OpenCommentFormMsg struct {
		PostID  api.ID
		Comment *api.Comment
	}
)

// Data messages.
type (
	PostsLoadedMsg struct {
		Strategy api.Strategy
		Page     *api.PostPage
		Append   bool
		Err      error
	}

	HomeLoadedMsg struct {
		Popular []api.PostSummary
		Recent  []api.PostSummary
		Err     error
	}

	PostLoadedMsg struct {
		Post *api.PostDetail
		Err  error
	}

	ImagesLoadedMsg struct {
		PostID api.ID
		Paths  []string
		Err    error
	}

	LikeResultMsg struct {
		PostID api.ID
		Liked  bool
		Err    error
	}

	LoginResultMsg struct {
		Email string
		Err   error
	}

	CommentSavedMsg struct {
		PostID api.ID
		Err    error
	}

	CommentDeletedMsg struct {
		PostID api.ID
		Err    error
	}

	PostSavedMsg struct {
		PostID api.ID
		Err    error
	}

	PostDeletedMsg struct {
		PostID api.ID
		Err    error
	}

	ProfileLoadedMsg struct {
		Member *api.Member
		Err    error
	}

	NewActivityMsg struct {
		Unread int
	}
)

// SessionChangedMsg is sent after login, logout or account deletion.
type SessionChangedMsg struct {
	Name     string
	LoggedIn bool
}

// ToastMsg shows a transient line in the status bar.
type ToastMsg struct {
	Text    string
	IsError bool
}
