package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdMu        sync.Mutex
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// Markdown renders post bodies for the terminal. It falls back to wrapped
// plain text when rendering fails.
func Markdown(text string, width int) string {
	plain := PlainText(text, 0)
	if width <= 0 {
		width = 80
	}
	mdMu.Lock()
	defer mdMu.Unlock()
	r, err := renderer(width)
	if err != nil {
		return Wrap(plain, width)
	}
	out, err := r.Render(plain)
	if err != nil {
		return Wrap(plain, width)
	}
	return strings.Trim(out, "\n")
}

// renderer must be called with mdMu held; a TermRenderer is not safe for
// concurrent use.
func renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := mdRenderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return nil, err
	}
	mdRenderers[width] = r
	return r, nil
}
