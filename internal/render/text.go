package render

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	xhtml "golang.org/x/net/html"
)

// PlainText converts user supplied text that may carry markup into plain
// text. Tags are dropped, entities are decoded, script and style bodies
// are discarded, and link targets are kept in brackets.
func PlainText(raw string, width int) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var skip int
	var anchorURL string

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return Wrap(strings.TrimSpace(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if tt == xhtml.StartTagToken {
					skip++
				}
			case "br":
				sb.WriteString("\n")
			case "p", "div", "li":
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						anchorURL = attr.Val
					}
				}
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "a":
				if anchorURL != "" && !strings.HasSuffix(strings.TrimSpace(sb.String()), anchorURL) {
					sb.WriteString(" [")
					sb.WriteString(anchorURL)
					sb.WriteString("]")
				}
				anchorURL = ""
			}

		case xhtml.TextToken:
			if skip == 0 {
				sb.WriteString(tokenizer.Token().Data)
			}
		}
	}
}

// Summary returns the first n runes of s followed by "..." when s is
// longer. Line breaks are folded into spaces.
func Summary(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Truncate cuts s to at most width terminal cells.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// Wrap performs word wrapping to the given terminal width. Wide runes
// count as two cells. Words longer than a line are split.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var result strings.Builder
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}
		lineLen := 0
		for i, word := range words {
			wlen := runewidth.StringWidth(word)
			if i > 0 && lineLen+1+wlen > width {
				result.WriteString("\n")
				lineLen = 0
			} else if i > 0 {
				result.WriteString(" ")
				lineLen++
			}
			for wlen > width {
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					_, size := utf8.DecodeRuneInString(word)
					head = word[:size]
				}
				result.WriteString(head)
				result.WriteString("\n")
				word = word[len(head):]
				wlen = runewidth.StringWidth(word)
			}
			result.WriteString(word)
			lineLen += wlen
		}
		result.WriteString("\n")
	}
	return strings.TrimRight(result.String(), "\n")
}
