package doctree

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// soleParagraphRe matches a trimmed string that is exactly one paragraph.
var soleParagraphRe = regexp.MustCompile(`^<p>(.*)</p>$`)

var unsafeSchemes = []string{"javascript:", "vbscript:", "data:"}

// RenderRaw parses data and renders it. Malformed or empty input renders as "".
func RenderRaw(data []byte) string {
	n, err := Parse(data)
	if err != nil {
		return ""
	}
	return Render(n)
}

// Render converts a document tree to HTML. It never fails: unknown kinds are
// rendered as their children with no wrapper.
func Render(n *Node) string {
	if n == nil {
		return ""
	}
	return render(n)
}

func render(n *Node) string {
	switch n.Kind {
	case KindDoc:
		return children(n)
	case KindParagraph:
		inner := children(n)
		if inner == "" {
			return ""
		}
		return "<p>" + inner + "</p>\n"
	case KindHeading:
		level := n.Attrs.Level
		if level < 1 || level > 6 {
			level = 2
		}
		return fmt.Sprintf("<h%d>%s</h%d>\n", level, children(n), level)
	case KindText:
		return renderMarks(n.Text, n.Marks)
	case KindBulletList:
		return "<ul>\n" + children(n) + "</ul>\n"
	case KindOrderedList:
		return "<ol>\n" + children(n) + "</ol>\n"
	case KindListItem:
		return "<li>" + unwrapParagraph(children(n)) + "</li>\n"
	case KindBlockquote:
		return "<blockquote>" + children(n) + "</blockquote>\n"
	case KindCodeBlock:
		var code strings.Builder
		for _, c := range n.Content {
			code.WriteString(c.Text)
		}
		return fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>\n",
			html.EscapeString(n.Attrs.Language), html.EscapeString(code.String()))
	case KindHorizontalRule:
		return "<hr>\n"
	case KindTable:
		return "<table>\n" + children(n) + "</table>\n"
	case KindTableRow:
		return "<tr>" + children(n) + "</tr>\n"
	case KindTableCell:
		return "<td>" + unwrapParagraph(children(n)) + "</td>"
	case KindTableHeader:
		return "<th>" + unwrapParagraph(children(n)) + "</th>"
	default:
		return children(n)
	}
}

func children(n *Node) string {
	var b strings.Builder
	for i := range n.Content {
		b.WriteString(render(&n.Content[i]))
	}
	return b.String()
}

// renderMarks escapes text and wraps it in each mark in list order, so the
// last mark ends up outermost.
func renderMarks(text string, marks []Mark) string {
	out := html.EscapeString(text)
	for _, m := range marks {
		switch m.Kind {
		case MarkBold:
			out = "<strong>" + out + "</strong>"
		case MarkItalic:
			out = "<em>" + out + "</em>"
		case MarkCode:
			out = "<code>" + out + "</code>"
		case MarkLink:
			out = `<a href="` + html.EscapeString(safeHref(m.Attrs.Href)) + `">` + out + "</a>"
		}
	}
	return out
}

func safeHref(href string) string {
	trimmed := strings.ToLower(strings.TrimSpace(href))
	if trimmed == "" {
		return "#"
	}
	for _, s := range unsafeSchemes {
		if strings.HasPrefix(trimmed, s) {
			return "#"
		}
	}
	return href
}

// unwrapParagraph trims inner and drops the paragraph wrapper when the whole
// string is a single one-line paragraph.
func unwrapParagraph(inner string) string {
	inner = strings.TrimSpace(inner)
	if m := soleParagraphRe.FindStringSubmatch(inner); m != nil {
		return m[1]
	}
	return inner
}
