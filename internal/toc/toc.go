// Package toc derives heading anchors and a table of contents from rendered HTML.
package toc

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// MinHeadings is the number of headings an article needs before a table of
// contents is produced.
const MinHeadings = 3

const maxSlugLen = 40

var (
	headingRe = regexp.MustCompile(`(?s)<h([23])>(.*?)</h[23]>`)
	tagRe     = regexp.MustCompile(`<[^>]+>`)
	// Runs of characters that are neither word characters nor CJK ideographs.
	nonSlugRe = regexp.MustCompile(`[^` + WordChars + `]+`)
)

// WordChars is the character-class body shared by anchor and page slugs:
// letters, digits, underscore and CJK ideographs. Combining marks are excluded.
const WordChars = `\p{L}\p{N}_\x{4e00}-\x{9fff}`

// Heading is one h2/h3 found in rendered markup.
type Heading struct {
	Level int
	// Text is the plain heading text with markup removed and entities decoded.
	Text string
	Slug string
	// raw is the tag-stripped heading text as it appears in the markup.
	raw string
}

// Index finds level 2 and 3 headings in markup and injects an id attribute
// into the first occurrence of each heading. Headings sharing level and text
// share that first anchor; headings with nested markup are listed but not
// annotated because their inner text does not match the stripped form.
func Index(markup string) (string, []Heading) {
	var headings []Heading
	for _, m := range headingRe.FindAllStringSubmatch(markup, -1) {
		raw := strings.TrimSpace(tagRe.ReplaceAllString(m[2], ""))
		if raw == "" {
			continue
		}
		level := 2
		if m[1] == "3" {
			level = 3
		}
		text := html.UnescapeString(raw)
		headings = append(headings, Heading{
			Level: level,
			Text:  text,
			Slug:  Slugify(text),
			raw:   raw,
		})
	}

	out := markup
	anchored := make(map[string]bool, len(headings))
	for _, h := range headings {
		key := fmt.Sprintf("%d:%s", h.Level, h.raw)
		if anchored[key] {
			continue
		}
		anchored[key] = true
		old := fmt.Sprintf("<h%d>%s</h%d>", h.Level, h.raw, h.Level)
		tagged := fmt.Sprintf(`<h%d id="%s">%s</h%d>`, h.Level, html.EscapeString(h.Slug), h.raw, h.Level)
		out = strings.Replace(out, old, tagged, 1)
	}
	return out, headings
}

// Slugify turns heading text into an anchor id: non-word, non-CJK runs become
// a hyphen, edge hyphens are trimmed, the result is lowercased and cut to 40
// characters.
func Slugify(text string) string {
	s := nonSlugRe.ReplaceAllString(text, "-")
	s = strings.ToLower(strings.Trim(s, "-"))
	if r := []rune(s); len(r) > maxSlugLen {
		s = string(r[:maxSlugLen])
	}
	return s
}

// Entry is one line of a table of contents.
type Entry struct {
	Text string
	Slug string
	// Level is a presentation hint; the list itself is flat.
	Level int
}

// Nested reports whether the entry sits under an h2.
func (e Entry) Nested() bool { return e.Level == 3 }

// Build returns the table of contents for headings, or nil when there are
// fewer than MinHeadings.
func Build(headings []Heading) []Entry {
	if len(headings) < MinHeadings {
		return nil
	}
	entries := make([]Entry, len(headings))
	for i, h := range headings {
		entries[i] = Entry{Text: h.Text, Slug: h.Slug, Level: h.Level}
	}
	return entries
}
