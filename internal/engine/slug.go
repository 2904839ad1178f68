package engine

import (
	"regexp"
	"strings"

	"github.com/starford/kbsite/internal/models"
	"github.com/starford/kbsite/internal/toc"
)

const slugTitleLen = 30

var (
	slugStripRe = regexp.MustCompile(`[^` + toc.WordChars + `\s\p{Z}\x{0B}-]`)
	slugSpaceRe = regexp.MustCompile(`[\s\p{Z}\x{0B}]+`)
)

// Slug derives the page name for a note from the first 30 characters of its
// title plus a short ID suffix that keeps equal titles apart.
func Slug(n models.Note) string {
	title := []rune(n.Title)
	if len(title) > slugTitleLen {
		title = title[:slugTitleLen]
	}
	s := slugStripRe.ReplaceAllString(string(title), "")
	s = strings.ToLower(slugSpaceRe.ReplaceAllString(s, "-"))
	if s == "" {
		return "article-" + n.ShortID()
	}
	return s + "-" + n.ShortID()
}
