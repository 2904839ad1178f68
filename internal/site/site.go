// Package site composes the HTML chrome around rendered article content.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/starford/kbsite/internal/classify"
	"github.com/starford/kbsite/internal/models"
	"github.com/starford/kbsite/internal/toc"
)

// StylesheetPath is the stylesheet location relative to the site root.
const StylesheetPath = "styles.css"

const (
	articleTagLimit = 8
	cardTagLimit    = 4
)

//go:embed templates/*.tmpl templates/styles.css
var assets embed.FS

var templates = template.Must(template.ParseFS(assets, "templates/*.tmpl"))

// Composer renders full pages.
type Composer struct {
	SiteTitle   string
	Description string
}

// NewComposer returns a Composer with the given site title.
func NewComposer(title, description string) *Composer {
	return &Composer{SiteTitle: title, Description: description}
}

type articleView struct {
	SiteTitle string
	Title     string
	Category  models.Category
	Updated   string
	Tags      []string
	Nav       []models.Category
	TOC       []toc.Entry
	Content   template.HTML
}

// ArticlePage wraps rendered content (already heading-indexed) in the article chrome.
func (c *Composer) ArticlePage(a models.Article, content string, entries []toc.Entry) ([]byte, error) {
	view := articleView{
		SiteTitle: c.SiteTitle,
		Title:     a.Title,
		Category:  a.Category,
		Updated:   a.Updated,
		Tags:      limit(a.Tags, articleTagLimit),
		Nav:       []models.Category{classify.Buddhism, classify.Thinking, classify.AI, classify.Claude, classify.Game},
		TOC:       entries,
		// Content comes from doctree.Render, which escapes all literal text.
		Content: template.HTML(content),
	}
	return execute("article.html.tmpl", view)
}

// Listing is the aggregated input of the index page.
type Listing struct {
	Sections []Section
	Recent   []models.Article
	NewIDs   map[string]bool
	Total    int
	SyncTime string
}

// Section is one category bucket.
type Section struct {
	Category models.Category
	Articles []models.Article
}

type card struct {
	models.Article
	New         bool
	CardTags    []string
	SearchTitle string
	SearchTags  string
}

type sectionView struct {
	Category models.Category
	Count    int
	Cards    []card
}

type indexView struct {
	SiteTitle   string
	Description string
	Total       int
	SyncTime    string
	Recent      []card
	Sections    []sectionView
}

// IndexPage renders the home page. Empty sections are omitted; cards within a
// section are ordered by updated date, newest first.
func (c *Composer) IndexPage(l Listing) ([]byte, error) {
	view := indexView{
		SiteTitle:   c.SiteTitle,
		Description: c.Description,
		Total:       l.Total,
		SyncTime:    l.SyncTime,
	}
	for _, a := range l.Recent {
		view.Recent = append(view.Recent, newCard(a, l.NewIDs))
	}
	for _, s := range l.Sections {
		if len(s.Articles) == 0 {
			continue
		}
		arts := append([]models.Article(nil), s.Articles...)
		sort.SliceStable(arts, func(i, j int) bool { return arts[i].Updated > arts[j].Updated })
		sv := sectionView{Category: s.Category, Count: len(arts)}
		for _, a := range arts {
			sv.Cards = append(sv.Cards, newCard(a, l.NewIDs))
		}
		view.Sections = append(view.Sections, sv)
	}
	return execute("index.html.tmpl", view)
}

// Stylesheet returns the default stylesheet.
func Stylesheet() []byte {
	data, err := assets.ReadFile("templates/styles.css")
	if err != nil {
		panic(fmt.Sprintf("site: embedded stylesheet missing: %v", err))
	}
	return data
}

func newCard(a models.Article, newIDs map[string]bool) card {
	return card{
		Article:     a,
		New:         newIDs[a.ID],
		CardTags:    limit(a.Tags, cardTagLimit),
		SearchTitle: strings.ToLower(a.Title),
		SearchTags:  strings.ToLower(strings.Join(a.Tags, ",")),
	}
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("site: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func limit(tags []string, n int) []string {
	if len(tags) > n {
		return tags[:n]
	}
	return tags
}
