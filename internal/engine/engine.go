// Package engine runs an incremental sync pass: it decides per note whether
// its page must be regenerated, writes pages and the index, and persists the
// manifest for the next pass.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/kbsite/internal/checksum"
	"github.com/starford/kbsite/internal/classify"
	"github.com/starford/kbsite/internal/doctree"
	"github.com/starford/kbsite/internal/manifest"
	"github.com/starford/kbsite/internal/models"
	"github.com/starford/kbsite/internal/site"
	"github.com/starford/kbsite/internal/storage"
	"github.com/starford/kbsite/internal/toc"
)

// IndexPath is the home page location relative to the output root.
const IndexPath = "index.html"

// DefaultRecentLimit is the size of the recent-updates highlight set.
const DefaultRecentLimit = 8

// Status is the per-note outcome of a pass.
type Status string

const (
	StatusNew     Status = "new"
	StatusUpdated Status = "updated"
	StatusSkipped Status = "skipped"
)

// Options tune a pass.
type Options struct {
	// Keywords gate which notes are published at all.
	Keywords []string
	// RecentLimit caps the recent-updates set.
	RecentLimit int
	// Force regenerates every page regardless of fingerprints.
	Force bool
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// Engine runs sync passes against one output directory and manifest store.
type Engine struct {
	store     storage.Provider
	manifests manifest.Store
	composer  *site.Composer
	logger    *slog.Logger
	opts      Options
}

// New creates an Engine.
func New(store storage.Provider, manifests manifest.Store, composer *site.Composer, logger *slog.Logger, opts Options) *Engine {
	if opts.Keywords == nil {
		opts.Keywords = classify.DefaultKeywords
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: store, manifests: manifests, composer: composer, logger: logger, opts: opts}
}

// Outcome records what happened to one note.
type Outcome struct {
	Article models.Article
	Status  Status
}

// Bucket is a category with the articles assigned to it, in pass order.
type Bucket struct {
	Category models.Category
	Articles []models.Article
}

// Result summarizes a completed pass. It is not retained by the Engine.
type Result struct {
	New      int
	Updated  int
	Skipped  int
	Outcomes []Outcome
	// Buckets lists every non-empty category in listing order.
	Buckets  []Bucket
	Recent   []models.Article
	Manifest *manifest.Manifest
	SyncTime time.Time
}

// Total is the number of published articles.
func (r *Result) Total() int { return len(r.Outcomes) }

// NewIDs returns the IDs of notes rendered for the first time.
func (r *Result) NewIDs() map[string]bool {
	out := make(map[string]bool)
	for _, o := range r.Outcomes {
		if o.Status == StatusNew {
			out[o.Article.ID] = true
		}
	}
	return out
}

// Run performs one pass over notes. Any write failure aborts the pass before
// the manifest is saved, leaving the previous manifest in place.
func (e *Engine) Run(ctx context.Context, notes []models.Note) (*Result, error) {
	prev, err := e.manifests.Load()
	if err != nil {
		return nil, fmt.Errorf("engine: load manifest: %w", err)
	}
	previous := prev.Lookup()

	res := &Result{SyncTime: e.opts.Now()}
	next := manifest.Empty()
	buckets := make(map[string][]models.Article)

	for _, n := range notes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !classify.Relevant(n.Title, n.Tags, e.opts.Keywords) {
			continue
		}

		hash := checksum.Fingerprint(n.Title, n.ContentText)
		entry, seen := previous[n.ID]
		article := models.Article{
			ID:       n.ID,
			Title:    n.Title,
			Slug:     Slug(n),
			Tags:     n.Tags,
			Updated:  n.Date(),
			Category: classify.Classify(n.Title, n.Tags),
		}

		var status Status
		switch {
		case seen && entry.Hash == hash && !e.opts.Force:
			status = StatusSkipped
			if entry.Slug != "" {
				article.Slug = entry.Slug
			}
			if c, ok := entry.CategoryOf(); ok {
				article.Category = c
			}
		case seen && entry.Hash != "":
			status = StatusUpdated
		default:
			status = StatusNew
		}

		if status != StatusSkipped {
			if err := e.writeArticle(n, article); err != nil {
				return nil, err
			}
		}

		switch status {
		case StatusNew:
			res.New++
		case StatusUpdated:
			res.Updated++
		case StatusSkipped:
			res.Skipped++
		}
		e.logger.Debug("engine: note processed",
			slog.String("id", n.ID),
			slog.String("slug", article.Slug),
			slog.String("category", article.Category.Key),
			slog.String("status", string(status)))

		res.Outcomes = append(res.Outcomes, Outcome{Article: article, Status: status})
		buckets[article.Category.Key] = append(buckets[article.Category.Key], article)
		next.Notes = append(next.Notes, manifest.Entry{
			ID:          n.ID,
			Title:       n.Title,
			Slug:        article.Slug,
			Category:    article.Category.Name,
			CategoryKey: article.Category.Key,
			Hash:        hash,
		})
	}

	res.Buckets = orderBuckets(buckets, res.Outcomes)
	res.Recent = recent(res.Buckets, e.opts.RecentLimit)

	if err := e.writeIndex(res); err != nil {
		return nil, err
	}
	if err := e.ensureStylesheet(); err != nil {
		return nil, err
	}

	next.LastSync = manifest.Timestamp{Time: res.SyncTime}
	next.Stats.TotalArticles = len(next.Notes)
	for _, b := range res.Buckets {
		next.Stats.Categories[b.Category.Name] = len(b.Articles)
	}
	if err := e.manifests.Save(next); err != nil {
		return nil, fmt.Errorf("engine: save manifest: %w", err)
	}
	res.Manifest = next

	e.logger.Info("engine: sync complete",
		slog.Int("new", res.New),
		slog.Int("updated", res.Updated),
		slog.Int("skipped", res.Skipped),
		slog.Int("total", res.Total()))
	return res, nil
}

// RenderNote renders a note body with heading anchors and returns its table
// of contents (nil below the heading threshold).
func RenderNote(n models.Note) (string, []toc.Entry) {
	body, headings := toc.Index(doctree.RenderRaw(n.Content))
	return body, toc.Build(headings)
}

func (e *Engine) writeArticle(n models.Note, a models.Article) error {
	body, entries := RenderNote(n)
	page, err := e.composer.ArticlePage(a, body, entries)
	if err != nil {
		return fmt.Errorf("engine: compose %s: %w", a.Slug, err)
	}
	if err := e.store.Write(a.Path(), page); err != nil {
		return fmt.Errorf("engine: write %s: %w", a.Path(), err)
	}
	return nil
}

func (e *Engine) writeIndex(res *Result) error {
	listing := site.Listing{
		Recent:   res.Recent,
		NewIDs:   res.NewIDs(),
		Total:    res.Total(),
		SyncTime: res.SyncTime.Format("2006-01-02 15:04"),
	}
	for _, b := range res.Buckets {
		listing.Sections = append(listing.Sections, site.Section{Category: b.Category, Articles: b.Articles})
	}
	page, err := e.composer.IndexPage(listing)
	if err != nil {
		return fmt.Errorf("engine: compose index: %w", err)
	}
	if err := e.store.Write(IndexPath, page); err != nil {
		return fmt.Errorf("engine: write index: %w", err)
	}
	return nil
}

// ensureStylesheet writes the default stylesheet unless one is already present.
func (e *Engine) ensureStylesheet() error {
	ok, err := e.store.Exists(site.StylesheetPath)
	if err != nil {
		return fmt.Errorf("engine: stat stylesheet: %w", err)
	}
	if ok {
		return nil
	}
	if err := e.store.Write(site.StylesheetPath, site.Stylesheet()); err != nil {
		return fmt.Errorf("engine: write stylesheet: %w", err)
	}
	return nil
}

// orderBuckets returns non-empty buckets in listing order. Categories reused
// from an older manifest that are not part of the listing order follow at the
// end in first-seen order.
func orderBuckets(byKey map[string][]models.Article, outcomes []Outcome) []Bucket {
	var out []Bucket
	listed := make(map[string]bool)
	for _, c := range classify.Order() {
		listed[c.Key] = true
		if arts := byKey[c.Key]; len(arts) > 0 {
			out = append(out, Bucket{Category: c, Articles: arts})
		}
	}
	for _, o := range outcomes {
		c := o.Article.Category
		if listed[c.Key] {
			continue
		}
		listed[c.Key] = true
		out = append(out, Bucket{Category: c, Articles: byKey[c.Key]})
	}
	return out
}

// recent returns the n most recently updated articles across buckets.
func recent(buckets []Bucket, n int) []models.Article {
	var all []models.Article
	for _, b := range buckets {
		all = append(all, b.Articles...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Updated > all[j].Updated })
	if len(all) > n {
		all = all[:n]
	}
	return all
}
