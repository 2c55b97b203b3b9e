// Package views holds the default components a site is rendered with. Sites
// that want their own markup pass a different pubstatic.ViewFuncs.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/pubstatic"
	"github.com/eringen/pubstatic/markdown"
)

// Views renders pages for one site.
type Views struct {
	cfg pubstatic.SiteConfig
}

// Default returns the bundled components for cfg.
func Default(cfg pubstatic.SiteConfig) pubstatic.ViewFuncs {
	v := &Views{cfg: cfg}
	return pubstatic.ViewFuncs{
		Post:       v.Post,
		Category:   v.Category,
		Home:       v.Home,
		Categories: v.Categories,
		NotFound:   v.NotFound,
	}
}

// htmlWriter keeps the first write error so markup can be emitted without
// checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) printf(format string, args ...any) {
	if h.err != nil {
		return
	}
	_, h.err = fmt.Fprintf(h.w, format, args...)
}

func (h *htmlWriter) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// dirHref turns a page path into a link to its directory index.
func dirHref(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

func (v *Views) layout(meta PageMeta, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		title := v.cfg.Name
		if meta.Title != "" {
			title = meta.Title + " | " + v.cfg.Name
		}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		if meta.Description != "" {
			h.raw(`<meta name="description" content="`)
			h.text(meta.Description)
			h.raw(`">`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical" href="`)
			h.text(meta.URL)
			h.raw(`"><meta property="og:url" content="`)
			h.text(meta.URL)
			h.raw(`">`)
		}
		h.raw(`<meta property="og:title" content="`)
		h.text(title)
		h.raw(`">`)
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		h.printf(`<meta property="og:type" content="%s">`, templ.EscapeString(ogType))
		h.raw(`<link rel="stylesheet" href="/style.css">`)
		h.raw(`<link rel="alternate" type="application/rss+xml" title="`)
		h.text(v.cfg.Name)
		h.raw(`" href="/feed.xml">`)
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw(`</script>`)
		}
		h.raw(`</head><body><div class="site"><header class="site-header"><a class="site-title" href="/">`)
		h.text(v.cfg.Name)
		h.raw(`</a><nav class="site-nav"><a href="/categories/">Categories</a><a href="/feed.xml">RSS</a></nav></header><main>`)
		h.render(ctx, body)
		h.raw(`</main><footer class="site-footer">`)
		if v.cfg.Author != "" {
			h.raw(`&copy; `)
			h.text(v.cfg.Author)
		}
		h.raw(`</footer></div></body></html>`)
		return h.err
	})
}

func (v *Views) categoryLinks(h *htmlWriter, categories []string) {
	if len(categories) == 0 {
		return
	}
	h.raw(`<span class="categories">`)
	for _, cat := range categories {
		h.raw(`<a href="`)
		h.text(dirHref(pubstatic.CategoryPath(cat)))
		h.raw(`">`)
		h.text(cat)
		h.raw(`</a>`)
	}
	h.raw(`</span>`)
}

func (v *Views) postList(posts []pubstatic.PostNode) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<ul class="post-list">`)
		for _, p := range posts {
			if p.Slug == "" {
				continue
			}
			h.raw(`<li><h2><a href="`)
			h.text(dirHref(p.Slug))
			h.raw(`">`)
			h.text(p.Title)
			h.raw(`</a></h2><p class="meta">`)
			if d := FormatDate(p.Date); d != "" {
				h.text(d)
				h.raw(` &middot; `)
			}
			h.printf(`%d min read `, p.TimeToRead)
			v.categoryLinks(h, p.Categories)
			h.raw(`</p>`)
			if p.Excerpt != "" {
				h.raw(`<p>`)
				h.text(p.Excerpt)
				h.raw(`</p>`)
			}
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// Home lists the latest posts.
func (v *Views) Home(latest []pubstatic.PostNode) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if v.cfg.Description != "" {
			h.raw(`<p>`)
			h.text(v.cfg.Description)
			h.raw(`</p>`)
		}
		h.raw(`<h1>Latest blog posts</h1>`)
		h.render(ctx, v.postList(latest))
		h.raw(`<p>Or check out the other posts on the <a href="/categories/">Categories</a> page.</p>`)
		return h.err
	})
	return v.layout(PageMeta{
		Description: v.cfg.Description,
		URL:         pubstatic.BuildURL(v.cfg.URL),
		OGType:      "website",
		JSONLD:      WebsiteJsonLD(v.cfg),
	}, body)
}

// Post renders a single post with links to its neighbours.
func (v *Views) Post(page pubstatic.PostPage) templ.Component {
	post := page.Post
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article><h1>`)
		h.text(post.Title)
		h.raw(`</h1><p class="meta">`)
		if d := FormatDate(post.Date); d != "" {
			h.text(d)
			h.raw(` &middot; `)
		}
		h.printf(`%d min read `, post.TimeToRead)
		v.categoryLinks(h, post.Categories)
		h.raw(`</p>`)
		h.render(ctx, markdown.Markdown(page.Body))
		h.raw(`</article><nav class="post-nav"><span>`)
		// Prev is the older post, Next the newer one.
		if p := page.Context.Prev; p != nil {
			h.raw(`<a rel="prev" href="`)
			h.text(dirHref(p.Slug))
			h.raw(`">&larr; `)
			h.text(p.Title)
			h.raw(`</a>`)
		}
		h.raw(`</span><span>`)
		if n := page.Context.Next; n != nil {
			h.raw(`<a rel="next" href="`)
			h.text(dirHref(n.Slug))
			h.raw(`">`)
			h.text(n.Title)
			h.raw(` &rarr;</a>`)
		}
		h.raw(`</span></nav>`)
		return h.err
	})
	return v.layout(PageMeta{
		Title:       post.Title,
		Description: post.Excerpt,
		URL:         pubstatic.BuildURL(v.cfg.URL, post.Slug),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(v.cfg, post),
	}, body)
}

// Category lists the posts in one category.
func (v *Views) Category(category string, posts []pubstatic.PostNode) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Category: `)
		h.text(category)
		h.raw(`</h1>`)
		h.printf(`<p class="meta">%d post(s)</p>`, len(posts))
		h.render(ctx, v.postList(posts))
		return h.err
	})
	return v.layout(PageMeta{
		Title: category,
		URL:   pubstatic.BuildURL(v.cfg.URL, pubstatic.CategoryPath(category)),
	}, body)
}

// Categories lists every category with its post count.
func (v *Views) Categories(categories []pubstatic.CategoryCount) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<h1>Categories</h1><ul class="post-list">`)
		for _, c := range categories {
			h.raw(`<li><a href="`)
			h.text(dirHref(c.Path))
			h.raw(`">`)
			h.text(c.Name)
			h.printf(`</a> <span class="meta">(%d)</span></li>`, c.Count)
		}
		h.raw(`</ul>`)
		return h.err
	})
	return v.layout(PageMeta{
		Title: "Categories",
		URL:   pubstatic.BuildURL(v.cfg.URL, "categories"),
	}, body)
}

// NotFound is written to 404.html.
func (v *Views) NotFound() templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>Not found</h1><p>This page does not exist. Go back to the <a href="/">home page</a>.</p>`)
		return err
	})
	return v.layout(PageMeta{Title: "Not found"}, body)
}
