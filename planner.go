package pubstatic

import (
	"context"
	"fmt"
	"strings"
)

// PostQuerier returns every node of kind sorted by frontmatter date,
// newest first. Problems found while building the result are reported in
// QueryResult.Errors rather than as a Go error.
type PostQuerier interface {
	QueryPosts(ctx context.Context, kind string) QueryResult
}

// PageCreator consumes planned pages.
type PageCreator interface {
	CreatePage(ctx context.Context, page Page) error
}

// QueryFailure is returned by PlanPages when the query reported errors.
type QueryFailure struct {
	Errors []error
}

func (e *QueryFailure) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("query failed with %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the underlying query errors to errors.Is and errors.As.
func (e *QueryFailure) Unwrap() []error {
	return e.Errors
}

// PlanPages queries all Mdx posts and returns one page per post followed by
// one page per distinct category. Any query error aborts planning and no
// pages are returned.
func PlanPages(ctx context.Context, q PostQuerier) ([]Page, []PostNode, error) {
	res := q.QueryPosts(ctx, KindMdx)
	if len(res.Errors) > 0 {
		return nil, nil, &QueryFailure{Errors: res.Errors}
	}
	posts := res.Posts
	pages := PostPages(posts)
	pages = append(pages, CategoryPages(DistinctCategories(posts))...)
	return pages, posts, nil
}

// PostPages builds a page per post. posts must be sorted newest first: Prev
// points at posts[i+1] and Next at posts[i-1].
func PostPages(posts []PostNode) []Page {
	pages := make([]Page, 0, len(posts))
	for i := range posts {
		var prev, next *PostNode
		if i < len(posts)-1 {
			p := posts[i+1]
			prev = &p
		}
		if i > 0 {
			n := posts[i-1]
			next = &n
		}
		pages = append(pages, Page{
			Path:     posts[i].Slug,
			Template: TemplatePost,
			Context: PostContext{
				Slug: posts[i].Slug,
				Prev: prev,
				Next: next,
			},
		})
	}
	return pages
}

// DistinctCategories returns every category used by posts, deduplicated, in
// the order each was first seen.
func DistinctCategories(posts []PostNode) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range posts {
		for _, c := range p.Categories {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// CategoryPages builds a page per category under /categories/.
func CategoryPages(categories []string) []Page {
	pages := make([]Page, 0, len(categories))
	for _, c := range categories {
		pages = append(pages, Page{
			Path:     CategoryPath(c),
			Template: TemplateCategory,
			Context:  CategoryContext{Category: c},
		})
	}
	return pages
}

// CategoryPath returns the page path of a category.
func CategoryPath(category string) string {
	return "/categories/" + KebabCase(category)
}

// Apply hands pages to creator in order and stops at the first error.
func Apply(ctx context.Context, pages []Page, creator PageCreator) error {
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := creator.CreatePage(ctx, p); err != nil {
			return fmt.Errorf("create page %q: %w", p.Path, err)
		}
	}
	return nil
}
