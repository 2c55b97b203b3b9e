package pubstatic

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested node does not exist.
var ErrNotFound = sql.ErrNoRows

// QueryCache is an in-memory cache of the Mdx post query with TTL. The
// renderer asks for category listings once per category page, so the
// result is shared instead of re-querying the store each time.
type QueryCache struct {
	mu      sync.RWMutex
	posts   []PostNode
	fetched time.Time
	ttl     time.Duration
	source  PostQuerier
}

// NewQueryCache creates a QueryCache backed by source.
func NewQueryCache(source PostQuerier, ttl time.Duration) *QueryCache {
	return &QueryCache{source: source, ttl: ttl}
}

func (c *QueryCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *QueryCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *QueryCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	res := c.source.QueryPosts(ctx, KindMdx)
	if len(res.Errors) > 0 {
		return &QueryFailure{Errors: res.Errors}
	}
	c.posts = res.Posts
	if c.posts == nil {
		c.posts = []PostNode{}
	}
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *QueryCache) ensureLoaded(ctx context.Context) ([]PostNode, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// QueryPosts serves the cached result for the Mdx kind and delegates any
// other kind to the source.
func (c *QueryCache) QueryPosts(ctx context.Context, kind string) QueryResult {
	if kind != KindMdx {
		return c.source.QueryPosts(ctx, kind)
	}
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		var qf *QueryFailure
		if errors.As(err, &qf) {
			return QueryResult{Errors: qf.Errors}
		}
		return QueryResult{Errors: []error{err}}
	}
	return QueryResult{Posts: posts}
}

// ListPosts returns posts, newest first, optionally filtered to those listing
// category.
func (c *QueryCache) ListPosts(ctx context.Context, category string) ([]PostNode, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return posts, nil
	}
	var filtered []PostNode
	for _, p := range posts {
		for _, cat := range p.Categories {
			if cat == category {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// CategoryCounts returns the number of posts per category in first-seen order.
func (c *QueryCache) CategoryCounts(ctx context.Context) ([]CategoryCount, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, p := range posts {
		for _, cat := range p.Categories {
			counts[cat]++
		}
	}
	cats := DistinctCategories(posts)
	out := make([]CategoryCount, len(cats))
	for i, cat := range cats {
		out[i] = CategoryCount{Name: cat, Path: CategoryPath(cat), Count: counts[cat]}
	}
	return out, nil
}

// CategoryCount is a category with the number of posts listing it.
type CategoryCount struct {
	Name  string
	Path  string
	Count int
}
