package pubstatic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuerier struct {
	fakeQuerier
	calls int
}

func (c *countingQuerier) QueryPosts(ctx context.Context, kind string) QueryResult {
	c.calls++
	return c.fakeQuerier.QueryPosts(ctx, kind)
}

func TestQueryCacheServesFromMemory(t *testing.T) {
	src := &countingQuerier{fakeQuerier: fakeQuerier{result: QueryResult{Posts: []PostNode{post("/a", 1, "go")}}}}
	c := NewQueryCache(src, time.Minute)
	ctx := context.Background()

	for range 3 {
		res := c.QueryPosts(ctx, KindMdx)
		require.Empty(t, res.Errors)
		require.Len(t, res.Posts, 1)
	}
	assert.Equal(t, 1, src.calls)

	c.Invalidate()
	c.QueryPosts(ctx, KindMdx)
	assert.Equal(t, 2, src.calls)
}

func TestQueryCacheExpires(t *testing.T) {
	src := &countingQuerier{}
	c := NewQueryCache(src, time.Nanosecond)
	ctx := context.Background()

	c.QueryPosts(ctx, KindMdx)
	time.Sleep(time.Millisecond)
	c.QueryPosts(ctx, KindMdx)
	assert.Equal(t, 2, src.calls)
}

func TestQueryCacheDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &countingQuerier{fakeQuerier: fakeQuerier{result: QueryResult{Errors: []error{boom}}}}
	c := NewQueryCache(src, time.Minute)
	ctx := context.Background()

	res := c.QueryPosts(ctx, KindMdx)
	assert.Equal(t, []error{boom}, res.Errors)

	_, err := c.ListPosts(ctx, "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, src.calls)
}

func TestQueryCacheOtherKindsPassThrough(t *testing.T) {
	src := &countingQuerier{}
	c := NewQueryCache(src, time.Minute)
	c.QueryPosts(context.Background(), KindFile)
	c.QueryPosts(context.Background(), KindFile)
	assert.Equal(t, 2, src.calls)
	assert.Equal(t, []string{KindFile, KindFile}, src.kinds)
}

func TestListPostsByCategory(t *testing.T) {
	posts := []PostNode{post("/a", 3, "go", "web"), post("/b", 2, "web"), post("/c", 1)}
	c := NewQueryCache(&fakeQuerier{result: QueryResult{Posts: posts}}, time.Minute)
	ctx := context.Background()

	all, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	web, err := c.ListPosts(ctx, "web")
	require.NoError(t, err)
	require.Len(t, web, 2)
	assert.Equal(t, "/a", web[0].Slug)
	assert.Equal(t, "/b", web[1].Slug)

	none, err := c.ListPosts(ctx, "rust")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCategoryCounts(t *testing.T) {
	posts := []PostNode{post("/a", 3, "Go", "web"), post("/b", 2, "web")}
	c := NewQueryCache(&fakeQuerier{result: QueryResult{Posts: posts}}, time.Minute)

	counts, err := c.CategoryCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CategoryCount{
		{Name: "Go", Path: "/categories/go", Count: 1},
		{Name: "web", Path: "/categories/web", Count: 2},
	}, counts)
}
