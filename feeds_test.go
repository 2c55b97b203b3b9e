package pubstatic

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"/hello-world"}, "https://example.com/hello-world/"},
		{"https://example.com/blog", []string{"categories", "go"}, "https://example.com/blog/categories/go/"},
		{"https://example.com", []string{"/categories/go/"}, "https://example.com/categories/go/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BuildURL(tt.base, tt.segments...))
	}
}

func TestWriteSitemap(t *testing.T) {
	posts := []PostNode{post("/b", 2, "go"), {ID: "undated", Slug: "/a"}}
	pages := append(PostPages(posts), CategoryPages([]string{"go"})...)

	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, "https://example.com", pages, posts))

	assert.Contains(t, buf.String(), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	var got sitemapURLSet
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []sitemapURL{
		{Loc: "https://example.com"},
		{Loc: "https://example.com/categories/"},
		{Loc: "https://example.com/b/", LastMod: "2020-01-02"},
		{Loc: "https://example.com/a/"},
		{Loc: "https://example.com/categories/go/"},
	}, got.URLs)
}

func TestWriteFeed(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://example.com", Description: "Notes"}
	posts := []PostNode{
		{Slug: "/b", Title: "B", Date: post("", 2).Date, Excerpt: "About B", Categories: []string{"go", "web"}},
		{Title: "No slug"},
		{Slug: "/a", Title: "A"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFeed(&buf, cfg, posts))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(xml.Header)))

	var got rssXML
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "2.0", got.Version)
	assert.Equal(t, "Blog", got.Channel.Title)
	assert.Equal(t, "Notes", got.Channel.Description)
	require.Len(t, got.Channel.Items, 2)

	b := got.Channel.Items[0]
	assert.Equal(t, "B", b.Title)
	assert.Equal(t, "https://example.com/b/", b.Link)
	assert.Equal(t, b.Link, b.GUID)
	assert.Equal(t, "About B", b.Description)
	assert.Equal(t, "Thu, 02 Jan 2020 00:00:00 +0000", b.PubDate)
	assert.Equal(t, []string{"go", "web"}, b.Categories)

	assert.Empty(t, got.Channel.Items[1].PubDate)
}
