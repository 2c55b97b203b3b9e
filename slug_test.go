package pubstatic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKebabCase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"fooBar", "foo-bar"},
		{"__FOO_BAR__", "foo-bar"},
		{"XMLHttpRequest", "xml-http-request"},
		{"HTMLParser", "html-parser"},
		{"Crème brûlée", "creme-brulee"},
		{"React 16 is here", "react-16-is-here"},
		{"version2", "version-2"},
		{"1st place", "1st-place"},
		{"Héllo Wörld", "hello-world"},
		{"Caffè Latte", "caffe-latte"},
		{"Straße", "strasse"},
		{"don't stop", "dont-stop"},
		{"it’s fine", "its-fine"},
		{"  spaced   out  ", "spaced-out"},
		{"a/b c", "a-b-c"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, KebabCase(tt.input))
		})
	}
}

func TestKebabCaseIsIdempotent(t *testing.T) {
	for _, s := range []string{"Hello World", "fooBar", "XMLHttpRequest", "1st place", "Héllo"} {
		once := KebabCase(s)
		assert.Equal(t, once, KebabCase(once), "KebabCase(%q)", s)
	}
}

func TestDeriveSlugFromSlug(t *testing.T) {
	node := mdxNode("posts/a.mdx", Frontmatter{"slug": "Hello World"})
	field, ok := DeriveSlug(node)
	require.True(t, ok)
	assert.Equal(t, node.ID, field.NodeID)
	assert.Equal(t, SlugField, field.Name)
	assert.Equal(t, "/hello-world", field.Value)
}

func TestDeriveSlugTitleWins(t *testing.T) {
	node := mdxNode("posts/a.mdx", Frontmatter{"slug": "a", "title": "B C"})
	field, ok := DeriveSlug(node)
	require.True(t, ok)
	assert.Equal(t, "/b-c", field.Value)
}

func TestDeriveSlugFromTitleOnly(t *testing.T) {
	field, ok := DeriveSlug(mdxNode("posts/a.mdx", Frontmatter{"title": "Getting Started with Go"}))
	require.True(t, ok)
	assert.Equal(t, "/getting-started-with-go", field.Value)
}

func TestDeriveSlugWithoutSlugOrTitle(t *testing.T) {
	field, ok := DeriveSlug(mdxNode("posts/a.mdx", Frontmatter{"date": "2020-01-01"}))
	require.True(t, ok, "Mdx nodes always get the field")
	assert.Nil(t, field.Value)
}

func TestDeriveSlugNilFrontmatter(t *testing.T) {
	node := mdxNode("posts/a.mdx", nil)
	field, ok := DeriveSlug(node)
	require.True(t, ok)
	assert.Nil(t, field.Value)
}

func TestDeriveSlugPresentButEmpty(t *testing.T) {
	// A key that is present but null still counts.
	field, ok := DeriveSlug(mdxNode("posts/a.mdx", Frontmatter{"title": nil}))
	require.True(t, ok)
	assert.Equal(t, "/", field.Value)
}

func TestDeriveSlugNonStringValues(t *testing.T) {
	tests := []struct {
		name  string
		title any
		want  string
	}{
		{"int", 2024, "/2024"},
		{"bool", true, "/true"},
		{"date", time.Date(2020, 5, 17, 0, 0, 0, 0, time.UTC), "/2020-05-17"},
		{"list", []any{"Go", "Rust"}, "/go-rust"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := DeriveSlug(mdxNode("posts/a.mdx", Frontmatter{"title": tt.title}))
			require.True(t, ok)
			assert.Equal(t, tt.want, field.Value)
		})
	}
}

func TestDeriveSlugIgnoresOtherKinds(t *testing.T) {
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})
	node.Internal.Type = KindFile
	_, ok := DeriveSlug(node)
	assert.False(t, ok)
}
