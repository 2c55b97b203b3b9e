package pubstatic

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *NodeStore {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "nodes.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func mdxNode(rel string, fm Frontmatter) ContentNode {
	return ContentNode{
		ID:          NodeID(KindMdx, rel),
		Parent:      NodeID(KindFile, rel),
		Internal:    NodeInternal{Type: KindMdx, MediaType: "text/mdx", ContentDigest: "digest-" + rel},
		Frontmatter: fm,
		Fields:      map[string]any{},
		Body:        "Body of " + rel,
		SourcePath:  rel,
		Excerpt:     "Excerpt of " + rel,
		TimeToRead:  1,
	}
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	require.NotNil(t, s)
	assert.NotNil(t, s.db)
}

func TestSaveAndGetNode(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A", "categories": []any{"go"}})
	require.NoError(t, s.SaveNode(ctx, node))

	got, err := s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.ID, got.ID)
	assert.Equal(t, node.Parent, got.Parent)
	assert.Equal(t, node.Internal, got.Internal)
	assert.Equal(t, node.Body, got.Body)
	assert.Equal(t, node.SourcePath, got.SourcePath)
	assert.Equal(t, "A", got.Frontmatter["title"])
	assert.Equal(t, []any{"go"}, got.Frontmatter["categories"])
}

func TestGetNodeNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetNode(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSetField(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})
	require.NoError(t, s.SaveNode(ctx, node))

	require.NoError(t, s.SetField(ctx, NodeField{NodeID: node.ID, Name: SlugField, Value: "/a"}))
	got, err := s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a", got.Fields[SlugField])

	require.NoError(t, s.SetField(ctx, NodeField{NodeID: node.ID, Name: SlugField, Value: nil}))
	got, err = s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	v, ok := got.Fields[SlugField]
	assert.True(t, ok, "null field should still be present")
	assert.Nil(t, v)
}

func TestSetFieldMissingNode(t *testing.T) {
	s := setupTestStore(t)
	err := s.SetField(context.Background(), NodeField{NodeID: "missing", Name: SlugField, Value: "/x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostBySlug(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})
	require.NoError(t, s.SaveNode(ctx, node))
	require.NoError(t, s.SetField(ctx, NodeField{NodeID: node.ID, Name: SlugField, Value: "/a"}))

	got, err := s.PostBySlug(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, node.ID, got.ID)

	_, err = s.PostBySlug(ctx, "/b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryPostsOrdersByDateDescending(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	nodes := []ContentNode{
		mdxNode("posts/old.mdx", Frontmatter{"title": "Old", "date": "2020-01-01"}),
		mdxNode("posts/undated.mdx", Frontmatter{"title": "Undated"}),
		mdxNode("posts/new.mdx", Frontmatter{"title": "New", "date": "2022-06-01"}),
		mdxNode("posts/mid.mdx", Frontmatter{"title": "Mid", "date": "2021-03-15", "categories": []any{"a", "b"}}),
	}
	for _, n := range nodes {
		require.NoError(t, s.SaveNode(ctx, n))
	}
	file := ContentNode{ID: NodeID(KindFile, "img.png"), Internal: NodeInternal{Type: KindFile}, SourcePath: "img.png"}
	require.NoError(t, s.SaveNode(ctx, file))

	res := s.QueryPosts(ctx, KindMdx)
	require.Empty(t, res.Errors)
	require.Len(t, res.Posts, 4)

	var titles []string
	for _, p := range res.Posts {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"New", "Mid", "Old", "Undated"}, titles)
	assert.Equal(t, []string{"a", "b"}, res.Posts[1].Categories)
	assert.Equal(t, "Excerpt of posts/mid.mdx", res.Posts[1].Excerpt)
	assert.True(t, res.Posts[3].Date.IsZero())
}

func TestQueryPostsReportsUndecodableRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	good := mdxNode("posts/good.mdx", Frontmatter{"title": "Good"})
	bad := mdxNode("posts/bad.mdx", Frontmatter{"title": "Bad"})
	require.NoError(t, s.SaveNode(ctx, good))
	require.NoError(t, s.SaveNode(ctx, bad))

	_, err := s.db.Exec(`UPDATE nodes SET frontmatter = 'not json' WHERE id = ?`, bad.ID)
	require.NoError(t, err)

	res := s.QueryPosts(ctx, KindMdx)
	assert.Len(t, res.Errors, 1)
	assert.Len(t, res.Posts, 1)
}

func TestNodeDigestsAndDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := mdxNode("posts/a.mdx", Frontmatter{})
	b := mdxNode("posts/b.mdx", Frontmatter{})
	require.NoError(t, s.SaveNode(ctx, a))
	require.NoError(t, s.SaveNode(ctx, b))

	digests, err := s.NodeDigests(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		a.ID: "digest-posts/a.mdx",
		b.ID: "digest-posts/b.mdx",
	}, digests)

	require.NoError(t, s.DeleteNode(ctx, a.ID))
	digests, err = s.NodeDigests(ctx)
	require.NoError(t, err)
	assert.Len(t, digests, 1)
	assert.Contains(t, digests, b.ID)
}

func TestSaveNodeReplacesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})
	require.NoError(t, s.SaveNode(ctx, node))
	require.NoError(t, s.SetField(ctx, NodeField{NodeID: node.ID, Name: SlugField, Value: "/a"}))

	require.NoError(t, s.SaveNode(ctx, node))
	got, err := s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Fields, SlugField)
}

func TestQueryPostsKeepsWholeNumbers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/n.mdx", Frontmatter{"title": 1000000, "categories": []any{1000000, 2019, 1.5}})
	require.NoError(t, s.SaveNode(ctx, node))

	res := s.QueryPosts(ctx, KindMdx)
	require.Empty(t, res.Errors)
	require.Len(t, res.Posts, 1)
	assert.Equal(t, "1000000", res.Posts[0].Title)
	assert.Equal(t, []string{"1000000", "2019", "1.5"}, res.Posts[0].Categories)

	got, err := s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000000", stringifyValue(got.Frontmatter["title"]))
}

func TestSaveNodeWithFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})

	require.NoError(t, s.SaveNodeWithFields(ctx, node, NodeField{NodeID: node.ID, Name: SlugField, Value: "/a"}))
	got, err := s.GetNode(ctx, node.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a", got.Fields[SlugField])
}

func TestSaveNodeWithFieldsRollsBackOnFieldError(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	node := mdxNode("posts/a.mdx", Frontmatter{"title": "A"})

	err := s.SaveNodeWithFields(ctx, node, NodeField{NodeID: node.ID, Name: SlugField, Value: make(chan int)})
	require.Error(t, err)

	_, err = s.GetNode(ctx, node.ID)
	assert.ErrorIs(t, err, ErrNotFound, "node must not be stored without its fields")
	digests, err := s.NodeDigests(ctx)
	require.NoError(t, err)
	assert.Empty(t, digests)
}
