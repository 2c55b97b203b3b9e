package pubstatic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"
)

// ErrEmptyPath is returned when a page has no path, which happens when a
// post has neither a slug nor a title.
var ErrEmptyPath = errors.New("page path is empty")

// ErrReservedPath is returned for a page whose path lands on a file the
// build writes itself: the home page or the category index. A post whose
// title has no letters or digits gets the slug "/" and ends up here.
var ErrReservedPath = errors.New("page path is reserved")

// PostPage is everything a post template receives.
type PostPage struct {
	Post    PostNode
	Body    string
	Context PostContext
}

// NodeLookup finds the Mdx node behind a slug.
type NodeLookup interface {
	PostBySlug(ctx context.Context, slug string) (ContentNode, error)
}

// PostLister lists posts and category totals for listing pages.
type PostLister interface {
	ListPosts(ctx context.Context, category string) ([]PostNode, error)
	CategoryCounts(ctx context.Context) ([]CategoryCount, error)
}

// Renderer writes planned pages as HTML files under OutputDir. It is the
// PageCreator used by a build.
type Renderer struct {
	OutputDir string
	Views     ViewFuncs
	Nodes     NodeLookup
	Posts     PostLister
	Metrics   *Metrics
	Logger    *slog.Logger
}

// CreatePage renders one page to <OutputDir>/<path>/index.html.
func (r *Renderer) CreatePage(ctx context.Context, page Page) error {
	if page.Path == "" {
		return ErrEmptyPath
	}
	file, err := r.pageFile(page.Path)
	if err != nil {
		return err
	}
	cmp, err := r.component(ctx, page)
	if err != nil {
		return err
	}
	if err := RenderFile(ctx, file, cmp); err != nil {
		return err
	}
	r.Metrics.IncPage(page.Template)
	r.logger().Debug("Created page",
		slog.String(KeyPath, page.Path),
		slog.String(KeyTemplate, page.Template))
	return nil
}

func (r *Renderer) component(ctx context.Context, page Page) (templ.Component, error) {
	switch page.Template {
	case TemplatePost:
		pc, ok := page.Context.(PostContext)
		if !ok {
			return nil, fmt.Errorf("post page %s: unexpected context %T", page.Path, page.Context)
		}
		if r.Views.Post == nil {
			return nil, errors.New("no post view configured")
		}
		node, err := r.Nodes.PostBySlug(ctx, pc.Slug)
		if err != nil {
			return nil, fmt.Errorf("load post %s: %w", pc.Slug, err)
		}
		return r.Views.Post(PostPage{
			Post:    postFromNode(node),
			Body:    node.Body,
			Context: pc,
		}), nil
	case TemplateCategory:
		cc, ok := page.Context.(CategoryContext)
		if !ok {
			return nil, fmt.Errorf("category page %s: unexpected context %T", page.Path, page.Context)
		}
		if r.Views.Category == nil {
			return nil, errors.New("no category view configured")
		}
		posts, err := r.Posts.ListPosts(ctx, cc.Category)
		if err != nil {
			return nil, fmt.Errorf("list posts in %s: %w", cc.Category, err)
		}
		return r.Views.Category(cc.Category, posts), nil
	default:
		return nil, fmt.Errorf("unknown template %q", page.Template)
	}
}

// WriteSitePages renders the pages that exist regardless of content: the
// home page, the category index and 404.html. Views left nil are skipped.
func (r *Renderer) WriteSitePages(ctx context.Context, posts []PostNode, latest int) error {
	if r.Views.Home != nil {
		n := min(latest, len(posts))
		if latest <= 0 {
			n = len(posts)
		}
		if err := RenderFile(ctx, filepath.Join(r.OutputDir, "index.html"), r.Views.Home(posts[:n])); err != nil {
			return err
		}
	}
	if r.Views.Categories != nil {
		counts, err := r.Posts.CategoryCounts(ctx)
		if err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		if err := RenderFile(ctx, filepath.Join(r.OutputDir, "categories", "index.html"), r.Views.Categories(counts)); err != nil {
			return err
		}
	}
	if r.Views.NotFound != nil {
		if err := RenderFile(ctx, filepath.Join(r.OutputDir, "404.html"), r.Views.NotFound()); err != nil {
			return err
		}
	}
	return nil
}

// pageFile maps a URL path to its index.html under OutputDir, refusing
// paths that would escape it or overwrite a site page.
func (r *Renderer) pageFile(urlPath string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.Trim(urlPath, "/")))
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("page path %q escapes the output directory", urlPath)
	}
	if rel == "." || rel == "categories" {
		return "", fmt.Errorf("%w: %q", ErrReservedPath, urlPath)
	}
	return filepath.Join(r.OutputDir, rel, "index.html"), nil
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Render writes a templ component to w.
func Render(ctx context.Context, w io.Writer, cmp templ.Component) error {
	return cmp.Render(ctx, w)
}

// RenderFile renders a templ component into the file at path, creating
// parent directories. The file is only written when rendering succeeds.
func RenderFile(ctx context.Context, path string, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := Render(ctx, &buf, cmp); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// copyDir copies the contents of src into dst.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
