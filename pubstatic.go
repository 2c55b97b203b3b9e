// Package pubstatic is a static blog generator built with Go and templ.
// It ingests Markdown and MDX files, derives a slug for every post, plans
// one page per post and one per category, and renders them to a directory
// that any static file server (including the built-in one) can serve.
//
// Users provide their own templ components via the ViewFuncs struct;
// pubstatic handles ingestion, the node store, page planning and output.
package pubstatic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ViewFuncs holds the templ components used to render pages. This is the
// inversion-of-control mechanism that lets users own all templates.
type ViewFuncs struct {
	Post       func(page PostPage) templ.Component
	Category   func(category string, posts []PostNode) templ.Component
	Home       func(latest []PostNode) templ.Component
	Categories func(categories []CategoryCount) templ.Component
	NotFound   func() templ.Component
}

// App wires together the node store, query cache, renderer and server.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *NodeStore
	Cache  *QueryCache
	Views  ViewFuncs

	logger    *slog.Logger
	metrics   *Metrics
	staticDir string
	routed    bool
}

// BuildOptions tunes a single build.
type BuildOptions struct {
	// Force re-ingests every file even when its digest is unchanged.
	Force bool
}

// BuildReport summarizes a finished build.
type BuildReport struct {
	Ingest     IngestStats
	Posts      int
	Categories int
	Pages      int
}

// New creates a pubstatic App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "static",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}
	return a
}

// Metrics returns the recorder the App reports to.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// open initializes the store and cache on first use.
func (a *App) open() error {
	if a.Store != nil {
		return nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("pubstatic: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewQueryCache(store, a.Config.QueryCacheTTL)
	return nil
}

// Plan ingests the content directory and returns the planned pages without
// rendering anything.
func (a *App) Plan(ctx context.Context, opts BuildOptions) ([]Page, error) {
	if err := a.open(); err != nil {
		return nil, err
	}
	if _, err := a.ingest(ctx, opts); err != nil {
		return nil, err
	}
	pages, _, err := a.plan(ctx)
	return pages, err
}

// Build ingests content, plans pages and renders the site into OutputDir.
func (a *App) Build(ctx context.Context, opts BuildOptions) (report BuildReport, err error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveBuild(time.Since(start), err)
	}()

	if err := a.open(); err != nil {
		return report, err
	}
	a.logger.Info("Starting build",
		slog.String("content_dir", a.Config.ContentDir),
		slog.String("output_dir", a.Config.OutputDir))

	stats, err := a.ingest(ctx, opts)
	if err != nil {
		return report, err
	}
	report.Ingest = stats

	pages, posts, err := a.plan(ctx)
	if err != nil {
		return report, err
	}
	report.Posts = len(posts)
	report.Categories = len(pages) - len(posts)

	if err := a.prepareOutput(); err != nil {
		return report, err
	}

	r := a.renderer()
	if err := Apply(ctx, pages, r); err != nil {
		return report, err
	}
	if err := r.WriteSitePages(ctx, posts, a.Config.LatestPosts); err != nil {
		return report, err
	}
	if err := a.writeFeeds(pages, posts); err != nil {
		return report, err
	}
	report.Pages = len(pages)

	a.logger.Info("Build completed",
		slog.Int("posts", report.Posts),
		slog.Int("categories", report.Categories),
		slog.Int("pages", report.Pages),
		durationAttr(time.Since(start)))
	return report, nil
}

func (a *App) ingest(ctx context.Context, opts BuildOptions) (IngestStats, error) {
	if _, err := os.Stat(a.Config.ContentDir); errors.Is(err, fs.ErrNotExist) {
		return IngestStats{}, fmt.Errorf("%w: %s", errNoContentDir, a.Config.ContentDir)
	}
	in := &Ingester{
		Store:         a.Store,
		Dir:           a.Config.ContentDir,
		Ignore:        a.Config.Ignore,
		ExcerptLength: a.Config.ExcerptLength,
		Force:         opts.Force,
		Logger:        a.logger,
	}
	stats, err := in.Run(ctx)
	if err != nil {
		return stats, fmt.Errorf("ingest: %w", err)
	}
	a.metrics.ObserveIngest(stats)
	a.logger.Info("Ingested content",
		slog.Int("created", stats.Created),
		slog.Int("updated", stats.Updated),
		slog.Int("unchanged", stats.Unchanged),
		slog.Int("deleted", stats.Deleted))
	return stats, nil
}

func (a *App) plan(ctx context.Context) ([]Page, []PostNode, error) {
	a.Cache.Invalidate()
	pages, posts, err := PlanPages(ctx, a.Cache)
	if err != nil {
		var qf *QueryFailure
		if errors.As(err, &qf) {
			a.metrics.IncQueryFailure()
		}
		return nil, nil, fmt.Errorf("plan pages: %w", err)
	}
	return pages, posts, nil
}

func (a *App) renderer() *Renderer {
	return &Renderer{
		OutputDir: a.Config.OutputDir,
		Views:     a.Views,
		Nodes:     a.Store,
		Posts:     a.Cache,
		Metrics:   a.metrics,
		Logger:    a.logger,
	}
}

// prepareOutput empties OutputDir and copies static assets into it.
func (a *App) prepareOutput() error {
	out := a.Config.OutputDir
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clean output directory %s: %w", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", out, err)
	}
	if err := writeEmbeddedAssets(out); err != nil {
		return err
	}
	if _, err := os.Stat(a.staticDir); err == nil {
		if err := copyDir(a.staticDir, out); err != nil {
			return fmt.Errorf("copy static assets: %w", err)
		}
	}
	return nil
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
