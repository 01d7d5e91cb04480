// Package signum compiles structured content and a visual theme into a
// deployable static site archive.
package signum

import (
	"context"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/generator"
	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/internal/media"
	"github.com/signumhq/signum/internal/render"
	"github.com/signumhq/signum/internal/resolver"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/internal/structure"
	"github.com/signumhq/signum/pkg/interfaces"
)

// Re-exported domain types so embedders depend on one import path.
type (
	Manifest     = site.Manifest
	Site         = site.Site
	SiteStore    = site.Store
	Node         = structure.Node
	ContentFile  = content.File
	Resolution   = resolver.Resolution
	Page         = resolver.Page
	NotFound     = resolver.NotFound
	ExportResult = generator.Result
	CustomFile   = assets.CustomFile
)

// Config carries the embedder-facing knobs for a module instance.
type Config struct {
	LoggerProvider interfaces.LoggerProvider
	Media          interfaces.MediaService
	FeedItemLimit  int
}

// Module wires the compilation pipeline: asset resolution, rendering, and
// export. Site data is supplied per call through a SiteStore or Site value.
type Module struct {
	cfg       Config
	generator *generator.Service
}

// New assembles a module from the given configuration.
func New(cfg Config) *Module {
	var logger interfaces.Logger = logging.NoOp()
	if cfg.LoggerProvider != nil {
		logger = logging.GeneratorLogger(cfg.LoggerProvider)
	}

	gen := generator.NewService(
		generator.Config{FeedItemLimit: cfg.FeedItemLimit},
		generator.Dependencies{
			Media:  cfg.Media,
			Logger: logger,
		},
	)
	return &Module{cfg: cfg, generator: gen}
}

// Generator exposes the site exporter.
func (m *Module) Generator() *generator.Service {
	return m.generator
}

// Resolve runs the page resolver against a site snapshot.
func (m *Module) Resolve(s *Site, route string, pageNumber int) Resolution {
	return resolver.ResolveRoute(s.Manifest.Structure, s.FilesByPath(), route, pageNumber)
}

// Render produces the HTML document for one resolved page using the site's
// theme and custom assets.
func (m *Module) Render(s *Site, res Resolution, opts render.Options) (string, error) {
	assetResolver := assets.NewResolver(s.Manifest.CustomThemes, s.Manifest.CustomLayouts)
	engine := render.NewEngine(assetResolver)
	return engine.Render(s, res, opts)
}

// Export compiles the site into a zip archive.
func (m *Module) Export(ctx context.Context, s *Site) ([]byte, error) {
	return m.generator.ExportArchive(ctx, s)
}

// SeedDemoSite returns an in-memory store loaded with a small demo site, used
// by the CLI when no database is configured.
func SeedDemoSite(ctx context.Context) (*site.MemoryStore, error) {
	store := site.NewMemoryStore()

	manifest := &Manifest{
		Title:       "Signum Demo",
		Description: "A demo site compiled by signum",
		BaseURL:     "https://demo.signum.dev",
		Language:    "en",
		ThemeID:     "default",
		ThemeConfig: map[string]any{"accentColor": "#2c5aa0"},
		Structure: []*Node{
			{Kind: structure.KindPage, Title: "Home", Path: "content/index.md", Slug: "index", LayoutID: "page"},
			{
				Kind:         structure.KindCollection,
				Title:        "Blog",
				Path:         "content/blog.md",
				Slug:         "blog",
				LayoutID:     "list",
				ItemLayoutID: "post",
				Children: []*Node{
					{Kind: structure.KindPage, Title: "Hello World", Path: "content/blog/hello-world.md", Slug: "hello-world", LayoutID: "post"},
					{Kind: structure.KindPage, Title: "Second Post", Path: "content/blog/second-post.md", Slug: "second-post", LayoutID: "post"},
				},
			},
		},
	}
	if err := store.SaveManifest(ctx, manifest); err != nil {
		return nil, err
	}

	sources := map[string]string{
		"content/index.md":            "---\ntitle: Home\nlayout: page\n---\n# Welcome\n\nThis site was compiled by **signum**.\n",
		"content/blog.md":             "---\ntitle: Blog\nlayout: list\ncollection:\n  sortBy: date\n  sortOrder: desc\n  itemsPerPage: 10\n---\nLatest posts.\n",
		"content/blog/hello-world.md": "---\ntitle: Hello World\nlayout: post\ndate: 2026-08-01\ndescription: The first post\n---\nHello from the demo site.\n",
		"content/blog/second-post.md": "---\ntitle: Second Post\nlayout: post\ndate: 2026-08-15\ndescription: The second post\n---\nMore demo content.\n",
	}
	for path, raw := range sources {
		if err := store.SaveContent(ctx, path, []byte(raw)); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// NewMediaService returns the in-memory media implementation.
func NewMediaService() *media.MemoryService {
	return media.NewMemoryService()
}
