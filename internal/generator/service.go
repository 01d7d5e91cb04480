package generator

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/internal/media"
	"github.com/signumhq/signum/internal/render"
	"github.com/signumhq/signum/internal/resolver"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/internal/structure"
	"github.com/signumhq/signum/pkg/interfaces"
)

// ErrSiteRequired indicates Export was called without a site.
var ErrSiteRequired = errors.New("generator: site is required")

// Config captures runtime behaviour toggles for the exporter.
type Config struct {
	// FeedItemLimit caps the RSS feed length. Defaults to 20.
	FeedItemLimit int
}

// Dependencies lists the collaborators required by the exporter. Assets and
// Renderer may be left nil; the export then builds them per run from the
// site's own custom theme/layout collections.
type Dependencies struct {
	Assets   *assets.Resolver
	Renderer *render.Engine
	Media    interfaces.MediaService
	Logger   interfaces.Logger
}

// DiagnosticStatus classifies one export step's outcome.
type DiagnosticStatus string

const (
	DiagnosticRendered DiagnosticStatus = "rendered"
	DiagnosticError    DiagnosticStatus = "error"
	DiagnosticSkipped  DiagnosticStatus = "skipped"
)

// Diagnostic records one per-artifact outcome. Non-fatal problems surface
// here instead of failing the export.
type Diagnostic struct {
	Path    string
	Route   string
	Status  DiagnosticStatus
	Message string
}

// Result reports aggregated export metadata.
type Result struct {
	PagesBuilt  int
	AssetsBuilt int
	Diagnostics []Diagnostic
	Duration    time.Duration
}

// Service compiles a site into a static archive: every page (with pagination
// fan-out), the source round-trip folder, bundled theme/layout assets,
// referenced media, an RSS feed, and a sitemap.
type Service struct {
	cfg  Config
	deps Dependencies
	now  func() time.Time
}

// NewService wires an exporter with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) *Service {
	if cfg.FeedItemLimit <= 0 {
		cfg.FeedItemLimit = 20
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	return &Service{cfg: cfg, deps: deps, now: time.Now}
}

// ExportArchive compiles the site and returns the zip archive bytes.
func (s *Service) ExportArchive(ctx context.Context, src *site.Site) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := s.Export(ctx, src, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Export compiles the site, streaming the zip archive into w.
func (s *Service) Export(ctx context.Context, src *site.Site, w io.Writer) (*Result, error) {
	zw := zip.NewWriter(w)
	result, err := s.export(ctx, src, newZipArtifactWriter(zw))
	if cerr := zw.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("generator: close archive: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

type renderTarget struct {
	node  *structure.Node
	route string
}

// exportRun holds the collaborators scoped to one export.
type exportRun struct {
	assets   *assets.Resolver
	renderer *render.Engine
}

func (s *Service) export(ctx context.Context, src *site.Site, writer artifactWriter) (*Result, error) {
	if src == nil || src.Manifest == nil {
		return nil, ErrSiteRequired
	}
	started := s.now()

	// The structure is copied up front so edits made while the export runs
	// cannot shift output paths mid-archive.
	snapshot := src.Snapshot()
	files := snapshot.FilesByPath()

	run := &exportRun{
		assets:   s.deps.Assets,
		renderer: s.deps.Renderer,
	}
	if run.assets == nil {
		run.assets = assets.NewResolver(snapshot.Manifest.CustomThemes, snapshot.Manifest.CustomLayouts)
	}
	if run.renderer == nil {
		run.renderer = render.NewEngine(run.assets)
	}

	// The per-path asset cache is scoped to one run; content edits between
	// runs must be visible.
	run.assets.Reset()

	if run.assets.Manifest(assets.KindTheme, snapshot.Manifest.ThemeID) == nil {
		return nil, fmt.Errorf("generator: theme %q not found", snapshot.Manifest.ThemeID)
	}

	result := &Result{}
	targets := collectTargets(snapshot.Manifest.Structure)

	// Pages first; the feed and sitemap enumerate what was rendered.
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.renderTarget(run, snapshot, files, target, writer, result); err != nil {
			return nil, err
		}
	}

	if err := s.writeSource(snapshot, writer, result); err != nil {
		return nil, err
	}
	if err := s.bundleAssets(run, snapshot, targets, writer, result); err != nil {
		return nil, err
	}
	if err := s.bundleMedia(ctx, snapshot, writer, result); err != nil {
		return nil, err
	}

	generatedAt := s.now()
	feed := buildRSSFeed(snapshot.Manifest, collectFeedItems(snapshot.Manifest, targets, files, s.cfg.FeedItemLimit), generatedAt)
	if err := writer.WriteFile("rss.xml", []byte(feed)); err != nil {
		return nil, fmt.Errorf("generator: write rss.xml: %w", err)
	}
	sitemap := buildSitemap(snapshot.Manifest.BaseURL, targets, files, generatedAt)
	if err := writer.WriteFile("sitemap.xml", []byte(sitemap)); err != nil {
		return nil, fmt.Errorf("generator: write sitemap.xml: %w", err)
	}

	result.Duration = s.now().Sub(started)
	s.deps.Logger.Info("export.complete",
		"pages", result.PagesBuilt,
		"assets", result.AssetsBuilt,
		"duration", result.Duration.String(),
	)
	return result, nil
}

// collectTargets flattens the structure tree into renderable nodes in
// deterministic walk order.
func collectTargets(nodes []*structure.Node) []renderTarget {
	var targets []renderTarget
	structure.Walk(nodes, func(node *structure.Node) bool {
		targets = append(targets, renderTarget{node: node, route: structure.RoutePath(node.Path)})
		return true
	})
	return targets
}

// renderTarget renders one node, fanning out to every pagination slice. The
// render engine degrades per-page failures to inline error documents, so the
// only errors surfacing here are fatal ones.
func (s *Service) renderTarget(run *exportRun, snapshot *site.Site, files map[string]*content.File, target renderTarget, writer artifactWriter, result *Result) error {
	first := resolver.ResolveRoute(snapshot.Manifest.Structure, files, target.route, 1)

	totalPages := 1
	if page, ok := first.(*resolver.Page); ok && page.Pagination != nil {
		totalPages = page.Pagination.TotalPages
	}

	for n := 1; n <= totalPages; n++ {
		res := first
		if n > 1 {
			res = resolver.ResolveRoute(snapshot.Manifest.Structure, files, target.route, n)
		}

		html, err := run.renderer.Render(snapshot, res, render.Options{
			IsExport:   true,
			AssetPath:  assetPrefix(target.route, n, snapshot.Manifest.ThemeID),
			PageNumber: n,
		})
		if err != nil {
			return fmt.Errorf("generator: render %q: %w", target.route, err)
		}

		path := outputPath(target.route, n)
		if err := writer.WriteFile(path, []byte(html)); err != nil {
			return fmt.Errorf("generator: write %s: %w", path, err)
		}
		result.PagesBuilt++

		diag := Diagnostic{Path: path, Route: target.route, Status: DiagnosticRendered}
		if nf, ok := res.(*resolver.NotFound); ok {
			diag.Status = DiagnosticError
			diag.Message = nf.Message
			s.deps.Logger.Warn("export.page_degraded", "route", target.route, "message", nf.Message)
		}
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	return nil
}

// writeSource emits the editable source of the site so an exported archive
// can be re-imported without loss: the manifest plus every content file
// reconstituted as frontmatter+body text.
func (s *Service) writeSource(snapshot *site.Site, writer artifactWriter, result *Result) error {
	manifest, err := snapshot.Manifest.Marshal()
	if err != nil {
		return fmt.Errorf("generator: marshal manifest: %w", err)
	}
	if err := writer.WriteFile("_signum/manifest.json", manifest); err != nil {
		return fmt.Errorf("generator: write manifest: %w", err)
	}

	for _, file := range snapshot.Files {
		if file == nil {
			continue
		}
		path := "_signum/" + file.Path
		if err := writer.WriteFile(path, []byte(file.Source())); err != nil {
			return fmt.Errorf("generator: write %s: %w", path, err)
		}
	}
	return nil
}

// bundleAssets copies the active theme and every layout referenced by the
// structure into the archive's source folder, following each manifest's
// declared file list.
func (s *Service) bundleAssets(run *exportRun, snapshot *site.Site, targets []renderTarget, writer artifactWriter, result *Result) error {
	if err := s.bundleOne(run, assets.KindTheme, snapshot.Manifest.ThemeID, writer, result); err != nil {
		return err
	}

	seen := map[string]bool{}
	for _, target := range targets {
		for _, id := range []string{target.node.LayoutID, target.node.ItemLayoutID} {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			if err := s.bundleOne(run, assets.KindLayout, id, writer, result); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) bundleOne(run *exportRun, kind assets.Kind, id string, writer artifactWriter, result *Result) error {
	manifest := run.assets.Manifest(kind, id)
	if manifest == nil {
		s.deps.Logger.Warn("export.asset_missing", "kind", string(kind), "id", id)
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Path:    assetDir(kind, id),
			Status:  DiagnosticSkipped,
			Message: fmt.Sprintf("%s %q has no manifest", kind, id),
		})
		return nil
	}

	manifestName := "theme.json"
	if kind == assets.KindLayout {
		manifestName = "layout.json"
	}

	names := make([]string, 0, len(manifest.Files)+1)
	names = append(names, manifestName)
	for _, ref := range manifest.Files {
		names = append(names, ref.Path)
	}

	for _, name := range names {
		data, ok := run.assets.Content(kind, id, name)
		if !ok {
			s.deps.Logger.Warn("export.asset_file_missing", "kind", string(kind), "id", id, "path", name)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Path:    assetDir(kind, id) + "/" + name,
				Status:  DiagnosticSkipped,
				Message: "declared file missing",
			})
			continue
		}
		path := assetDir(kind, id) + "/" + name
		if err := writer.WriteFile(path, []byte(data)); err != nil {
			return fmt.Errorf("generator: write %s: %w", path, err)
		}
		result.AssetsBuilt++
	}
	return nil
}

// bundleMedia copies every asset:// referenced binary into the archive. The
// media collaborator is optional; without one the step is skipped entirely.
func (s *Service) bundleMedia(ctx context.Context, snapshot *site.Site, writer artifactWriter, result *Result) error {
	if s.deps.Media == nil {
		return nil
	}

	ids := media.ScanFiles(snapshot.Files)
	for _, id := range media.ScanValues(snapshot.Manifest.ThemeConfig, snapshot.Manifest.Metadata) {
		duplicate := false
		for _, have := range ids {
			if have == id {
				duplicate = true
				break
			}
		}
		if !duplicate {
			ids = append(ids, id)
		}
	}

	usedNames := map[string]bool{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := s.deps.Media.Stat(ctx, id)
		if err != nil {
			s.deps.Logger.Warn("export.media_missing", "id", id, "error", err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Path:    "assets/uploads/" + id,
				Status:  DiagnosticSkipped,
				Message: "referenced media not found",
			})
			continue
		}

		name := info.Name
		if name == "" {
			name = id
		}
		if usedNames[name] {
			name = id + "-" + name
		}
		usedNames[name] = true

		rc, err := s.deps.Media.Open(ctx, id)
		if err != nil {
			s.deps.Logger.Warn("export.media_unreadable", "id", id, "error", err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("generator: read media %s: %w", id, err)
		}

		path := "assets/uploads/" + name
		if err := writer.WriteFile(path, data); err != nil {
			return fmt.Errorf("generator: write %s: %w", path, err)
		}
		result.AssetsBuilt++
	}
	return nil
}

func assetDir(kind assets.Kind, id string) string {
	if kind == assets.KindLayout {
		return "_signum/layouts/" + id
	}
	return "_signum/themes/" + id
}

// outputPath maps a route and page number to the archive file holding that
// page: index.html at the root, slug/index.html per page, and a page/N
// directory per pagination slice past the first.
func outputPath(route string, pageNumber int) string {
	switch {
	case route == "" && pageNumber <= 1:
		return "index.html"
	case route == "":
		return fmt.Sprintf("page/%d/index.html", pageNumber)
	case pageNumber <= 1:
		return route + "/index.html"
	default:
		return fmt.Sprintf("%s/page/%d/index.html", route, pageNumber)
	}
}

// assetPrefix is the relative path from a page's output directory to the
// bundled theme files.
func assetPrefix(route string, pageNumber int, themeID string) string {
	depth := 0
	if route != "" {
		depth = 1
		for _, r := range route {
			if r == '/' {
				depth++
			}
		}
	}
	if pageNumber > 1 {
		depth += 2
	}
	prefix := ""
	for i := 0; i < depth; i++ {
		prefix += "../"
	}
	return prefix + "_signum/themes/" + themeID + "/"
}
