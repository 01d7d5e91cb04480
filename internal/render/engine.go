package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/internal/resolver"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/pkg/interfaces"
)

var (
	// ErrThemeMissing indicates the active theme cannot be resolved at all.
	// Nothing can render without a shell, so this aborts the whole export.
	ErrThemeMissing = errors.New("render: theme not found")
	// ErrSiteRequired indicates Render was called without a site.
	ErrSiteRequired = errors.New("render: site is required")
)

// Options steers one render pass.
type Options struct {
	// IsExport switches navigation links from rooted to relative so the
	// output works when served from a subdirectory or the filesystem.
	IsExport bool
	// SiteRoot prefixes rooted links when IsExport is false.
	SiteRoot string
	// AssetPath is the prefix from the current output file to the bundled
	// theme files (stylesheets).
	AssetPath string
	// PageNumber is the collection page being rendered; it shifts the
	// canonical URL for /page/N outputs.
	PageNumber int
}

// Engine renders resolved pages into complete HTML documents. The engine
// itself is stateless across passes; every Render call builds a fresh
// template session so one theme's partials can never leak into the next.
type Engine struct {
	assets    *assets.Resolver
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
	logger    interfaces.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger injects the engine logger.
func WithEngineLogger(logger interfaces.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine wires a rendering engine over the given asset resolver.
func NewEngine(resolver *assets.Resolver, opts ...EngineOption) *Engine {
	e := &Engine{
		assets: resolver,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
		),
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render produces the full HTML document for one resolution. Per-page
// problems (missing body template, template errors, NotFound resolutions)
// degrade to inline error documents; only a wholly missing theme is fatal.
func (e *Engine) Render(s *site.Site, res resolver.Resolution, opts Options) (string, error) {
	if s == nil || s.Manifest == nil {
		return "", ErrSiteRequired
	}

	themeID := s.Manifest.ThemeID
	theme := e.assets.Manifest(assets.KindTheme, themeID)
	if theme == nil {
		return "", fmt.Errorf("%w: %q", ErrThemeMissing, themeID)
	}

	sess := newSession(e, s, opts)
	sess.registerPartials(theme, assets.KindTheme, themeID)

	switch r := res.(type) {
	case *resolver.NotFound:
		e.logger.Warn("render.not_found", "message", r.Message)
		return sess.renderShell(theme, shellInput{
			Title: "Not found",
			Body:  template.HTML(errorFragment("Page not found", r.Message)),
			Route: "",
		}), nil
	case *resolver.Page:
		return sess.renderPage(theme, r), nil
	default:
		return "", fmt.Errorf("render: unknown resolution %T", res)
	}
}

// session carries the per-pass template state: helper registrations and the
// partials loaded for the active theme and layout. Discarded after one page.
type session struct {
	engine *Engine
	site   *site.Site
	files  map[string]*content.File
	opts   Options

	// current page coordinates, used by the url helper and nav links
	route      string
	pageNumber int
	itemLayout string

	partials           map[string]*template.Template
	itemPartialsLoaded bool
}

func newSession(e *Engine, s *site.Site, opts Options) *session {
	if opts.PageNumber < 1 {
		opts.PageNumber = 1
	}
	return &session{
		engine:     e,
		site:       s,
		files:      s.FilesByPath(),
		opts:       opts,
		pageNumber: opts.PageNumber,
		partials:   map[string]*template.Template{},
	}
}

type shellInput struct {
	Title string
	Body  template.HTML
	Route string
}

func (s *session) renderPage(theme *assets.Manifest, page *resolver.Page) string {
	s.route = page.Route
	s.itemLayout = page.ItemLayoutID

	layout := s.engine.assets.Manifest(assets.KindLayout, page.LayoutID)
	if layout == nil {
		s.engine.logger.Error("render.layout_missing", "layout", page.LayoutID, "route", page.Route)
		return s.renderShell(theme, shellInput{
			Title: page.Title,
			Body:  template.HTML(errorFragment("Layout missing", fmt.Sprintf("layout %q is not available", page.LayoutID))),
			Route: page.Route,
		})
	}

	s.registerPartials(layout, assets.KindLayout, page.LayoutID)

	body, err := s.renderBody(layout, page.LayoutID, page)
	if err != nil {
		s.engine.logger.Error("render.body_failed", "layout", page.LayoutID, "route", page.Route, "error", err)
		body = template.HTML(errorFragment("Template error", err.Error()))
	}

	return s.renderShell(theme, shellInput{
		Title: page.Title,
		Body:  body,
		Route: page.Route,
	})
}

// registerPartials loads every file tagged partial from the manifest. The
// declared files are fetched concurrently and registered sequentially once
// all reads complete; registration itself is session-local state.
func (s *session) registerPartials(manifest *assets.Manifest, kind assets.Kind, id string) {
	refs := manifest.Partials()
	if len(refs) == 0 {
		return
	}

	contents := make([]string, len(refs))
	found := make([]bool, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref assets.FileRef) {
			defer wg.Done()
			contents[i], found[i] = s.engine.assets.Content(kind, id, ref.Path)
		}(i, ref)
	}
	wg.Wait()

	for i, ref := range refs {
		name := ref.Name
		if name == "" {
			name = ref.Path
		}
		if !found[i] {
			s.engine.logger.Warn("render.partial_missing", "kind", string(kind), "id", id, "partial", name)
			continue
		}
		tmpl, err := template.New(name).Funcs(s.funcMap()).Parse(contents[i])
		if err != nil {
			s.engine.logger.Warn("render.partial_invalid", "partial", name, "error", err)
			continue
		}
		s.partials[name] = tmpl
	}
}

func (s *session) renderBody(layout *assets.Manifest, layoutID string, page *resolver.Page) (template.HTML, error) {
	ref, ok := layout.FileOfType(assets.FileTypePageTemplate)
	if !ok {
		return "", fmt.Errorf("layout %q declares no body template", layoutID)
	}
	source, ok := s.engine.assets.Content(assets.KindLayout, layoutID, ref.Path)
	if !ok {
		return "", fmt.Errorf("layout %q body template %q missing", layoutID, ref.Path)
	}
	tmpl, err := template.New("body").Funcs(s.funcMap()).Parse(source)
	if err != nil {
		return "", fmt.Errorf("layout %q body template: %w", layoutID, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.bodyData(page)); err != nil {
		return "", fmt.Errorf("layout %q execute: %w", layoutID, err)
	}
	return template.HTML(buf.String()), nil
}

// renderShell executes the theme's base template around the body HTML. A
// missing or broken base template degrades to a bare inline document so the
// export keeps going.
func (s *session) renderShell(theme *assets.Manifest, input shellInput) string {
	s.route = input.Route

	ref, ok := theme.FileOfType(assets.FileTypeBase)
	if !ok {
		s.engine.logger.Error("render.base_undeclared", "theme", s.site.Manifest.ThemeID)
		return errorDocument("Theme error", "the active theme declares no base template", input.Body)
	}
	source, ok := s.engine.assets.Content(assets.KindTheme, s.site.Manifest.ThemeID, ref.Path)
	if !ok {
		s.engine.logger.Error("render.base_missing", "theme", s.site.Manifest.ThemeID, "path", ref.Path)
		return errorDocument("Theme error", fmt.Sprintf("base template %q is missing", ref.Path), input.Body)
	}

	tmpl, err := template.New("base").Funcs(s.funcMap()).Parse(source)
	if err != nil {
		s.engine.logger.Error("render.base_invalid", "error", err)
		return errorDocument("Theme error", err.Error(), input.Body)
	}

	data := baseData{
		Site:         s.siteInfo(),
		Title:        input.Title,
		CanonicalURL: s.canonicalURL(),
		Navigation:   s.navigation(),
		Body:         input.Body,
		CSSVars:      cssVariables(s.site.Manifest.ThemeConfig),
		AssetPath:    s.opts.AssetPath,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.engine.logger.Error("render.base_failed", "error", err)
		return errorDocument("Theme error", err.Error(), input.Body)
	}
	return buf.String()
}

type baseData struct {
	Site         siteInfo
	Title        string
	CanonicalURL string
	Navigation   []navLink
	Body         template.HTML
	CSSVars      template.CSS
	AssetPath    string
}

type siteInfo struct {
	Title       string
	Description string
	Language    string
	BaseURL     string
}

func (s *session) siteInfo() siteInfo {
	m := s.site.Manifest
	return siteInfo{
		Title:       m.Title,
		Description: m.Description,
		Language:    m.Language,
		BaseURL:     strings.TrimRight(m.BaseURL, "/"),
	}
}

type bodyData struct {
	Site siteInfo
	Page *resolver.Page
}

func (s *session) bodyData(page *resolver.Page) bodyData {
	return bodyData{Site: s.siteInfo(), Page: page}
}

// canonicalURL is the absolute canonical address of the page being rendered,
// including the /page/N suffix for paginated slices past the first.
func (s *session) canonicalURL() string {
	base := strings.TrimRight(s.site.Manifest.BaseURL, "/")
	if base == "" {
		return ""
	}
	return base + resolver.PageURL(s.route, s.pageNumber)
}

func errorFragment(title, detail string) string {
	return fmt.Sprintf(
		`<section class="render-error"><h1>%s</h1><p>%s</p></section>`,
		template.HTMLEscapeString(title),
		template.HTMLEscapeString(detail),
	)
}

// errorDocument is the inline fallback emitted when the theme shell itself
// cannot render. It stays a valid standalone HTML document.
func errorDocument(title, detail string, body template.HTML) string {
	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>")
	buf.WriteString(template.HTMLEscapeString(title))
	buf.WriteString("</title></head>\n<body>\n")
	buf.WriteString(errorFragment(title, detail))
	if body != "" {
		buf.WriteString(string(body))
	}
	buf.WriteString("\n</body>\n</html>\n")
	return buf.String()
}
