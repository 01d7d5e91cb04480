package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/resolver"
	"github.com/signumhq/signum/internal/structure"
)

// funcMap exposes the template helpers. Helpers close over the session so
// they see the current page, the registered partials, and the site snapshot.
func (s *session) funcMap() template.FuncMap {
	return template.FuncMap{
		"partial":    s.helperPartial,
		"markdown":   s.helperMarkdown,
		"formatDate": helperFormatDate,
		"truncate":   helperTruncate,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"query":      s.helperQuery,
		"renderItem": s.helperRenderItem,
		"url":        s.helperURL,
	}
}

// helperPartial executes a registered partial by its symbolic name. Unknown
// names leave an HTML comment so the gap is visible in the output instead of
// failing the whole page.
func (s *session) helperPartial(name string, data any) template.HTML {
	tmpl, ok := s.partials[name]
	if !ok {
		return template.HTML(fmt.Sprintf("<!-- partial %q not found -->", name))
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.engine.logger.Warn("render.partial_failed", "partial", name, "error", err)
		return template.HTML(fmt.Sprintf("<!-- partial %q failed -->", name))
	}
	return template.HTML(buf.String())
}

// helperMarkdown converts markdown to sanitized HTML.
func (s *session) helperMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := s.engine.markdown.Convert([]byte(source), &buf); err != nil {
		s.engine.logger.Warn("render.markdown_failed", "error", err)
		return template.HTML("<!-- markdown conversion failed -->")
	}
	return template.HTML(s.engine.sanitizer.SanitizeBytes(buf.Bytes()))
}

var helperDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// helperFormatDate formats a frontmatter date value. The value may already be
// a time.Time or a date string in a common layout; anything else is printed
// as-is. An optional second argument overrides the output layout.
func helperFormatDate(value any, layout ...string) string {
	out := "January 2, 2006"
	if len(layout) > 0 && layout[0] != "" {
		out = layout[0]
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(out)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(out)
	case string:
		for _, in := range helperDateLayouts {
			if t, err := time.Parse(in, v); err == nil {
				return t.Format(out)
			}
		}
		return v
	default:
		return fmt.Sprint(value)
	}
}

// helperTruncate shortens a string to at most n runes, appending an ellipsis
// when anything was cut.
func helperTruncate(input string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(input)
	if len(runes) <= n {
		return input
	}
	return strings.TrimRight(string(runes[:n]), " ") + "…"
}

// helperQuery returns the full sorted item list of the collection at the
// given route, without pagination. Layouts use it to surface a collection's
// items from unrelated pages, e.g. recent posts on the home page.
func (s *session) helperQuery(route string) []*content.File {
	return resolver.QueryCollection(s.site.Manifest.Structure, s.files, route)
}

// helperRenderItem renders a collection item through the collection's item
// layout. The item layout's partials are registered on first use.
func (s *session) helperRenderItem(item *content.File) template.HTML {
	if item == nil {
		return ""
	}
	if s.itemLayout == "" {
		return template.HTML("<!-- no item layout configured -->")
	}

	layout := s.engine.assets.Manifest(assets.KindLayout, s.itemLayout)
	if layout == nil {
		s.engine.logger.Warn("render.item_layout_missing", "layout", s.itemLayout)
		return template.HTML(fmt.Sprintf("<!-- item layout %q not found -->", s.itemLayout))
	}
	if !s.itemPartialsLoaded {
		s.registerPartials(layout, assets.KindLayout, s.itemLayout)
		s.itemPartialsLoaded = true
	}

	page := &resolver.Page{
		Title:    item.Frontmatter.Title,
		File:     item,
		LayoutID: s.itemLayout,
		Route:    structure.RoutePath(item.Path),
	}
	body, err := s.renderBody(layout, s.itemLayout, page)
	if err != nil {
		s.engine.logger.Warn("render.item_failed", "layout", s.itemLayout, "path", item.Path, "error", err)
		return template.HTML(fmt.Sprintf("<!-- item %q failed to render -->", item.Slug))
	}
	return body
}

// helperURL turns a rooted route URL into a link that works for the current
// output mode: prefixed with the site root when serving, rewritten relative
// to the current output directory when exporting.
func (s *session) helperURL(target string) string {
	if target == "" {
		target = "/"
	}
	if !strings.HasPrefix(target, "/") {
		// Already relative or absolute with scheme; pass through.
		return target
	}
	if !s.opts.IsExport {
		root := strings.TrimRight(s.opts.SiteRoot, "/")
		if target == "/" && root != "" {
			return root + "/"
		}
		return root + target
	}
	return relativeURL(s.outputDepth(), target)
}

// outputDepth is the directory depth of the current page's index.html within
// the export tree. Pagination slices past the first add a page/N directory.
func (s *session) outputDepth() int {
	depth := 0
	if s.route != "" {
		depth = strings.Count(s.route, "/") + 1
	}
	if s.pageNumber > 1 {
		depth += 2
	}
	return depth
}

// relativeURL rewrites a rooted path as a relative directory link from a
// page that sits depth directories below the export root.
func relativeURL(depth int, target string) string {
	prefix := strings.Repeat("../", depth)
	rest := strings.Trim(target, "/")
	if rest == "" {
		if prefix == "" {
			return "./"
		}
		return prefix
	}
	return prefix + rest + "/"
}

type navLink struct {
	Title  string
	URL    string
	Active bool
}

// navigation builds the top-level navigation from the structure tree. A page
// inside a collection keeps its parent collection highlighted.
func (s *session) navigation() []navLink {
	nodes := s.site.Manifest.Structure
	links := make([]navLink, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		route := structure.RoutePath(node.Path)
		active := route == s.route
		if !active && route != "" {
			active = strings.HasPrefix(s.route, route+"/")
		}
		links = append(links, navLink{
			Title:  node.Title,
			URL:    s.helperURL(resolver.CanonicalURL(route)),
			Active: active,
		})
	}
	return links
}
