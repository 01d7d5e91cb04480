package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/resolver"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// buildSitemap lists every renderable node at its non-paginated canonical
// URL. A page's frontmatter date doubles as its last-modified stamp when
// present; the export time is the fallback.
func buildSitemap(baseURL string, targets []renderTarget, files map[string]*content.File, fallback time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	entries := make([]sitemapEntry, 0, len(targets))
	seen := map[string]struct{}{}
	for _, target := range targets {
		location := base + resolver.CanonicalURL(target.route)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		lastMod := fallback
		if file := files[target.node.Path]; file != nil {
			if date, ok := parseDate(file.Frontmatter.Value("date")); ok {
				lastMod = date
			}
		}
		entries = append(entries, sitemapEntry{Location: location, LastMod: lastMod})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}
