package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/resolver"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/internal/structure"
)

type feedItem struct {
	Title       string
	Link        string
	GUID        string
	PublishedAt time.Time
	Summary     string
}

// collectFeedItems gathers the dated, non-collection pages for the RSS feed,
// most recent first. Links always use the non-paginated canonical URL.
func collectFeedItems(manifest *site.Manifest, targets []renderTarget, files map[string]*content.File, limit int) []feedItem {
	base := strings.TrimRight(strings.TrimSpace(manifest.BaseURL), "/")

	var items []feedItem
	for _, target := range targets {
		if target.node.Kind != structure.KindPage {
			continue
		}
		file := files[target.node.Path]
		if file == nil {
			continue
		}
		published, ok := parseDate(file.Frontmatter.Value("date"))
		if !ok {
			continue
		}

		link := base + resolver.CanonicalURL(target.route)
		summary := ""
		if desc, isString := file.Frontmatter.Value("description").(string); isString {
			summary = desc
		}
		items = append(items, feedItem{
			Title:       file.Frontmatter.Title,
			Link:        link,
			GUID:        link,
			PublishedAt: published,
			Summary:     summary,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func buildRSSFeed(manifest *site.Manifest, items []feedItem, generatedAt time.Time) string {
	base := strings.TrimRight(strings.TrimSpace(manifest.BaseURL), "/")
	language := manifest.Language
	if language == "" {
		language = "en"
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(manifest.Title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(base+"/")))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(manifest.Description)))
	builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(language)))
	builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z)))
	for _, item := range items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid>%s</guid>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", item.PublishedAt.UTC().Format(time.RFC1123Z)))
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate coerces a frontmatter date value. YAML decoders may deliver
// either time.Time or the original string.
func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		for _, layout := range feedDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
