package media

import (
	"regexp"
	"strings"

	"github.com/signumhq/signum/internal/content"
)

// RefScheme prefixes every media reference embedded in content.
const RefScheme = "asset://"

var refPattern = regexp.MustCompile(`asset://([A-Za-z0-9-]+)`)

// ParseRef extracts the media id from an asset:// reference.
func ParseRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefScheme) {
		return "", false
	}
	id := strings.TrimPrefix(ref, RefScheme)
	if id == "" {
		return "", false
	}
	return id, true
}

// ScanFile collects every media id referenced by a content file, from both
// the markdown body and any frontmatter value. Ids are returned in first-seen
// order without duplicates.
func ScanFile(file *content.File) []string {
	if file == nil {
		return nil
	}
	seen := map[string]bool{}
	var ids []string
	collect := func(text string) {
		for _, match := range refPattern.FindAllStringSubmatch(text, -1) {
			id := match[1]
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	collect(file.Body)
	scanValue(file.Frontmatter.Raw, collect)
	return ids
}

// ScanFiles aggregates references across many files, deduplicated.
func ScanFiles(files []*content.File) []string {
	seen := map[string]bool{}
	var ids []string
	for _, file := range files {
		for _, id := range ScanFile(file) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// ScanValues extracts media ids from arbitrary nested values, e.g. the site
// manifest's theme configuration and metadata blocks.
func ScanValues(values ...any) []string {
	seen := map[string]bool{}
	var ids []string
	collect := func(text string) {
		for _, match := range refPattern.FindAllStringSubmatch(text, -1) {
			id := match[1]
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	for _, value := range values {
		scanValue(value, collect)
	}
	return ids
}

// scanValue walks arbitrarily nested frontmatter values. YAML decoding can
// produce map[string]any or map[any]any depending on the decoder, so both
// shapes are handled.
func scanValue(value any, collect func(string)) {
	switch v := value.(type) {
	case string:
		collect(v)
	case []any:
		for _, item := range v {
			scanValue(item, collect)
		}
	case map[string]any:
		for _, item := range v {
			scanValue(item, collect)
		}
	case map[any]any:
		for _, item := range v {
			scanValue(item, collect)
		}
	}
}
