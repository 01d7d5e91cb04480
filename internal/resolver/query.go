package resolver

import (
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/signumhq/signum/internal/content"
)

// collator is shared across sorts; collation keys depend only on the input
// strings so concurrent reads are safe once constructed.
var collator = collate.New(language.Und)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// sortFiles orders items by the frontmatter field named by sortBy. The sort
// is stable so items with equal keys keep their original relative order.
func sortFiles(items []*content.File, sortBy string, order content.SortOrder) {
	if sortBy == "" {
		return
	}
	sign := 1
	if order == content.SortDescending {
		sign = -1
	}
	sort.SliceStable(items, func(i, j int) bool {
		return sign*compareValues(items[i].Frontmatter.Value(sortBy), items[j].Frontmatter.Value(sortBy)) < 0
	})
}

// compareValues is the three-way comparator behind collection sorting:
// timestamps first (unparseable dates compare equal), then locale-aware
// strings, then numbers. Mixed types fall back to string comparison of
// their printed forms.
func compareValues(a, b any) int {
	aTime, aIsTime := asTime(a)
	bTime, bIsTime := asTime(b)
	if aIsTime || bIsTime {
		if !aIsTime || !bIsTime {
			return 0
		}
		switch {
		case aTime.Before(bTime):
			return -1
		case aTime.After(bTime):
			return 1
		default:
			return 0
		}
	}

	if aStr, ok := a.(string); ok {
		if bStr, ok := b.(string); ok {
			return collator.CompareString(aStr, bStr)
		}
	}

	aNum, aIsNum := asNumber(a)
	bNum, bIsNum := asNumber(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}

	if a == nil && b == nil {
		return 0
	}
	return collator.CompareString(printValue(a), printValue(b))
}

// asTime recognises date-like values: native timestamps from the YAML
// parser and strings in the common date layouts. A string that looks like a
// date but fails to parse is not a time; the caller treats the pair as equal.
func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func printValue(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
