package render

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// cssVariables turns the manifest's theme settings into a block of custom
// properties for the base template's :root rule. Keys become --signum-<key>
// in sorted order so output is stable across renders.
func cssVariables(settings map[string]any) template.CSS {
	if len(settings) == 0 {
		return ""
	}

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf strings.Builder
	for _, key := range keys {
		value := cssValue(settings[key])
		if value == "" {
			continue
		}
		fmt.Fprintf(&buf, "        --signum-%s: %s;\n", cssIdent(key), value)
	}
	return template.CSS(buf.String())
}

// cssIdent keeps only characters valid in a custom property name.
func cssIdent(key string) string {
	var buf strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// cssValue prints a settings value, rejecting anything that could escape the
// declaration it lands in.
func cssValue(value any) string {
	var out string
	switch v := value.(type) {
	case string:
		out = v
	case bool, int, int64, float64:
		out = fmt.Sprint(v)
	default:
		return ""
	}
	if strings.ContainsAny(out, ";{}<>") {
		return ""
	}
	return strings.TrimSpace(out)
}
