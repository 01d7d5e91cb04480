package assets

import (
	"encoding/json"
	"fmt"
	"io"
)

// Kind distinguishes the two asset bundle families.
type Kind string

const (
	// KindTheme bundles render the page shell (head, nav, footer).
	KindTheme Kind = "theme"
	// KindLayout bundles render one content item or listing body.
	KindLayout Kind = "layout"
)

// FileType tags the role of one file inside an asset bundle.
type FileType string

const (
	// FileTypeBase is the theme's outer HTML shell template.
	FileTypeBase FileType = "base"
	// FileTypePartial is a named, reusable sub-template.
	FileTypePartial FileType = "partial"
	// FileTypeStylesheet is a static CSS file copied into exports.
	FileTypeStylesheet FileType = "stylesheet"
	// FileTypePageTemplate is a layout's body template.
	FileTypePageTemplate FileType = "page-template"
)

// FileRef describes one declared file in an asset manifest. Name is the
// symbolic identifier used when the file is registered as a partial.
type FileRef struct {
	Path string   `json:"path"`
	Type FileType `json:"type"`
	Name string   `json:"name,omitempty"`
}

// Manifest mirrors the theme.json/layout.json structure: bundle identity,
// an ordered file list, and an optional JSON-schema fragment describing the
// bundle's user-configurable settings.
type Manifest struct {
	Name     string          `json:"name"`
	Version  string          `json:"version"`
	Files    []FileRef       `json:"files"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// ParseManifest decodes manifest JSON from a reader.
func ParseManifest(r io.Reader) (*Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("assets: parse manifest: %w", err)
	}
	return &manifest, nil
}

// FileOfType returns the first declared file carrying the given type tag.
func (m *Manifest) FileOfType(t FileType) (FileRef, bool) {
	if m == nil {
		return FileRef{}, false
	}
	for _, file := range m.Files {
		if file.Type == t {
			return file, true
		}
	}
	return FileRef{}, false
}

// Partials returns every declared partial file, in manifest order.
func (m *Manifest) Partials() []FileRef {
	if m == nil {
		return nil
	}
	var out []FileRef
	for _, file := range m.Files {
		if file.Type == FileTypePartial {
			out = append(out, file)
		}
	}
	return out
}

// CustomFile is one user-supplied asset record attached to a site. Path is
// relative to the bundle id it belongs to (e.g. "my-theme/theme.json").
type CustomFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
