package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/structure"
)

var (
	// ErrManifestInvalid indicates the manifest fails its contract.
	ErrManifestInvalid = errors.New("site: invalid manifest")
)

// Manifest is the declarative description of one site: identity, theme
// selection, and the structure tree. It is supplied by the persistence
// collaborator and treated as an immutable snapshot during an export.
type Manifest struct {
	Title         string              `json:"title"`
	Description   string              `json:"description,omitempty"`
	BaseURL       string              `json:"baseUrl"`
	Language      string              `json:"language,omitempty"`
	ThemeID       string              `json:"theme"`
	ThemeConfig   map[string]any      `json:"themeConfig,omitempty"`
	Structure     []*structure.Node   `json:"structure"`
	CustomThemes  []assets.CustomFile `json:"customThemes,omitempty"`
	CustomLayouts []assets.CustomFile `json:"customLayouts,omitempty"`
	Metadata      map[string]any      `json:"metadata,omitempty"`
}

// ParseManifest decodes manifest JSON and validates its contract.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// Validate enforces the manifest contract: a theme must be selected and the
// structure tree must satisfy its invariants.
func (m *Manifest) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", ErrManifestInvalid)
	}
	if strings.TrimSpace(m.ThemeID) == "" {
		return fmt.Errorf("%w: theme selection required", ErrManifestInvalid)
	}
	if err := structure.Validate(m.Structure); err != nil {
		return fmt.Errorf("%w: %v", ErrManifestInvalid, err)
	}
	return nil
}

// Marshal encodes the manifest as indented JSON, the shape written into the
// export's source folder.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Site couples a manifest with the content files backing its structure.
type Site struct {
	Manifest *Manifest
	Files    []*content.File
}

// Snapshot deep-copies the structure tree so an export run is isolated from
// concurrent structure edits. Content files are shared; they are immutable
// once parsed.
func (s *Site) Snapshot() *Site {
	if s == nil {
		return nil
	}
	copied := *s.Manifest
	copied.Structure = structure.Clone(s.Manifest.Structure)
	return &Site{
		Manifest: &copied,
		Files:    append([]*content.File(nil), s.Files...),
	}
}

// FilesByPath indexes content files by storage path.
func (s *Site) FilesByPath() map[string]*content.File {
	out := make(map[string]*content.File, len(s.Files))
	for _, file := range s.Files {
		if file != nil {
			out[file.Path] = file
		}
	}
	return out
}
