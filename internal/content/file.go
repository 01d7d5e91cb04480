package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/signumhq/signum/internal/structure"
)

var (
	// ErrFrontmatterInvalid indicates the document header violates the
	// frontmatter contract (missing title or layout, malformed collection).
	ErrFrontmatterInvalid = errors.New("content: invalid frontmatter")
	// ErrFileNotFound indicates no content file exists at the requested path.
	ErrFileNotFound = errors.New("content: file not found")
)

// SortOrder controls collection sorting direction.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// CollectionConfig is the declarative query embedded in a collection node's
// frontmatter.
type CollectionConfig struct {
	SortBy       string    `yaml:"sortBy"`
	SortOrder    SortOrder `yaml:"sortOrder"`
	ItemsPerPage int       `yaml:"itemsPerPage,omitempty"`
}

// Validate checks the collection block against the frontmatter contract.
func (c CollectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SortBy, validation.Required),
		validation.Field(&c.SortOrder, validation.In(SortAscending, SortDescending)),
		validation.Field(&c.ItemsPerPage, validation.Min(0)),
	)
}

// Frontmatter is the parsed document header. Title and Layout are always
// present in valid files; every other key passes through to templates via Raw.
type Frontmatter struct {
	Title      string
	Layout     string
	Collection *CollectionConfig
	Raw        map[string]any
}

// Value returns the raw frontmatter value for key, or nil.
func (f Frontmatter) Value(key string) any {
	if f.Raw == nil {
		return nil
	}
	return f.Raw[key]
}

// File is the parsed representation of one markdown source document.
type File struct {
	Slug        string
	Path        string
	Frontmatter Frontmatter
	Body        string

	// source preserves the original byte-for-byte document so exports can
	// round-trip what the author wrote.
	source string
}

type frontmatterEnvelope struct {
	Title      string            `yaml:"title"`
	Layout     string            `yaml:"layout"`
	Collection *CollectionConfig `yaml:"collection"`
	Custom     map[string]any    `yaml:",inline"`
}

// Parse builds a File from the raw frontmatter+body document stored at path.
// The frontmatter contract requires non-empty title and layout values; a
// failure here is a configuration error, callers skip the file and warn.
func Parse(path string, raw string) (*File, error) {
	var env frontmatterEnvelope
	body, err := frontmatter.Parse(strings.NewReader(raw), &env)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontmatterInvalid, path, err)
	}

	errs := validation.Errors{
		"title":  validation.Validate(env.Title, validation.Required),
		"layout": validation.Validate(env.Layout, validation.Required),
	}
	if err := errs.Filter(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFrontmatterInvalid, path, err)
	}
	if env.Collection != nil {
		if err := env.Collection.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: collection: %v", ErrFrontmatterInvalid, path, err)
		}
	}

	slug, err := structure.SlugFromPath(path)
	if err != nil {
		return nil, err
	}

	return &File{
		Slug:        slug,
		Path:        path,
		Frontmatter: envelopeToFrontmatter(env),
		Body:        string(body),
		source:      raw,
	}, nil
}

func envelopeToFrontmatter(env frontmatterEnvelope) Frontmatter {
	raw := make(map[string]any, len(env.Custom)+3)
	for key, value := range env.Custom {
		raw[key] = value
	}
	raw["title"] = env.Title
	raw["layout"] = env.Layout
	if env.Collection != nil {
		raw["collection"] = map[string]any{
			"sortBy":       env.Collection.SortBy,
			"sortOrder":    string(env.Collection.SortOrder),
			"itemsPerPage": env.Collection.ItemsPerPage,
		}
	}
	return Frontmatter{
		Title:      env.Title,
		Layout:     env.Layout,
		Collection: env.Collection,
		Raw:        raw,
	}
}

// Source reconstitutes the frontmatter+body document. Files created by Parse
// return the original text verbatim; files assembled programmatically are
// serialised from their frontmatter map.
func (f *File) Source() string {
	if f.source != "" {
		return f.source
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	_ = encoder.Encode(f.Frontmatter.Raw)
	_ = encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(f.Body)
	return buf.String()
}
