package assets

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/pkg/interfaces"
)

//go:embed builtin
var builtinFS embed.FS

const (
	builtinThemeDir  = "builtin/themes"
	builtinLayoutDir = "builtin/layouts"
)

// builtinIDs enumerates the fixed registry of bundled asset ids, populated
// from the embedded bundle at init.
var builtinIDs = func() map[Kind]map[string]struct{} {
	out := map[Kind]map[string]struct{}{
		KindTheme:  {},
		KindLayout: {},
	}
	scan := func(dir string, kind Kind) {
		entries, err := builtinFS.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				out[kind][entry.Name()] = struct{}{}
			}
		}
	}
	scan(builtinThemeDir, KindTheme)
	scan(builtinLayoutDir, KindLayout)
	return out
}()

// IsBuiltin reports whether id names one of the bundled assets of the kind.
func IsBuiltin(kind Kind, id string) bool {
	_, ok := builtinIDs[kind][id]
	return ok
}

// Resolver resolves theme/layout identifiers to manifests and file contents.
// Builtin ids win over custom records; builtin content is memoized per path
// for the lifetime of one render pass and cleared between export runs.
//
// Lookups never fail: a missing manifest or file yields nil/false and the
// caller decides whether absence is fatal.
type Resolver struct {
	themes  map[string]string
	layouts map[string]string
	logger  interfaces.Logger

	mu    sync.Mutex
	cache map[string]string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger injects the resolver logger.
func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver over the site's custom theme and layout file
// collections.
func NewResolver(customThemes, customLayouts []CustomFile, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		themes:  indexCustomFiles(customThemes),
		layouts: indexCustomFiles(customLayouts),
		logger:  logging.NoOp(),
		cache:   map[string]string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func indexCustomFiles(files []CustomFile) map[string]string {
	out := make(map[string]string, len(files))
	for _, file := range files {
		key := strings.TrimPrefix(strings.TrimSpace(file.Path), "/")
		if key == "" {
			continue
		}
		out[key] = file.Content
	}
	return out
}

// Manifest resolves the manifest for the asset id, or nil when the id is
// unknown or its manifest is malformed.
func (r *Resolver) Manifest(kind Kind, id string) *Manifest {
	manifestName := "theme.json"
	if kind == KindLayout {
		manifestName = "layout.json"
	}
	raw, ok := r.Content(kind, id, manifestName)
	if !ok {
		return nil
	}
	manifest, err := ParseManifest(bytes.NewReader([]byte(raw)))
	if err != nil {
		r.logger.Warn("assets.manifest.malformed", "kind", string(kind), "id", id, "error", err)
		return nil
	}
	return manifest
}

// Content resolves one declared file's content. Builtin assets are read from
// the embedded bundle and memoized; custom assets come from the site's own
// records. The second return is false when nothing resolves.
func (r *Resolver) Content(kind Kind, id, relPath string) (string, bool) {
	id = strings.TrimSpace(id)
	relPath = strings.TrimPrefix(strings.TrimSpace(relPath), "/")
	if id == "" || relPath == "" {
		return "", false
	}

	if IsBuiltin(kind, id) {
		return r.builtinContent(kind, id, relPath)
	}

	records := r.layouts
	if kind == KindTheme {
		records = r.themes
	}
	content, ok := records[path.Join(id, relPath)]
	return content, ok
}

func (r *Resolver) builtinContent(kind Kind, id, relPath string) (string, bool) {
	key := string(kind) + "/" + id + "/" + relPath
	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, true
	}
	r.mu.Unlock()

	dir := builtinLayoutDir
	if kind == KindTheme {
		dir = builtinThemeDir
	}
	data, err := fs.ReadFile(builtinFS, path.Join(dir, id, relPath))
	if err != nil {
		return "", false
	}

	content := string(data)
	r.mu.Lock()
	r.cache[key] = content
	r.mu.Unlock()
	return content, true
}

// Reset clears the per-run content cache so edits are visible to the next
// export.
func (r *Resolver) Reset() {
	r.mu.Lock()
	r.cache = map[string]string{}
	r.mu.Unlock()
}
