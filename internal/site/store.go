package site

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/signumhq/signum/internal/content"
)

// ErrSiteNotFound indicates the store has no manifest to load.
var ErrSiteNotFound = errors.New("site: not found")

// Store is the persistence collaborator contract. The editing surface saves
// manifests and content through it; the compiler only ever loads.
type Store interface {
	LoadSite(ctx context.Context) (*Site, error)
	SaveManifest(ctx context.Context, manifest *Manifest) error
	SaveContent(ctx context.Context, path string, raw []byte) error
	DeleteContent(ctx context.Context, path string) error
}

// MemoryStore is an in-memory Store for scaffolding and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	manifest []byte
	sources  map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sources: make(map[string][]byte)}
}

// LoadSite parses the saved manifest and every content source. Sources that
// violate the frontmatter contract are skipped; the caller's logger is the
// wrong layer here, so the bad paths are reported in the returned error only
// when nothing loads at all.
func (m *MemoryStore) LoadSite(ctx context.Context) (*Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.manifest) == 0 {
		return nil, ErrSiteNotFound
	}
	manifest, err := ParseManifest(m.manifest)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(m.sources))
	for path := range m.sources {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]*content.File, 0, len(paths))
	var skipped []string
	for _, path := range paths {
		file, err := content.Parse(path, string(m.sources[path]))
		if err != nil {
			skipped = append(skipped, path)
			continue
		}
		files = append(files, file)
	}
	if len(files) == 0 && len(skipped) > 0 {
		return nil, fmt.Errorf("site: no loadable content (bad sources: %s)", strings.Join(skipped, ", "))
	}
	return &Site{Manifest: manifest, Files: files}, nil
}

// SaveManifest validates and stores the manifest.
func (m *MemoryStore) SaveManifest(_ context.Context, manifest *Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	data, err := manifest.Marshal()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.manifest = data
	m.mu.Unlock()
	return nil
}

// SaveContent stores one raw content document.
func (m *MemoryStore) SaveContent(_ context.Context, path string, raw []byte) error {
	m.mu.Lock()
	m.sources[path] = append([]byte(nil), raw...)
	m.mu.Unlock()
	return nil
}

// DeleteContent removes one raw content document.
func (m *MemoryStore) DeleteContent(_ context.Context, path string) error {
	m.mu.Lock()
	delete(m.sources, path)
	m.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ content.SourceStore = (*MemoryStore)(nil)
