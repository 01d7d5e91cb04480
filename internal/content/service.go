package content

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/pkg/interfaces"
)

// SourceStore persists raw content documents. Implementations are external
// collaborators (a key-value record store); the service only needs the write
// side since loading happens in bulk at site load time.
type SourceStore interface {
	SaveContent(ctx context.Context, path string, raw []byte) error
	DeleteContent(ctx context.Context, path string) error
}

// Service manages the parsed content files for one site. Save re-parses the
// raw document so slug and frontmatter stay in lock-step with the path.
type Service struct {
	mu     sync.RWMutex
	files  map[string]*File
	store  SourceStore
	logger interfaces.Logger
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithStore attaches the persistence collaborator.
func WithStore(store SourceStore) ServiceOption {
	return func(s *Service) { s.store = store }
}

// WithLogger injects the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a content service seeded with the provided files.
func NewService(files []*File, opts ...ServiceOption) *Service {
	s := &Service{
		files:  make(map[string]*File, len(files)),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, file := range files {
		if file == nil {
			continue
		}
		s.files[file.Path] = file
	}
	return s
}

// Save parses raw and stores the resulting file under path, persisting the
// original source through the store when one is configured.
func (s *Service) Save(ctx context.Context, path string, raw string) (*File, error) {
	path = strings.TrimSpace(path)
	file, err := Parse(path, raw)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.SaveContent(ctx, path, []byte(raw)); err != nil {
			return nil, fmt.Errorf("content: persist %s: %w", path, err)
		}
	}
	s.mu.Lock()
	s.files[path] = file
	s.mu.Unlock()
	s.logger.Debug("content.save", "path", path, "slug", file.Slug)
	return file, nil
}

// Get returns the file stored at path.
func (s *Service) Get(path string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return file, nil
}

// Delete removes the file at path. Structure edits delete the matching node
// in lock-step; the service tolerates a missing file so the two operations
// can run in either order.
func (s *Service) Delete(ctx context.Context, path string) error {
	if s.store != nil {
		if err := s.store.DeleteContent(ctx, path); err != nil {
			return fmt.Errorf("content: delete %s: %w", path, err)
		}
	}
	s.mu.Lock()
	delete(s.files, path)
	s.mu.Unlock()
	return nil
}

// All returns every file ordered by path.
func (s *Service) All() []*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*File, 0, len(s.files))
	for _, file := range s.files {
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ByPath returns a path-indexed view of every file. The map is a fresh copy;
// the files themselves are shared.
func (s *Service) ByPath() map[string]*File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*File, len(s.files))
	for path, file := range s.files {
		out[path] = file
	}
	return out
}
