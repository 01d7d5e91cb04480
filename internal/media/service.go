package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/signumhq/signum/pkg/interfaces"
)

// ErrMediaNotFound indicates no upload exists for the requested id.
var ErrMediaNotFound = errors.New("media: not found")

type record struct {
	info interfaces.MediaInfo
	data []byte
}

// MemoryService keeps uploads in memory, keyed by generated id. It backs the
// export pipeline in tests and in the standalone CLI; persistent deployments
// swap in a store-backed implementation behind the same interface.
type MemoryService struct {
	mu      sync.RWMutex
	records map[string]record
}

// NewMemoryService returns an empty in-memory media service.
func NewMemoryService() *MemoryService {
	return &MemoryService{records: map[string]record{}}
}

// Upload stores a new media object and returns its descriptor. The id is a
// fresh UUID; callers reference the object as asset://<id>.
func (s *MemoryService) Upload(ctx context.Context, name, mimeType string, data []byte) (interfaces.MediaInfo, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.MediaInfo{}, err
	}

	info := interfaces.MediaInfo{
		ID:       uuid.NewString(),
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}

	s.mu.Lock()
	s.records[info.ID] = record{info: info, data: append([]byte(nil), data...)}
	s.mu.Unlock()
	return info, nil
}

// Open returns a reader over the stored bytes.
func (s *MemoryService) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(rec.data)), nil
}

// Stat returns the descriptor for a stored object.
func (s *MemoryService) Stat(ctx context.Context, id string) (interfaces.MediaInfo, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.MediaInfo{}, err
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return interfaces.MediaInfo{}, fmt.Errorf("%w: %s", ErrMediaNotFound, id)
	}
	return rec.info, nil
}
