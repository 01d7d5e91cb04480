package interfaces

import (
	"context"
	"io"
)

// MediaInfo describes a stored binary asset.
type MediaInfo struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// MediaService is the external collaborator that owns binary assets (images,
// downloads). The exporter only ever reads from it; upload and lifecycle
// management live outside this module.
type MediaService interface {
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Stat(ctx context.Context, id string) (MediaInfo, error)
}
