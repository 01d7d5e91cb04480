package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/logging"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/pkg/interfaces"
)

const manifestKey = "manifest"

// siteRecord is one stored document: the manifest under a fixed key, content
// sources under their content path.
type siteRecord struct {
	bun.BaseModel `bun:"table:site_records,alias:sr"`

	Key       string    `bun:"key,pk"`
	Data      []byte    `bun:"data,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// BunStore persists a site in a single key→document table. It satisfies both
// the site store contract and the content service's source store.
type BunStore struct {
	db     *bun.DB
	logger interfaces.Logger
}

var (
	_ site.Store          = (*BunStore)(nil)
	_ content.SourceStore = (*BunStore)(nil)
)

// StoreOption configures a BunStore.
type StoreOption func(*BunStore)

// WithStoreLogger injects the store logger.
func WithStoreLogger(logger interfaces.Logger) StoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunStore wraps an existing bun database.
func NewBunStore(db *bun.DB, opts ...StoreOption) *BunStore {
	s := &BunStore{db: db, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens (or creates) a sqlite-backed store at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string, opts ...StoreOption) (*BunStore, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?_fk=1"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}

	store := NewBunStore(bun.NewDB(sqldb, sqlitedialect.New()), opts...)
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Init creates the schema when missing.
func (s *BunStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*siteRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("storage: create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *BunStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadSite reads the manifest and every content source. Sources that violate
// the frontmatter contract are skipped with a warning; the load fails only
// when the manifest is absent or invalid.
func (s *BunStore) LoadSite(ctx context.Context) (*site.Site, error) {
	var manifestRec siteRecord
	err := s.db.NewSelect().Model(&manifestRec).Where("key = ?", manifestKey).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, site.ErrSiteNotFound
		}
		return nil, fmt.Errorf("storage: load manifest: %w", err)
	}

	manifest, err := site.ParseManifest(manifestRec.Data)
	if err != nil {
		return nil, err
	}

	var records []siteRecord
	if err := s.db.NewSelect().Model(&records).Where("key LIKE ?", "content/%").Scan(ctx); err != nil {
		return nil, fmt.Errorf("storage: load content: %w", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })

	files := make([]*content.File, 0, len(records))
	for _, rec := range records {
		file, err := content.Parse(rec.Key, string(rec.Data))
		if err != nil {
			s.logger.Warn("storage.content_skipped", "path", rec.Key, "error", err)
			continue
		}
		files = append(files, file)
	}

	return &site.Site{Manifest: manifest, Files: files}, nil
}

// SaveManifest validates and upserts the manifest document.
func (s *BunStore) SaveManifest(ctx context.Context, manifest *site.Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	data, err := manifest.Marshal()
	if err != nil {
		return fmt.Errorf("storage: marshal manifest: %w", err)
	}
	return s.upsert(ctx, manifestKey, data)
}

// SaveContent upserts one raw content document under its content path.
func (s *BunStore) SaveContent(ctx context.Context, path string, raw []byte) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("storage: content path required")
	}
	return s.upsert(ctx, path, raw)
}

// DeleteContent removes one content document. Deleting a missing path is not
// an error.
func (s *BunStore) DeleteContent(ctx context.Context, path string) error {
	_, err := s.db.NewDelete().Model((*siteRecord)(nil)).Where("key = ?", path).Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

func (s *BunStore) upsert(ctx context.Context, key string, data []byte) error {
	record := &siteRecord{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", key, err)
	}
	return nil
}
