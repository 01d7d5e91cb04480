package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/internal/structure"
)

func newTestStore(t *testing.T) *BunStore {
	t.Helper()
	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testManifest() *site.Manifest {
	return &site.Manifest{
		Title:   "Stored Site",
		BaseURL: "https://example.com",
		ThemeID: "default",
		Structure: []*structure.Node{
			{Kind: structure.KindPage, Title: "Home", Path: "content/index.md", Slug: "index", LayoutID: "page"},
		},
	}
}

func TestBunStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.LoadSite(ctx); !errors.Is(err, site.ErrSiteNotFound) {
		t.Fatalf("empty store should report ErrSiteNotFound, got %v", err)
	}

	if err := store.SaveManifest(ctx, testManifest()); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	if err := store.SaveContent(ctx, "content/index.md", []byte("---\ntitle: Home\nlayout: page\n---\nHello.\n")); err != nil {
		t.Fatalf("save content: %v", err)
	}

	loaded, err := store.LoadSite(ctx)
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if loaded.Manifest.Title != "Stored Site" {
		t.Fatalf("manifest title = %q", loaded.Manifest.Title)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].Frontmatter.Title != "Home" {
		t.Fatalf("unexpected files: %+v", loaded.Files)
	}
}

func TestBunStoreUpsertOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveManifest(ctx, testManifest()); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	if err := store.SaveContent(ctx, "content/index.md", []byte("---\ntitle: First\nlayout: page\n---\nOne.\n")); err != nil {
		t.Fatalf("save content: %v", err)
	}
	if err := store.SaveContent(ctx, "content/index.md", []byte("---\ntitle: Second\nlayout: page\n---\nTwo.\n")); err != nil {
		t.Fatalf("overwrite content: %v", err)
	}

	loaded, err := store.LoadSite(ctx)
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].Frontmatter.Title != "Second" {
		t.Fatalf("upsert did not overwrite: %+v", loaded.Files)
	}
}

func TestBunStoreSkipsInvalidContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveManifest(ctx, testManifest()); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	if err := store.SaveContent(ctx, "content/index.md", []byte("---\ntitle: Home\nlayout: page\n---\nGood.\n")); err != nil {
		t.Fatalf("save content: %v", err)
	}
	// Missing required layout violates the frontmatter contract.
	if err := store.SaveContent(ctx, "content/bad.md", []byte("---\ntitle: Bad\n---\nNo layout.\n")); err != nil {
		t.Fatalf("save bad content: %v", err)
	}

	loaded, err := store.LoadSite(ctx)
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if len(loaded.Files) != 1 || loaded.Files[0].Path != "content/index.md" {
		t.Fatalf("invalid content should be skipped: %+v", loaded.Files)
	}
}

func TestBunStoreDeleteContent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveContent(ctx, "content/tmp.md", []byte("---\ntitle: Tmp\nlayout: page\n---\nx\n")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.DeleteContent(ctx, "content/tmp.md"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteContent(ctx, "content/tmp.md"); err != nil {
		t.Fatalf("delete missing should be silent: %v", err)
	}
}
