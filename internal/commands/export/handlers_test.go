package exportcmd

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/signumhq/signum/internal/assets"
	"github.com/signumhq/signum/internal/generator"
	"github.com/signumhq/signum/internal/render"
	"github.com/signumhq/signum/internal/site"
	"github.com/signumhq/signum/internal/structure"
)

func seededStore(t *testing.T) *site.MemoryStore {
	t.Helper()
	store := site.NewMemoryStore()
	ctx := context.Background()

	manifest := &site.Manifest{
		Title:   "Command Test",
		BaseURL: "https://example.com",
		ThemeID: "default",
		Structure: []*structure.Node{
			{Kind: structure.KindPage, Title: "Home", Path: "content/index.md", Slug: "index", LayoutID: "page"},
		},
	}
	if err := store.SaveManifest(ctx, manifest); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	if err := store.SaveContent(ctx, "content/index.md", []byte("---\ntitle: Home\nlayout: page\n---\nHello.\n")); err != nil {
		t.Fatalf("save content: %v", err)
	}
	return store
}

func newTestGenerator() *generator.Service {
	resolver := assets.NewResolver(nil, nil)
	return generator.NewService(generator.Config{}, generator.Dependencies{
		Assets:   resolver,
		Renderer: render.NewEngine(resolver),
	})
}

func TestExportSiteCommandValidation(t *testing.T) {
	if err := (ExportSiteCommand{}).Validate(); err == nil {
		t.Fatal("missing output path should fail validation")
	}
	if err := (ExportSiteCommand{OutputPath: "site.tar"}).Validate(); err == nil {
		t.Fatal("non-zip output should fail validation")
	}
	if err := (ExportSiteCommand{DryRun: true}).Validate(); err != nil {
		t.Fatalf("dry run without path should validate: %v", err)
	}
	if err := (ExportSiteCommand{OutputPath: "site.zip"}).Validate(); err != nil {
		t.Fatalf("valid command rejected: %v", err)
	}
}

func TestExportSiteHandlerWritesArchive(t *testing.T) {
	handler := NewExportSiteHandler(seededStore(t), newTestGenerator(), nil)
	out := filepath.Join(t.TempDir(), "site.zip")

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), ExportSiteCommand{
		OutputPath:     out,
		ResultCallback: func(e ResultEnvelope) { envelope = e },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if envelope.Result == nil || envelope.Result.PagesBuilt != 1 {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.ArchivePath != out {
		t.Fatalf("archive path = %q", envelope.ArchivePath)
	}

	reader, err := zip.OpenReader(out)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	found := false
	for _, f := range reader.File {
		if f.Name == "index.html" {
			found = true
		}
	}
	if !found {
		t.Fatal("archive missing index.html")
	}
}

func TestExportSiteHandlerDryRun(t *testing.T) {
	handler := NewExportSiteHandler(seededStore(t), newTestGenerator(), nil)

	var envelope ResultEnvelope
	err := handler.Execute(context.Background(), ExportSiteCommand{
		DryRun:         true,
		ResultCallback: func(e ResultEnvelope) { envelope = e },
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !envelope.DryRun || envelope.Result == nil {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.ArchivePath != "" {
		t.Fatal("dry run must not report an archive path")
	}
}

func TestExportSiteHandlerMissingStore(t *testing.T) {
	handler := NewExportSiteHandler(nil, newTestGenerator(), nil)
	err := handler.Execute(context.Background(), ExportSiteCommand{DryRun: true})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestExportSiteHandlerRemovesPartialArchive(t *testing.T) {
	store := seededStore(t)
	// Break the site after seeding: a store with a bad theme fails fatally.
	manifest := &site.Manifest{
		Title:   "Broken",
		ThemeID: "ghost",
		Structure: []*structure.Node{
			{Kind: structure.KindPage, Title: "Home", Path: "content/index.md", Slug: "index", LayoutID: "page"},
		},
	}
	if err := store.SaveManifest(context.Background(), manifest); err != nil {
		t.Fatalf("save manifest: %v", err)
	}

	out := filepath.Join(t.TempDir(), "site.zip")
	handler := NewExportSiteHandler(store, newTestGenerator(), nil)
	if err := handler.Execute(context.Background(), ExportSiteCommand{OutputPath: out}); err == nil {
		t.Fatal("expected export failure")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("failed export must not leave a partial archive")
	}
}
