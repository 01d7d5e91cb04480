package signum

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/signumhq/signum/internal/render"
)

func TestModuleExportsDemoSite(t *testing.T) {
	ctx := context.Background()
	store, err := SeedDemoSite(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	loaded, err := store.LoadSite(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	module := New(Config{})
	data, err := module.Export(ctx, loaded)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	found := map[string]bool{}
	for _, f := range reader.File {
		found[f.Name] = true
	}
	for _, want := range []string{
		"index.html",
		"blog/index.html",
		"blog/hello-world/index.html",
		"_signum/manifest.json",
		"_signum/content/blog/hello-world.md",
		"_signum/themes/default/base.html",
		"rss.xml",
		"sitemap.xml",
	} {
		if !found[want] {
			t.Fatalf("archive missing %s", want)
		}
	}
}

func TestModuleResolveAndRender(t *testing.T) {
	ctx := context.Background()
	store, err := SeedDemoSite(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	loaded, err := store.LoadSite(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	module := New(Config{})
	res := module.Resolve(loaded, "blog", 1)
	page, ok := res.(*Page)
	if !ok {
		t.Fatalf("expected page, got %T", res)
	}
	if !page.IsCollection() || len(page.Items) != 2 {
		t.Fatalf("unexpected collection resolution: %+v", page)
	}
	// Descending by date: the later post first.
	if page.Items[0].Frontmatter.Title != "Second Post" {
		t.Fatalf("items out of order: %s first", page.Items[0].Frontmatter.Title)
	}

	html, err := module.Render(loaded, res, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Hello World") || !strings.Contains(html, "Second Post") {
		t.Fatalf("listing markup incomplete:\n%s", html)
	}

	if _, ok := module.Resolve(loaded, "nope", 1).(*NotFound); !ok {
		t.Fatal("unknown route should resolve to NotFound")
	}
}
