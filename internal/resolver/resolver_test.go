package resolver

import (
	"fmt"
	"strings"
	"testing"

	"github.com/signumhq/signum/internal/content"
	"github.com/signumhq/signum/internal/structure"
)

type fixture struct {
	nodes []*structure.Node
	files map[string]*content.File
}

func newFixture(t *testing.T, itemsPerPage, posts int) *fixture {
	t.Helper()

	collection := fmt.Sprintf(`---
title: Blog
layout: list
collection:
  sortBy: date
  sortOrder: desc
  itemsPerPage: %d
---
All posts.
`, itemsPerPage)

	f := &fixture{files: map[string]*content.File{}}

	mustParse := func(path, raw string) *content.File {
		file, err := content.Parse(path, raw)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		f.files[path] = file
		return file
	}

	mustParse("content/index.md", "---\ntitle: Home\nlayout: page\n---\nWelcome.\n")
	mustParse("content/blog.md", collection)

	blog := &structure.Node{
		Kind:         structure.KindCollection,
		Title:        "Blog",
		Path:         "content/blog.md",
		Slug:         "blog",
		LayoutID:     "list",
		ItemLayoutID: "post",
	}
	for i := 1; i <= posts; i++ {
		path := fmt.Sprintf("content/blog/post-%02d.md", i)
		raw := fmt.Sprintf("---\ntitle: Post %d\nlayout: post\ndate: 2024-01-%02d\n---\nBody %d.\n", i, i, i)
		mustParse(path, raw)
		blog.Children = append(blog.Children, &structure.Node{
			Kind:     structure.KindPage,
			Title:    fmt.Sprintf("Post %d", i),
			Path:     path,
			Slug:     fmt.Sprintf("post-%02d", i),
			LayoutID: "post",
		})
	}

	f.nodes = []*structure.Node{
		{Kind: structure.KindPage, Title: "Home", Path: "content/index.md", Slug: "index", LayoutID: "page"},
		blog,
	}
	return f
}

func mustPage(t *testing.T, res Resolution) *Page {
	t.Helper()
	page, ok := res.(*Page)
	if !ok {
		nf := res.(*NotFound)
		t.Fatalf("expected page, got NotFound: %s", nf.Message)
	}
	return page
}

func TestResolveIndex(t *testing.T) {
	f := newFixture(t, 10, 3)
	page := mustPage(t, Resolve(f.nodes, f.files, nil, 1))
	if page.Title != "Home" || page.Route != "" || page.LayoutID != "page" {
		t.Fatalf("unexpected index resolution: %+v", page)
	}
	if page.IsCollection() {
		t.Fatal("index page should not carry collection items")
	}
}

func TestResolveEveryStructurePath(t *testing.T) {
	f := newFixture(t, 10, 5)
	structure.Walk(f.nodes, func(node *structure.Node) bool {
		route := structure.RoutePath(node.Path)
		res := ResolveRoute(f.nodes, f.files, route, 1)
		if _, ok := res.(*Page); !ok {
			t.Fatalf("route %q resolved to NotFound", route)
		}
		return true
	})
}

func TestResolveNotFoundMessages(t *testing.T) {
	f := newFixture(t, 10, 1)

	res := Resolve(f.nodes, f.files, []string{"missing"}, 1)
	nf, ok := res.(*NotFound)
	if !ok || !strings.Contains(nf.Message, "no structure entry") {
		t.Fatalf("expected structure-miss message, got %#v", res)
	}

	// A node whose backing file vanished is a storage inconsistency and must
	// say so, distinctly from a plain bad URL.
	delete(f.files, "content/blog/post-01.md")
	res = Resolve(f.nodes, f.files, []string{"blog", "post-01"}, 1)
	nf, ok = res.(*NotFound)
	if !ok || !strings.Contains(nf.Message, "has no content file") {
		t.Fatalf("expected storage-inconsistency message, got %#v", res)
	}
}

func TestCollectionSortedDescending(t *testing.T) {
	f := newFixture(t, 0, 4)
	// itemsPerPage 0 keeps the full list without pagination.
	page := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 1))
	if page.Pagination != nil {
		t.Fatal("expected no pagination without itemsPerPage")
	}
	if len(page.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(page.Items))
	}
	if page.Items[0].Frontmatter.Title != "Post 4" || page.Items[3].Frontmatter.Title != "Post 1" {
		t.Fatalf("items not sorted descending by date: first=%s last=%s",
			page.Items[0].Frontmatter.Title, page.Items[3].Frontmatter.Title)
	}
}

func TestCollectionExcludesGrandchildren(t *testing.T) {
	f := newFixture(t, 0, 2)
	child := f.nodes[1].Children[0]
	grandPath := "content/blog/post-01/nested.md"
	file, err := content.Parse(grandPath, "---\ntitle: Nested\nlayout: page\n---\nDeep.\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	f.files[grandPath] = file
	child.Children = append(child.Children, &structure.Node{
		Kind: structure.KindPage, Title: "Nested", Path: grandPath, Slug: "nested", LayoutID: "page",
	})

	page := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 1))
	for _, item := range page.Items {
		if item.Path == grandPath {
			t.Fatal("grandchild leaked into collection items")
		}
	}
}

func TestPaginationBoundaries(t *testing.T) {
	f := newFixture(t, 10, 23)

	page1 := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 1))
	p := page1.Pagination
	if p == nil {
		t.Fatal("expected pagination")
	}
	if p.TotalItems != 23 || p.TotalPages != 3 {
		t.Fatalf("expected 23 items over 3 pages, got %d/%d", p.TotalItems, p.TotalPages)
	}
	if len(page1.Items) != 10 || p.HasPrevPage || !p.HasNextPage {
		t.Fatalf("page 1 wrong: items=%d prev=%v next=%v", len(page1.Items), p.HasPrevPage, p.HasNextPage)
	}
	if p.NextPageURL != "/blog/page/2" {
		t.Fatalf("unexpected next URL %q", p.NextPageURL)
	}

	page3 := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 3))
	p = page3.Pagination
	if len(page3.Items) != 3 || p.HasNextPage || !p.HasPrevPage {
		t.Fatalf("page 3 wrong: items=%d prev=%v next=%v", len(page3.Items), p.HasPrevPage, p.HasNextPage)
	}
	if p.PrevPageURL != "/blog/page/2" {
		t.Fatalf("unexpected prev URL %q", p.PrevPageURL)
	}

	// Requesting a page past the end clamps to the last page.
	clamped := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 5))
	if clamped.Pagination.CurrentPage != 3 {
		t.Fatalf("expected clamp to page 3, got %d", clamped.Pagination.CurrentPage)
	}
	// And a nonsense page number clamps to page 1.
	low := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", -2))
	if low.Pagination.CurrentPage != 1 {
		t.Fatalf("expected clamp to page 1, got %d", low.Pagination.CurrentPage)
	}
}

func TestEmptyCollection(t *testing.T) {
	f := newFixture(t, 10, 0)
	page := mustPage(t, ResolveRoute(f.nodes, f.files, "blog", 1))
	if len(page.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(page.Items))
	}
	p := page.Pagination
	if p == nil || p.TotalPages != 1 || p.TotalItems != 0 {
		t.Fatalf("empty collection pagination inconsistent: %+v", p)
	}
	if p.HasPrevPage || p.HasNextPage {
		t.Fatal("empty collection should have no neighbouring pages")
	}
}

func TestSortStability(t *testing.T) {
	files := make([]*content.File, 0, 4)
	for i, title := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		raw := fmt.Sprintf("---\ntitle: %s\nlayout: post\nweight: 5\n---\nBody.\n", title)
		file, err := content.Parse(fmt.Sprintf("content/blog/x-%d.md", i), raw)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		files = append(files, file)
	}

	for _, order := range []content.SortOrder{content.SortAscending, content.SortDescending} {
		sorted := append([]*content.File(nil), files...)
		sortFiles(sorted, "weight", order)
		for i, file := range sorted {
			if file != files[i] {
				t.Fatalf("order %s broke stability at %d", order, i)
			}
		}
	}
}

func TestCompareValues(t *testing.T) {
	if compareValues("apple", "banana") >= 0 {
		t.Fatal("string comparison broken")
	}
	if compareValues(2, 10) >= 0 {
		t.Fatal("numeric comparison broken")
	}
	if compareValues("2024-01-02", "2024-01-10") >= 0 {
		t.Fatal("date-string comparison broken")
	}
	// Unparseable dates compare equal rather than failing.
	if compareValues("2024-01-02", "not a date") != 0 {
		t.Fatal("invalid date should compare equal")
	}
}
