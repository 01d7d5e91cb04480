package content

import (
	"context"
	"errors"
	"strings"
	"testing"
)

const samplePost = `---
title: First Post
layout: post
date: 2024-03-01
tags:
  - go
  - static
---
# Hello

Body text.
`

func TestParseExtractsFrontmatter(t *testing.T) {
	file, err := Parse("content/blog/first.md", samplePost)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if file.Slug != "first" {
		t.Fatalf("expected slug first, got %q", file.Slug)
	}
	if file.Frontmatter.Title != "First Post" {
		t.Fatalf("unexpected title %q", file.Frontmatter.Title)
	}
	if file.Frontmatter.Layout != "post" {
		t.Fatalf("unexpected layout %q", file.Frontmatter.Layout)
	}
	if file.Frontmatter.Value("date") == nil {
		t.Fatal("expected date to pass through to raw values")
	}
	if !strings.Contains(file.Body, "Body text.") {
		t.Fatalf("body lost: %q", file.Body)
	}
}

func TestParseRequiresTitleAndLayout(t *testing.T) {
	_, err := Parse("content/x.md", "---\ntitle: Only Title\n---\nbody")
	if !errors.Is(err, ErrFrontmatterInvalid) {
		t.Fatalf("expected ErrFrontmatterInvalid for missing layout, got %v", err)
	}
	_, err = Parse("content/x.md", "---\nlayout: page\n---\nbody")
	if !errors.Is(err, ErrFrontmatterInvalid) {
		t.Fatalf("expected ErrFrontmatterInvalid for missing title, got %v", err)
	}
}

func TestParseCollectionBlock(t *testing.T) {
	raw := `---
title: Blog
layout: list
collection:
  sortBy: date
  sortOrder: desc
  itemsPerPage: 10
---
Intro.
`
	file, err := Parse("content/blog.md", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := file.Frontmatter.Collection
	if cfg == nil {
		t.Fatal("expected collection config")
	}
	if cfg.SortBy != "date" || cfg.SortOrder != SortDescending || cfg.ItemsPerPage != 10 {
		t.Fatalf("unexpected collection config: %+v", cfg)
	}
}

func TestParseRejectsBadCollection(t *testing.T) {
	raw := `---
title: Blog
layout: list
collection:
  sortOrder: sideways
---
`
	if _, err := Parse("content/blog.md", raw); !errors.Is(err, ErrFrontmatterInvalid) {
		t.Fatalf("expected ErrFrontmatterInvalid, got %v", err)
	}
}

func TestSourceRoundTrip(t *testing.T) {
	file, err := Parse("content/blog/first.md", samplePost)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if file.Source() != samplePost {
		t.Fatalf("source round trip changed document:\n%s", file.Source())
	}

	// Idempotence: parsing the reconstituted source yields the same source.
	again, err := Parse(file.Path, file.Source())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.Source() != samplePost {
		t.Fatal("parse/stringify pair is not idempotent")
	}
}

func TestSourceForProgrammaticFile(t *testing.T) {
	file := &File{
		Path: "content/about.md",
		Slug: "about",
		Frontmatter: Frontmatter{
			Title:  "About",
			Layout: "page",
			Raw:    map[string]any{"title": "About", "layout": "page"},
		},
		Body: "About us.\n",
	}
	reparsed, err := Parse(file.Path, file.Source())
	if err != nil {
		t.Fatalf("reparse programmatic source: %v", err)
	}
	if reparsed.Frontmatter.Title != "About" || reparsed.Body != "About us.\n" {
		t.Fatalf("programmatic source lost data: %+v", reparsed)
	}
}

func TestServiceSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{saved: map[string][]byte{}}
	svc := NewService(nil, WithStore(store))

	file, err := svc.Save(ctx, "content/blog/first.md", samplePost)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got, err := svc.Get(file.Path); err != nil || got != file {
		t.Fatalf("get after save: %v", err)
	}
	if string(store.saved[file.Path]) != samplePost {
		t.Fatal("store did not receive raw source")
	}

	if err := svc.Delete(ctx, file.Path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(file.Path); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if !store.deleted[file.Path] {
		t.Fatal("store did not receive delete")
	}
}

func TestServiceSaveRejectsInvalid(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Save(context.Background(), "content/x.md", "no frontmatter"); err == nil {
		t.Fatal("expected error for document without frontmatter contract")
	}
}

type recordingStore struct {
	saved   map[string][]byte
	deleted map[string]bool
}

func (r *recordingStore) SaveContent(_ context.Context, path string, raw []byte) error {
	if r.saved == nil {
		r.saved = map[string][]byte{}
	}
	r.saved[path] = append([]byte(nil), raw...)
	return nil
}

func (r *recordingStore) DeleteContent(_ context.Context, path string) error {
	if r.deleted == nil {
		r.deleted = map[string]bool{}
	}
	r.deleted[path] = true
	return nil
}
