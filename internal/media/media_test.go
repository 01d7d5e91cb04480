package media

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/signumhq/signum/internal/content"
)

func TestMemoryServiceRoundTrip(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	info, err := svc.Upload(ctx, "hero.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if info.ID == "" || info.Size != 9 {
		t.Fatalf("unexpected info: %+v", info)
	}

	rc, err := svc.Open(ctx, info.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "png-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}

	stat, err := svc.Stat(ctx, info.ID)
	if err != nil || stat.Name != "hero.png" || stat.MimeType != "image/png" {
		t.Fatalf("stat: %+v err %v", stat, err)
	}

	if _, err := svc.Open(ctx, "missing"); !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}
}

func TestParseRef(t *testing.T) {
	if id, ok := ParseRef("asset://abc-123"); !ok || id != "abc-123" {
		t.Fatalf("ParseRef = %q %v", id, ok)
	}
	if _, ok := ParseRef("https://example.com/x.png"); ok {
		t.Fatal("non-asset URL should not parse")
	}
	if _, ok := ParseRef("asset://"); ok {
		t.Fatal("empty id should not parse")
	}
}

func TestScanFile(t *testing.T) {
	raw := `---
title: Gallery
layout: page
cover: asset://id-one
images:
  - asset://id-two
  - caption: nested
    src: asset://id-three
---
Inline ![shot](asset://id-one) and ![other](asset://id-four).
`
	file, err := content.Parse("content/gallery.md", raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	ids := ScanFile(file)
	want := map[string]bool{"id-one": true, "id-two": true, "id-three": true, "id-four": true}
	if len(ids) != len(want) {
		t.Fatalf("got ids %v", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("unexpected id %q in %v", id, ids)
		}
	}
	// Body ids come first and duplicates collapse.
	if ids[0] != "id-one" {
		t.Fatalf("expected body scan first, got %v", ids)
	}
}
