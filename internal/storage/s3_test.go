package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestPhotoKeyLayout(t *testing.T) {
	id := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	key := PhotoKey("properties", id, "Front View.JPG")

	if !strings.HasPrefix(key, "properties/11111111-2222-4333-8444-555555555555/") {
		t.Fatalf("unexpected prefix in %q", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected lower-cased extension, got %q", key)
	}
	if PhotoKey("properties", id, "a.jpg") == PhotoKey("properties", id, "a.jpg") {
		t.Fatal("expected unique keys for repeated uploads")
	}
}

func TestURLWithoutBase(t *testing.T) {
	s := &PhotoStore{}
	if got := s.URL("a/b.jpg"); got != "" {
		t.Fatalf("expected empty url, got %q", got)
	}
	s.baseURL = "https://cdn.example.com"
	if got := s.URL("a/b.jpg"); got != "https://cdn.example.com/a/b.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}
