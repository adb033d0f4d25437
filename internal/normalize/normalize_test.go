package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/starford/postdex/internal/models"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func TestNormalize_EmptyMetadata(t *testing.T) {
	got, changed := Normalize(nil, "a/b/c.md", fixedNow)
	if !changed {
		t.Fatal("expected changed")
	}
	want := models.Metadata{
		"title":    "c",
		"date":     "2026-10-15T09:30:00Z",
		"summary":  "",
		"category": "a",
		"tags":     []any{"b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestNormalize_CategoryTagsFromPath(t *testing.T) {
	cases := []struct {
		path     string
		category any
		tags     []any
	}{
		{"a/b/c.md", "a", []any{"b"}},
		{"a/b/c/d.md", "a", []any{"b", "c"}},
		{"a/b.md", "a", []any{}},
		{"a.md", nil, []any{}},
		{`win\dir\doc.md`, "win", []any{"dir"}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			got, _ := Normalize(models.Metadata{"title": "x"}, tc.path, fixedNow)
			if !reflect.DeepEqual(got["category"], tc.category) {
				t.Errorf("category = %#v, want %#v", got["category"], tc.category)
			}
			if !reflect.DeepEqual(got["tags"], tc.tags) {
				t.Errorf("tags = %#v, want %#v", got["tags"], tc.tags)
			}
		})
	}
}

func TestNormalize_OnlyMissingHalfOfPairIsFilled(t *testing.T) {
	in := models.Metadata{
		"title":    "t",
		"date":     "d",
		"summary":  "s",
		"category": "custom",
	}
	got, changed := Normalize(in, "a/b/c.md", fixedNow)
	if !changed {
		t.Fatal("expected changed")
	}
	if got["category"] != "custom" {
		t.Errorf("category overwritten: %v", got["category"])
	}
	if !reflect.DeepEqual(got["tags"], []any{"b"}) {
		t.Errorf("tags = %#v, want [b]", got["tags"])
	}

	in = models.Metadata{"title": "t", "date": "d", "summary": "s", "tags": []any{"x"}}
	got, _ = Normalize(in, "a/b/c.md", fixedNow)
	if got["category"] != "a" {
		t.Errorf("category = %v, want a", got["category"])
	}
	if !reflect.DeepEqual(got["tags"], []any{"x"}) {
		t.Errorf("tags overwritten: %#v", got["tags"])
	}
}

func TestNormalize_NullFieldsArePresent(t *testing.T) {
	in := models.Metadata{
		"title":    nil,
		"date":     nil,
		"summary":  nil,
		"category": nil,
		"tags":     nil,
	}
	got, changed := Normalize(in, "a/b/c.md", fixedNow)
	if changed {
		t.Error("null-valued fields count as present")
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("got %#v", got)
	}
}

func TestNormalize_Additive(t *testing.T) {
	in := models.Metadata{
		"title":  "Keep",
		"date":   "2001-01-01",
		"extra":  map[string]any{"nested": true},
		"author": "someone",
	}
	got, _ := Normalize(in, "x/y.md", fixedNow)
	for k, v := range in {
		if !reflect.DeepEqual(got[k], v) {
			t.Errorf("field %q changed: %#v → %#v", k, v, got[k])
		}
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := models.Metadata{"title": "t"}
	_, _ = Normalize(in, "a.md", fixedNow)
	if len(in) != 1 {
		t.Errorf("input mutated: %#v", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	paths := []string{"a.md", "a/b.md", "a/b/c.md", "deep/er/still/doc.md"}
	for _, p := range paths {
		first, changed := Normalize(nil, p, fixedNow)
		if !changed {
			t.Fatalf("%s: first pass should change", p)
		}
		second, changed := Normalize(first, p, fixedNow.Add(time.Hour))
		if changed {
			t.Errorf("%s: second pass changed", p)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: metadata differs after second pass", p)
		}
	}
}

func TestNormalize_CompleteIsNoop(t *testing.T) {
	in := models.Metadata{
		"title":    "t",
		"date":     "d",
		"summary":  "",
		"category": nil,
		"tags":     []any{},
	}
	_, changed := Normalize(in, "a/b/c.md", fixedNow)
	if changed {
		t.Error("complete metadata should not change")
	}
}

func TestSlugAndStem(t *testing.T) {
	if got := Slug("a/b/my.post.md"); got != "a/b/my.post" {
		t.Errorf("Slug = %q", got)
	}
	if got := Slug(`a\b.md`); got != "a/b" {
		t.Errorf("Slug = %q", got)
	}
	if got := Stem("dir/my.post.md"); got != "my.post" {
		t.Errorf("Stem = %q", got)
	}
}
