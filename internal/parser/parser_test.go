package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/models"
)

func TestParse_HeaderAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - postdex\n---\n# Hello\nBody text.\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.HasHeader {
		t.Error("expected header")
	}
	if d.Meta["title"] != "Hello" {
		t.Errorf("title = %v, want Hello", d.Meta["title"])
	}
	tags, ok := d.Meta["tags"].([]any)
	if !ok || len(tags) != 2 || tags[0] != "go" || tags[1] != "postdex" {
		t.Errorf("tags = %#v, want [go postdex]", d.Meta["tags"])
	}
	if d.Body != "# Hello\nBody text.\n" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestParse_NoHeader(t *testing.T) {
	input := []byte("# Just a heading\nSome text.\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Meta != nil || d.HasHeader {
		t.Errorf("expected no header, got %v", d.Meta)
	}
	if d.Body != string(input) {
		t.Errorf("body = %q, want whole file", d.Body)
	}
}

func TestParse_EmptyHeader(t *testing.T) {
	d, err := Parse([]byte("---\n---\nbody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.HasHeader || len(d.Meta) != 0 {
		t.Errorf("HasHeader = %v, meta = %v", d.HasHeader, d.Meta)
	}
	if d.Body != "body" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestParse_UnclosedHeaderIsBody(t *testing.T) {
	input := []byte("---\ntitle: x\nno closing line\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasHeader || d.Body != string(input) {
		t.Errorf("expected whole file as body, got header=%v body=%q", d.HasHeader, d.Body)
	}
}

func TestParse_DelimiterMustBeWholeLine(t *testing.T) {
	input := []byte("----\ntitle: x\n---\nbody\n")
	d, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.HasHeader {
		t.Error("a line of four dashes is not a header delimiter")
	}
}

func TestParse_CRLF(t *testing.T) {
	d, err := Parse([]byte("---\r\ntitle: Win\r\n---\r\nbody\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Meta["title"] != "Win" {
		t.Errorf("title = %v", d.Meta["title"])
	}
	if d.Body != "body\r\n" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestParse_NullValueIsPresent(t *testing.T) {
	d, err := Parse([]byte("---\ncategory: null\n---\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Meta.Has("category") {
		t.Error("null category should count as present")
	}
}

func TestParse_DateStaysString(t *testing.T) {
	d, err := Parse([]byte("---\ndate: 2024-03-01T10:00:00Z\n---\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := d.Meta["date"].(string); !ok {
		t.Errorf("date decoded as %T, want string", d.Meta["date"])
	}
}

func TestParse_DateOnlyKeepsLiteralText(t *testing.T) {
	d, err := Parse([]byte("---\ntitle: a\ndate: 2024-01-02\nposted:\n  - 2023-05-06\n---\nx"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Meta["date"] != "2024-01-02" {
		t.Errorf("date = %#v, want \"2024-01-02\"", d.Meta["date"])
	}
	if posted, ok := d.Meta["posted"].([]any); !ok || len(posted) != 1 || posted[0] != "2023-05-06" {
		t.Errorf("posted = %#v", d.Meta["posted"])
	}
}

func TestParse_DuplicateKeyKeepsLast(t *testing.T) {
	d, err := Parse([]byte("---\ntitle: a\ntags: [x]\ntitle: b\n---\nbody"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Meta["title"] != "b" {
		t.Errorf("title = %v, want b", d.Meta["title"])
	}
	if len(d.Meta) != 2 {
		t.Errorf("meta = %v, want 2 keys", d.Meta)
	}
}

func TestParse_NoHeaderDropsLeadingBlankLines(t *testing.T) {
	cases := map[string]string{
		"plain":    "\n\n# Hi\n",
		"crlf":     "\r\n\r\n# Hi\n",
		"unclosed": "\n---\n# Hi\n",
	}
	want := map[string]string{
		"plain":    "# Hi\n",
		"crlf":     "# Hi\n",
		"unclosed": "---\n# Hi\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := Parse([]byte(input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.HasHeader {
				t.Error("unexpected header")
			}
			if d.Body != want[name] {
				t.Errorf("body = %q, want %q", d.Body, want[name])
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	cases := map[string]string{
		"broken mapping": "---\n: invalid: yaml: {{{\n---\nBody\n",
		"sequence":       "---\n- a\n- b\n---\nBody\n",
		"scalar":         "---\njust text\n---\nBody\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if !errors.Is(err, apperr.ErrHeaderParse) {
				t.Errorf("err = %v, want ErrHeaderParse", err)
			}
		})
	}
}

func TestRender_Format(t *testing.T) {
	meta := models.Metadata{
		"title":    "Hello",
		"tags":     []string{"b"},
		"category": nil,
	}
	got, err := Render(meta, "Body\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\ncategory: null\ntags:\n  - b\ntitle: Hello\n---\n\nBody\n"
	if string(got) != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_RoundTripByteIdentical(t *testing.T) {
	meta := models.Metadata{
		"title":    "Grüße",
		"date":     "2024-03-01T10:00:00Z",
		"summary":  "",
		"category": "notes",
		"tags":     []any{"go", "yaml"},
	}
	first, err := Render(meta, "Body text\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	d, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(d.Meta, meta) {
		t.Errorf("meta = %#v, want %#v", d.Meta, meta)
	}
	second, err := Render(d.Meta, d.Body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("round trip changed bytes:\n%s\n---vs---\n%s", first, second)
	}
}

func TestRender_DateOnlyRoundTrip(t *testing.T) {
	input := "---\ndate: 2024-01-02\ntitle: a\n---\n\nx"
	d, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, err := Render(d.Meta, d.Body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(got) != input {
		t.Errorf("Render =\n%s\nwant\n%s", got, input)
	}
}

func TestRender_PlainStringsStayQuoted(t *testing.T) {
	got, err := Render(models.Metadata{"summary": "123", "title": "true"}, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\nsummary: \"123\"\ntitle: \"true\"\n---\n\n"
	if string(got) != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_EmptyMeta(t *testing.T) {
	got, err := Render(nil, "x")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(got) != "---\n---\n\nx" {
		t.Errorf("Render = %q", got)
	}
}
