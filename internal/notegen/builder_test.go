package notegen

import (
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/starford/laguz/internal/hierarchy"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/template"
)

func sampleBookmark() models.Bookmark {
	return models.Bookmark{
		ID:         42,
		Title:      "Go Proverbs",
		Excerpt:    "Simple, poetic, pithy.",
		Note:       "watch the talk",
		Link:       "https://go-proverbs.github.io/",
		Cover:      "https://example.com/cover.png",
		Created:    "2024-03-05T10:00:00Z",
		LastUpdate: "2024-03-06T11:00:00Z",
		Tags:       []string{"go", "talks"},
		Type:       models.TypeArticle,
		Collection: &models.CollectionRef{ID: 2, Title: "Reading"},
		Highlights: []models.Highlight{
			{Text: "Clear is better than clever.", Note: "yes", Created: "2024-03-05T10:05:00Z"},
			{Text: "Errors are values."},
		},
	}
}

func sampleTree() *hierarchy.Tree {
	return hierarchy.Build([]models.Collection{
		{ID: 1, Title: "Inbox"},
		{ID: 2, Title: "Reading", Parent: 1},
	})
}

func TestSelectTemplate_Policy(t *testing.T) {
	base := DefaultTemplates()
	base.Default = "DEFAULT"
	base.ByType[models.TypeArticle] = "ARTICLE"

	cases := []struct {
		name             string
		useDefaultOnly   bool
		overrideDisabled bool
		enabled          bool
		want             string
	}{
		{"default-only wins over everything", true, true, true, "DEFAULT"},
		{"override uses disabled per-type template", false, true, false, "ARTICLE"},
		{"enabled toggle uses per-type template", false, false, true, "ARTICLE"},
		{"disabled toggle falls back to default", false, false, false, "DEFAULT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := base
			tpl.UseDefaultOnly = tc.useDefaultOnly
			tpl.OverrideDisabled = tc.overrideDisabled
			tpl.Enabled = map[string]bool{models.TypeArticle: tc.enabled}
			b := New(tpl, nil)
			if got := b.SelectTemplate(models.TypeArticle); got != tc.want {
				t.Errorf("SelectTemplate = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectTemplate_BlankPerTypeFallsBack(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.Default = "DEFAULT"
	tpl.ByType[models.TypeVideo] = "   \n"
	tpl.Enabled[models.TypeVideo] = true
	b := New(tpl, nil)
	if got := b.SelectTemplate(models.TypeVideo); got != "DEFAULT" {
		t.Errorf("blank per-type template must fall back, got %q", got)
	}
}

func TestSelectTemplate_UnknownType(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.Default = "DEFAULT"
	b := New(tpl, nil)
	if got := b.SelectTemplate("hologram"); got != "DEFAULT" {
		t.Errorf("unknown type must use default, got %q", got)
	}
}

func TestBuildContext_Scalars(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	ctx := b.BuildContext(sampleBookmark(), sampleTree())

	for key, want := range map[string]string{
		"id":              "42",
		"title":           "Go Proverbs",
		"excerpt":         "Simple, poetic, pithy.",
		"link":            "https://go-proverbs.github.io/",
		"type":            "article",
		"created":         "2024-03-05T10:00:00Z",
		"lastUpdate":      "2024-03-06T11:00:00Z",
		"bannerFieldName": "banner",
	} {
		v, ok := template.Resolve(ctx, key)
		if !ok || v.Str != want {
			t.Errorf("ctx[%s] = (%q, %v), want %q", key, v.Str, ok, want)
		}
	}
}

func TestBuildContext_OptionalScalarsDefaultEmpty(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	bm := models.Bookmark{ID: 1, Title: "t", Link: "l", Type: models.TypeLink}
	ctx := b.BuildContext(bm, sampleTree())
	for _, key := range []string{"excerpt", "note", "cover"} {
		v, ok := template.Resolve(ctx, key)
		if !ok || v.Str != "" {
			t.Errorf("ctx[%s] = (%q, %v), want present and empty", key, v.Str, ok)
		}
	}
}

func TestBuildContext_Collection(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	ctx := b.BuildContext(sampleBookmark(), sampleTree())

	v, ok := template.Resolve(ctx, "collection.path")
	if !ok || v.Str != "Inbox/Reading" {
		t.Errorf("collection.path = (%q, %v)", v.Str, ok)
	}
	v, ok = template.Resolve(ctx, "collection.parentId")
	if !ok || v.Str != "1" {
		t.Errorf("collection.parentId = (%q, %v)", v.Str, ok)
	}
}

func TestBuildContext_UnresolvableCollectionOmitted(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	bm := sampleBookmark()
	bm.Collection = &models.CollectionRef{ID: 777, Title: "gone"}
	ctx := b.BuildContext(bm, sampleTree())
	if _, ok := template.Resolve(ctx, "collection"); ok {
		t.Error("unresolvable collection must be absent from the context")
	}
}

func TestBuildContext_TagMerge(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.AppendTags = []string{"a", "b"}
	b := New(tpl, nil)
	bm := sampleBookmark()
	bm.Tags = []string{"b", "c"}
	ctx := b.BuildContext(bm, sampleTree())
	v, _ := template.Resolve(ctx, "tags")
	if !reflect.DeepEqual(v.List, []string{"a", "b", "c"}) {
		t.Errorf("tags = %v, want [a b c]", v.List)
	}
}

func TestMergeTags(t *testing.T) {
	cases := []struct {
		appendTags, recordTags, want []string
	}{
		{[]string{"a", "b"}, []string{"b", "c"}, []string{"a", "b", "c"}},
		{nil, []string{" x ", "", "x"}, []string{"x"}},
		{[]string{"one"}, nil, []string{"one"}},
		{nil, nil, []string{}},
	}
	for i, tc := range cases {
		got := MergeTags(tc.appendTags, tc.recordTags)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("case %d: MergeTags = %v, want %v", i, got, tc.want)
		}
	}
}

func TestRender_DefaultTemplate(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	out, err := b.Render(sampleBookmark(), sampleTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out, "---\n") {
		t.Fatalf("output must start with front matter, got %q", out[:20])
	}
	rest := out[4:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		t.Fatal("front matter not closed")
	}

	// The generated front matter must be valid YAML.
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		t.Fatalf("front matter is not valid YAML: %v\n%s", err, rest[:end])
	}
	if fm["title"] != "Go Proverbs" {
		t.Errorf("front matter title = %v", fm["title"])
	}
	if fm["collection"] != "Inbox/Reading" {
		t.Errorf("front matter collection = %v", fm["collection"])
	}
	tags, _ := fm["tags"].([]any)
	if len(tags) != 2 || tags[0] != "go" {
		t.Errorf("front matter tags = %v", fm["tags"])
	}

	if !strings.Contains(out, "# Go Proverbs") {
		t.Error("body heading missing")
	}
	if !strings.Contains(out, "> Clear is better than clever.") {
		t.Error("highlight missing")
	}
	// Highlight order must match the record.
	if strings.Index(out, "Clear is better") > strings.Index(out, "Errors are values") {
		t.Error("highlight order not preserved")
	}
}

func TestRender_Idempotent(t *testing.T) {
	b := New(DefaultTemplates(), nil)
	a1, err := b.Render(sampleBookmark(), sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	a2, err := b.Render(sampleBookmark(), sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Error("rendering is not idempotent")
	}
}

func TestRender_StructuralFailureFallsBack(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.Default = "{{#if title}}broken"
	b := New(tpl, nil)
	bm := sampleBookmark()
	out, err := b.Render(bm, sampleTree())
	if err == nil {
		t.Fatal("expected render error to be reported")
	}
	if !strings.Contains(out, "# Go Proverbs") {
		t.Errorf("fallback layout missing title heading: %q", out)
	}
	if !strings.Contains(out, bm.Link) {
		t.Errorf("fallback layout missing link: %q", out)
	}
}

func TestRender_UnknownTypeUsesDefault(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.Default = "D:{{title}}"
	b := New(tpl, nil)
	bm := sampleBookmark()
	bm.Type = "weird"
	out, err := b.Render(bm, sampleTree())
	if err != nil {
		t.Fatal(err)
	}
	if out != "D:Go Proverbs" {
		t.Errorf("out = %q", out)
	}
}
