package notegen

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/starford/laguz/internal/hierarchy"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/template"
)

// Builder renders bookmark records into complete note bodies
// (YAML front matter + Markdown) using a template snapshot.
// It performs no I/O and holds no mutable state.
type Builder struct {
	tpl    Templates
	logger *slog.Logger
}

// New creates a Builder for the given template snapshot.
func New(tpl Templates, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{tpl: tpl, logger: logger}
}

// SelectTemplate picks the template string that applies to contentType:
//
//  1. UseDefaultOnly forces the global default.
//  2. OverrideDisabled uses the per-type template regardless of its
//     toggle, provided it is non-empty after trimming.
//  3. Otherwise the per-type template applies only when its toggle is
//     on and its text is non-empty; everything else falls back to the
//     global default.
//
// An unrecognized content type has no per-type entry and therefore
// always resolves to the default.
func (b *Builder) SelectTemplate(contentType string) string {
	if b.tpl.UseDefaultOnly {
		return b.tpl.Default
	}
	perType := strings.TrimSpace(b.tpl.ByType[contentType])
	if perType == "" {
		return b.tpl.Default
	}
	if b.tpl.OverrideDisabled || b.tpl.Enabled[contentType] {
		return b.tpl.ByType[contentType]
	}
	return b.tpl.Default
}

// BuildContext assembles the rendering context for one bookmark.
// Optional scalars default to empty strings; the collection sub-object
// is present only when the reference resolves in the hierarchy.
func (b *Builder) BuildContext(bm models.Bookmark, tree *hierarchy.Tree) template.Context {
	ctx := template.Context{
		"id":              template.String(strconv.FormatInt(bm.ID, 10)),
		"title":           template.String(bm.Title),
		"excerpt":         template.String(bm.Excerpt),
		"note":            template.String(bm.Note),
		"link":            template.String(bm.Link),
		"cover":           template.String(bm.Cover),
		"created":         template.String(bm.Created),
		"lastUpdate":      template.String(bm.LastUpdate),
		"type":            template.String(bm.Type),
		"bannerFieldName": template.String(b.tpl.BannerField),
		"tags":            template.StringList(MergeTags(b.tpl.AppendTags, bm.Tags)),
		"highlights":      template.ItemList(highlightItems(bm.Highlights)),
	}

	if bm.Collection != nil && tree != nil && tree.Known(bm.Collection.ID) {
		col := template.Context{
			"id":    template.String(strconv.FormatInt(bm.Collection.ID, 10)),
			"title": template.String(tree.Title(bm.Collection.ID)),
			"path":  template.String(tree.Path(bm.Collection.ID)),
		}
		if parent := tree.Parent(bm.Collection.ID); parent != 0 {
			col["parentId"] = template.String(strconv.FormatInt(parent, 10))
		}
		ctx["collection"] = template.Map(col)
	}

	return ctx
}

// Render produces the full note body for bm. A structural template
// failure is recovered locally: the minimal fallback layout is returned
// together with the error so the caller can count the record as errored
// instead of created or updated. The returned content is always usable.
func (b *Builder) Render(bm models.Bookmark, tree *hierarchy.Tree) (string, error) {
	tmpl := b.SelectTemplate(bm.Type)
	ctx := b.BuildContext(bm, tree)
	out, err := template.Render(tmpl, ctx)
	if err != nil {
		b.logger.Warn("template render failed, using fallback layout",
			slog.Int64("bookmark", bm.ID),
			slog.String("type", bm.Type),
			slog.String("error", err.Error()))
		return b.fallback(bm), fmt.Errorf("render bookmark %d: %w", bm.ID, err)
	}
	return out, nil
}

// fallback is the always-renderable minimal layout: title heading plus
// the raw excerpt, note, and source link.
func (b *Builder) fallback(bm models.Bookmark) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", bm.Title)
	if bm.Excerpt != "" {
		sb.WriteString("\n" + bm.Excerpt + "\n")
	}
	if bm.Note != "" {
		sb.WriteString("\n" + bm.Note + "\n")
	}
	if bm.Link != "" {
		sb.WriteString("\n" + bm.Link + "\n")
	}
	return sb.String()
}

// MergeTags unions the configured append list with the bookmark's own
// tags: entries are trimmed, duplicates removed, first occurrence wins,
// insertion order preserved.
func MergeTags(appendTags, recordTags []string) []string {
	out := make([]string, 0, len(appendTags)+len(recordTags))
	seen := make(map[string]struct{}, len(appendTags)+len(recordTags))
	for _, list := range [][]string{appendTags, recordTags} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func highlightItems(hs []models.Highlight) []template.Context {
	items := make([]template.Context, len(hs))
	for i, h := range hs {
		items[i] = template.Context{
			"text":    template.String(h.Text),
			"note":    template.String(h.Note),
			"color":   template.String(h.Color),
			"created": template.String(h.Created),
		}
	}
	return items
}
