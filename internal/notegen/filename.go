package notegen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/sanitize"
)

// FileName renders the configured file-name template for bm and returns
// a sanitized, guaranteed non-empty name (without extension). This is a
// deliberately narrower pass than the note template engine: only
// {{title}}, {{id}}, {{collectionTitle}} and {{date}} are substituted,
// and {{date}} is pre-formatted as YYYY-MM-DD (or "no_date" when the
// creation timestamp is missing or unparsable).
func (b *Builder) FileName(bm models.Bookmark, collectionTitle string) string {
	tmpl := strings.TrimSpace(b.tpl.Filename)
	if tmpl == "" {
		tmpl = DefaultFilenameTemplate
	}

	r := strings.NewReplacer(
		"{{title}}", sanitize.Segment(bm.Title),
		"{{id}}", strconv.FormatInt(bm.ID, 10),
		"{{collectionTitle}}", sanitize.Segment(collectionTitle),
		"{{date}}", fileDate(bm.Created),
	)
	name := strings.TrimSpace(r.Replace(tmpl))

	if name == "" {
		// Every bookmark must yield a usable name.
		if bm.ID != 0 {
			return fmt.Sprintf("bookmark-%d", bm.ID)
		}
		return fmt.Sprintf("bookmark-%d", time.Now().Unix())
	}
	return name
}

// fileDate formats an ISO 8601 timestamp as YYYY-MM-DD, or "no_date".
func fileDate(created string) string {
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return "no_date"
	}
	return t.Format("2006-01-02")
}
