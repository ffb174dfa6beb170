// Package hierarchy resolves collection identifiers to slash-joined
// vault folder paths mirroring the service's collection forest.
package hierarchy

import (
	"fmt"
	"strings"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/sanitize"
)

// maxDepth bounds the parent walk. The API contract forbids cycles, but
// a corrupted parent chain must not hang a sync pass.
const maxDepth = 64

// Tree is an immutable index of the collection forest.
type Tree struct {
	nodes map[int64]models.Collection
}

// Build indexes the collection list by identifier.
func Build(cols []models.Collection) *Tree {
	nodes := make(map[int64]models.Collection, len(cols))
	for _, c := range cols {
		nodes[c.ID] = c
	}
	return &Tree{nodes: nodes}
}

// Known reports whether id is present in the forest.
func (t *Tree) Known(id int64) bool {
	_, ok := t.nodes[id]
	return ok
}

// Title returns the raw (unsanitized) title for id, or "" if unknown.
func (t *Tree) Title(id int64) string {
	return t.nodes[id].Title
}

// Parent returns the parent identifier for id, or 0 if unknown or root.
func (t *Tree) Parent(id int64) int64 {
	return t.nodes[id].Parent
}

// segment returns the sanitized path segment for id. A collection whose
// identifier cannot be resolved to a usable name still yields a
// placeholder segment so path depth is preserved.
func (t *Tree) segment(id int64) string {
	if n, ok := t.nodes[id]; ok {
		if s := sanitize.Segment(n.Title); s != "" {
			return s
		}
	}
	return fmt.Sprintf("Unknown_Collection_%d", id)
}

// Path returns the forward-slash-joined path from the forest root down
// to (and including) id. A parent reference that cannot be resolved is
// treated as a root; an id missing from the forest entirely renders as
// a single placeholder segment.
func (t *Tree) Path(id int64) string {
	segs := make([]string, 0, 4)
	seen := make(map[int64]struct{}, 4)
	cur := id
	for depth := 0; depth < maxDepth; depth++ {
		if _, dup := seen[cur]; dup {
			break
		}
		seen[cur] = struct{}{}
		segs = append(segs, t.segment(cur))
		n, ok := t.nodes[cur]
		if !ok || n.Parent == 0 {
			break
		}
		cur = n.Parent
	}
	// Walked leaf-up; reverse to root-down order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, "/")
}
