// Package template implements the note templating mini-language:
// bare {{name}} and {{name.sub}} substitutions, {{#if name}}...{{else}}...{{/if}}
// conditional blocks, and {{#each name}}...{{/each}} iteration blocks,
// evaluated against a per-bookmark rendering context.
package template

import "strings"

// Kind discriminates the closed set of context value shapes.
type Kind int

const (
	// KindString is a plain scalar, possibly empty.
	KindString Kind = iota
	// KindStringList is an ordered list of scalars (e.g. tags).
	KindStringList
	// KindItemList is an ordered list of nested contexts (e.g. highlights).
	KindItemList
	// KindMap is a single nested context (e.g. the collection sub-object).
	KindMap
)

// Value is one field of a rendering context.
type Value struct {
	Kind  Kind
	Str   string
	List  []string
	Items []Context
	Map   Context
}

// Context is the immutable data a template is evaluated against.
// It is built fresh per bookmark and never mutated during rendering.
type Context map[string]Value

// String wraps a scalar.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// StringList wraps an ordered list of scalars.
func StringList(ss []string) Value { return Value{Kind: KindStringList, List: ss} }

// ItemList wraps an ordered list of nested contexts.
func ItemList(items []Context) Value { return Value{Kind: KindItemList, Items: items} }

// Map wraps a nested context.
func Map(c Context) Value { return Value{Kind: KindMap, Map: c} }

// Truthy reports whether v selects the then-branch of a conditional.
// Lists are truthy iff non-empty. Scalars follow standard truthiness:
// empty string, "false" and "0" are falsy. Nested maps are always truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindString:
		return v.Str != "" && v.Str != "false" && v.Str != "0"
	case KindStringList:
		return len(v.List) > 0
	case KindItemList:
		return len(v.Items) > 0
	case KindMap:
		return v.Map != nil
	}
	return false
}

// Stringify returns the natural string form of v for bare substitution.
// Scalar lists join with commas; item lists and maps have no useful
// scalar form and render empty.
func (v Value) Stringify() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindStringList:
		return strings.Join(v.List, ",")
	}
	return ""
}
