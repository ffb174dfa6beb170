package template

import (
	"fmt"
	"strings"
)

// The engine parses a template into a flat list of tagged nodes and
// evaluates them against a Context. Blocks are recognized structurally
// rather than by repeated pattern passes, so an {{#each}} inside an
// {{#if}} body survives the conditional intact. Nesting rules are
// deliberately narrow: {{#if}} may contain {{#each}}, nothing else
// nests. Nested conditionals are unsupported and rejected as a
// structural error rather than silently mis-rendered.

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeField
	nodeIf
	nodeEach
)

type node struct {
	kind nodeKind
	text string // nodeText: literal run
	name string // nodeField: dotted path; nodeIf/nodeEach: block subject
	body []node // nodeIf: then-branch; nodeEach: iteration body
	alt  []node // nodeIf: else-branch
}

// parse modes; they control which tags may open or close a region.
type parseMode int

const (
	modeTop parseMode = iota
	modeIf
	modeEach
)

// Render evaluates tmpl against ctx. Resolution misses render as empty
// strings and are never errors; only a structurally broken template
// (unterminated block, nested {{#if}}, stray close tag) fails.
func Render(tmpl string, ctx Context) (string, error) {
	p := &parser{src: tmpl}
	nodes, term, err := p.parseUntil(modeTop)
	if err != nil {
		return "", err
	}
	if term != "" {
		return "", fmt.Errorf("template: unexpected {{%s}}", term)
	}
	var b strings.Builder
	b.Grow(len(tmpl))
	eval(&b, nodes, ctx, nil)
	return b.String(), nil
}

type parser struct {
	src string
	pos int
}

// parseUntil consumes nodes until EOF or a region terminator valid for
// mode ("else" / "/if" in an if-body, "/each" in an each-body). It
// returns the consumed nodes and the terminator tag ("" at EOF).
func (p *parser) parseUntil(mode parseMode) ([]node, string, error) {
	var nodes []node
	for {
		open := strings.Index(p.src[p.pos:], "{{")
		if open < 0 {
			if rest := p.src[p.pos:]; rest != "" {
				nodes = append(nodes, node{kind: nodeText, text: rest})
			}
			p.pos = len(p.src)
			if mode != modeTop {
				return nil, "", fmt.Errorf("template: unterminated block")
			}
			return nodes, "", nil
		}
		open += p.pos

		closeIdx := strings.Index(p.src[open:], "}}")
		if closeIdx < 0 {
			// Dangling "{{" with no close: treat the rest as literal text.
			nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos:]})
			p.pos = len(p.src)
			if mode != modeTop {
				return nil, "", fmt.Errorf("template: unterminated block")
			}
			return nodes, "", nil
		}

		if open > p.pos {
			nodes = append(nodes, node{kind: nodeText, text: p.src[p.pos:open]})
		}
		inner := strings.TrimSpace(p.src[open+2 : open+closeIdx])
		p.pos = open + closeIdx + 2

		switch {
		case inner == "else" || inner == "/if":
			if mode != modeIf {
				return nil, "", fmt.Errorf("template: unexpected {{%s}}", inner)
			}
			return nodes, inner, nil

		case inner == "/each":
			if mode != modeEach {
				return nil, "", fmt.Errorf("template: unexpected {{/each}}")
			}
			return nodes, inner, nil

		case strings.HasPrefix(inner, "#if"):
			name := strings.TrimSpace(strings.TrimPrefix(inner, "#if"))
			if mode != modeTop {
				if mode == modeIf {
					return nil, "", fmt.Errorf("template: nested {{#if}} blocks are not supported")
				}
				return nil, "", fmt.Errorf("template: {{#if}} inside {{#each}} is not supported")
			}
			if name == "" {
				return nil, "", fmt.Errorf("template: {{#if}} without a field name")
			}
			n, err := p.parseIf(name)
			if err != nil {
				return nil, "", err
			}
			nodes = append(nodes, n)

		case strings.HasPrefix(inner, "#each"):
			name := strings.TrimSpace(strings.TrimPrefix(inner, "#each"))
			if mode == modeEach {
				return nil, "", fmt.Errorf("template: nested {{#each}} blocks are not supported")
			}
			if name == "" {
				return nil, "", fmt.Errorf("template: {{#each}} without a field name")
			}
			body, term, err := p.parseUntil(modeEach)
			if err != nil {
				return nil, "", err
			}
			if term != "/each" {
				return nil, "", fmt.Errorf("template: unterminated {{#each %s}}", name)
			}
			nodes = append(nodes, node{kind: nodeEach, name: name, body: body})

		case inner == "":
			// "{{}}" resolves to nothing; keep scanning.

		default:
			nodes = append(nodes, node{kind: nodeField, name: inner})
		}
	}
}

// parseIf consumes an if-body (and optional else-body) after {{#if name}}.
func (p *parser) parseIf(name string) (node, error) {
	body, term, err := p.parseUntil(modeIf)
	if err != nil {
		return node{}, err
	}
	n := node{kind: nodeIf, name: name, body: body}
	if term == "else" {
		alt, term2, err := p.parseUntil(modeIf)
		if err != nil {
			return node{}, err
		}
		if term2 == "else" {
			return node{}, fmt.Errorf("template: duplicate {{else}} in {{#if %s}}", name)
		}
		if term2 != "/if" {
			return node{}, fmt.Errorf("template: unterminated {{#if %s}}", name)
		}
		n.alt = alt
		return n, nil
	}
	if term != "/if" {
		return node{}, fmt.Errorf("template: unterminated {{#if %s}}", name)
	}
	return n, nil
}

// elemScope is the per-element binding inside an {{#each}} body.
// Exactly one of item / primitive is active.
type elemScope struct {
	item      Context
	primitive string
	isPrim    bool
}

func eval(b *strings.Builder, nodes []node, ctx Context, elem *elemScope) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			b.WriteString(n.text)

		case nodeField:
			b.WriteString(fieldValue(n.name, ctx, elem))

		case nodeIf:
			v, ok := Resolve(ctx, n.name)
			if ok && v.Truthy() {
				eval(b, n.body, ctx, elem)
			} else {
				eval(b, n.alt, ctx, elem)
			}

		case nodeEach:
			v, ok := Resolve(ctx, n.name)
			if !ok {
				continue
			}
			switch v.Kind {
			case KindStringList:
				for _, s := range v.List {
					eval(b, n.body, ctx, &elemScope{primitive: s, isPrim: true})
				}
			case KindItemList:
				for _, item := range v.Items {
					eval(b, n.body, ctx, &elemScope{item: item})
				}
			}
		}
	}
}

// fieldValue resolves a placeholder. Inside an iteration body, "this" is
// the current primitive element and other names resolve against the
// current item; outside, names resolve against the top-level context.
// A miss always renders empty, never the literal placeholder.
func fieldValue(name string, ctx Context, elem *elemScope) string {
	if elem != nil {
		if name == "this" {
			return elem.primitive
		}
		if elem.isPrim {
			return ""
		}
		if v, ok := Resolve(elem.item, name); ok {
			return v.Stringify()
		}
		return ""
	}
	if v, ok := Resolve(ctx, name); ok {
		return v.Stringify()
	}
	return ""
}
