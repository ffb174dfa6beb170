// Package notegen builds Markdown note content and file names for
// bookmark records: it assembles the rendering context, selects the
// applicable template, and delegates to the template engine.
package notegen

import "github.com/starford/laguz/internal/models"

// Templates is an immutable snapshot of the user's template
// configuration. The syncer receives a value, never a pointer into
// live settings, so a config reload cannot mutate an in-flight pass.
type Templates struct {
	// Default is the global template used when no per-type template applies.
	Default string `yaml:"default"`
	// ByType maps each content type (link, article, image, video,
	// document, audio) to its template string.
	ByType map[string]string `yaml:"by_type"`
	// Enabled maps each content type to its per-type toggle.
	Enabled map[string]bool `yaml:"enabled"`
	// Filename is the file-name template; it supports only {{title}},
	// {{id}}, {{collectionTitle}} and {{date}}.
	Filename string `yaml:"filename"`
	// BannerField is the front-matter key that holds the cover image.
	BannerField string `yaml:"banner_field"`
	// AppendTags are merged before each bookmark's own tags.
	AppendTags []string `yaml:"append_tags"`
	// UseDefaultOnly forces the global default template for every type.
	UseDefaultOnly bool `yaml:"use_default_only"`
	// OverrideDisabled uses per-type templates even when their toggle is off.
	OverrideDisabled bool `yaml:"override_disabled"`
}

// DefaultFilenameTemplate is used when the configured file-name template
// is blank.
const DefaultFilenameTemplate = "{{title}}"

// DefaultTemplate is the out-of-the-box note layout: YAML front matter
// followed by a Markdown body with optional excerpt, note, and highlights.
const DefaultTemplate = `---
id: {{id}}
title: "{{title}}"
source: {{link}}
type: {{type}}
created: {{created}}
updated: {{lastUpdate}}
{{#if collection}}collection: "{{collection.path}}"
{{/if}}{{#if cover}}{{bannerFieldName}}: {{cover}}
{{/if}}{{#if tags}}tags:
{{#each tags}}  - {{this}}
{{/each}}{{/if}}---

# {{title}}

{{#if excerpt}}{{excerpt}}

{{/if}}{{#if note}}{{note}}

{{/if}}{{#if highlights}}## Highlights

{{#each highlights}}> {{text}}

{{note}}

{{/each}}{{/if}}`

// DefaultTemplates returns the configuration used when the user has not
// customized anything: default template everywhere, all per-type
// toggles off.
func DefaultTemplates() Templates {
	byType := make(map[string]string, 6)
	enabled := make(map[string]bool, 6)
	for _, ct := range models.ContentTypes {
		byType[ct] = ""
		enabled[ct] = false
	}
	return Templates{
		Default:     DefaultTemplate,
		ByType:      byType,
		Enabled:     enabled,
		Filename:    DefaultFilenameTemplate,
		BannerField: "banner",
	}
}
