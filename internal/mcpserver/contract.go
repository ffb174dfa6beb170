package mcpserver

// TemplateLanguageContract describes the template mini-language that
// note and file-name templates must follow. Exposed to LLM consumers
// so they can author valid templates.
const TemplateLanguageContract = `# Laguz Template Language Contract

Note templates are plain text (usually Markdown with YAML front matter)
with embedded tags. Unknown text passes through unchanged.

## Substitution

` + "```" + `
{{name}}          value of "name"; missing or empty values render as ""
{{name.sub}}      field "sub" of the object "name" (e.g. {{collection.title}})
` + "```" + `

Whitespace inside tags is ignored: ` + "`" + `{{ title }}` + "`" + ` equals ` + "`" + `{{title}}` + "`" + `.
Substituting a list renders its elements comma-joined.

## Conditionals

` + "```" + `
{{#if name}}shown when truthy{{else}}otherwise{{/if}}
` + "```" + `

Falsy values: missing, empty string, "false", "0", empty list. Everything
else is truthy, including non-empty lists and objects.
Conditionals MUST NOT nest inside other conditionals; a loop inside a
conditional is allowed.

## Loops

` + "```" + `
{{#each tags}}- {{this}}
{{/each}}
{{#each highlights}}> {{text}} ({{note}})
{{/each}}
` + "```" + `

` + "`" + `{{this}}` + "`" + ` is the current element of a string list. Inside an object
list, field tags like ` + "`" + `{{text}}` + "`" + ` resolve against the current element;
a missing field renders as "". Loops do not nest.

## Structural errors

An unterminated ` + "`" + `{{#if}}` + "`" + ` or ` + "`" + `{{#each}}` + "`" + `, a stray ` + "`" + `{{/if}}` + "`" + `/` + "`" + `{{/each}}` + "`" + `/` + "`" + `{{else}}` + "`" + `,
and a nested conditional are structural errors: the bookmark is written
with a minimal fallback layout and counted as errored. A lone ` + "`" + `{{` + "`" + ` with
no closing braces is literal text, not an error.

## Available fields (note templates)

` + "```" + `
id, title, excerpt, note, link, cover, created, lastUpdate, type,
bannerFieldName            scalars (empty string when absent)
tags                       string list (configured append tags first)
highlights                 object list: text, note, color, created
collection                 object: id, title, path, parentId
                           (absent when the collection is unresolvable)
` + "```" + `

## File-name templates

File-name templates support ONLY ` + "`" + `{{title}}` + "`" + `, ` + "`" + `{{id}}` + "`" + `,
` + "`" + `{{collectionTitle}}` + "`" + ` and ` + "`" + `{{date}}` + "`" + ` (YYYY-MM-DD, or "no_date").
Characters illegal in file names are replaced with spaces.
`
