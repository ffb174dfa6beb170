// Package sanitize strips characters that are unsafe in vault file paths.
package sanitize

import "strings"

// Characters rejected by at least one common filesystem or shell, plus
// characters that break wiki-style links in vault applications.
const illegal = "/\\:*?\"<>|#%&{}$!'@`+="

// Segment returns s with path-illegal characters replaced by spaces,
// space runs collapsed, and surrounding whitespace trimmed. The result
// may be empty; callers needing a non-empty name must supply a fallback.
func Segment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if strings.ContainsRune(illegal, r) {
			r = ' '
		}
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
