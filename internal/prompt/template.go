// Package prompt renders prompt templates and resolves per-stage AI settings.
package prompt

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Substitute replaces every {{key}} token whose key is present in vars.
// Whitespace inside the braces is ignored. Tokens without a mapping are
// left in the output verbatim.
func Substitute(template string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(template, "{{") {
		return template
	}
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := tokenPattern.FindStringSubmatch(token)[1]
		if v, ok := vars[key]; ok {
			return v
		}
		return token
	})
}

// Tokens returns the distinct keys referenced by template, in first-seen order.
func Tokens(template string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range tokenPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}
