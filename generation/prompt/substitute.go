package prompt

import (
	"regexp"
	"strings"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
	repeatedSpaces     = regexp.MustCompile(`[ \t]{2,}`)
)

// Variables is the placeholder bag. A key counts as present when its trimmed value is non-empty.
type Variables map[string]string

// Has reports whether key is present.
func (v Variables) Has(key string) bool {
	return strings.TrimSpace(v[key]) != ""
}

// Clone returns a shallow copy so callers can add keys without mutating the original.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Substitute replaces every {name} with its value and deletes unresolved placeholders.
// Replacement happens in a single pass: values are never re-expanded.
func Substitute(template string, vars Variables) string {
	out := placeholderPattern.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		if vars.Has(key) {
			return strings.TrimSpace(vars[key])
		}
		return ""
	})
	return cleanup(out)
}

// cleanup collapses blank lines and runs of spaces, then trims.
func cleanup(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(repeatedSpaces.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// Placeholders lists the placeholder names referenced by template, in order of first use.
func Placeholders(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
