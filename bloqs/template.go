package bloqs

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderPattern matches {{ name }} references in code templates.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// RenderTemplate expands a named-substitution template against the given
// bindings. Every referenced name must be bound; unbound references are
// configuration errors, never silently emitted as empty text.
func RenderTemplate(template string, bindings map[string]string) (string, error) {
	var unbound []string
	out := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, bound := bindings[name]
		if !bound {
			unbound = append(unbound, name)
			return match
		}
		return value
	})
	if len(unbound) > 0 {
		return "", fmt.Errorf("bloqs: template %q references unbound names: %s",
			template, strings.Join(unbound, ", "))
	}
	return out, nil
}
