package generator

import (
	"strings"
	"unicode"
)

// convertName applies a naming convention to a schema name.
//
// Supported conventions: "keep" (the default), "pascalCase", "upperCase" and
// "lowerCase", optionally prefixed with "change-case-all#". Unless
// transformUnderscore is set, underscores survive case conversion and each
// underscore-separated part is converted on its own.
func convertName(convention string, transformUnderscore bool, name string) string {
	convention = strings.TrimPrefix(convention, "change-case-all#")
	var conv func(string) string
	switch convention {
	case "", "keep":
		return name
	case "pascalCase":
		conv = pascalCase
	case "upperCase":
		conv = strings.ToUpper
	case "lowerCase":
		conv = strings.ToLower
	default:
		return name
	}
	if transformUnderscore {
		return conv(name)
	}
	parts := strings.Split(name, "_")
	for i, p := range parts {
		parts[i] = conv(p)
	}
	return strings.Join(parts, "_")
}

// pascalCase upper-cases the first letter of every word. Words are split on
// underscores, dashes, spaces and lower-to-upper transitions.
func pascalCase(s string) string {
	var b strings.Builder
	upperNext := true
	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		case unicode.IsUpper(r) && unicode.IsUpper(prev):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
