package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// builtins returns the helper set available to every template.
func builtins() template.FuncMap {
	return template.FuncMap{
		"default":  orDefault,
		"indent":   indent,
		"join":     strings.Join,
		"json":     toJSON,
		"lower":    strings.ToLower,
		"trim":     strings.TrimSpace,
		"truncate": clip,
		"upper":    strings.ToUpper,
	}
}

// clip cuts s to at most max bytes, marking the cut with an ellipsis
// when there is room for one.
func clip(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// toJSON renders a value as indented JSON, falling back to its plain
// string form when it cannot be marshaled.
func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// orDefault substitutes fallback for a nil or empty-string value.
func orDefault(v, fallback any) any {
	switch t := v.(type) {
	case nil:
		return fallback
	case string:
		if t == "" {
			return fallback
		}
	}
	return v
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
