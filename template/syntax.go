package template

import (
	"regexp"
	"strings"
)

// segmentRegex matches a single {{...}} tag. Tags never nest, so a
// character class excluding braces is enough.
var segmentRegex = regexp.MustCompile(`\{\{[^{}]*\}\}`)

// goKeywords are tag bodies that are already Go template control flow
// and must pass through untouched.
var goKeywords = map[string]bool{
	"block":    true,
	"define":   true,
	"else":     true,
	"end":      true,
	"if":       true,
	"range":    true,
	"template": true,
	"with":     true,
}

// helperSet holds the built-in helper names for tag rewriting. Helpers
// added with AddFunc are not included; those are called with Go template
// syntax directly.
var helperSet = builtins()

// convertSyntax rewrites handlebars-style tags into Go template syntax:
// {{name}} becomes {{.name}}, {{#if x}}...{{/if}} becomes
// {{if .x}}...{{end}}, {{#each xs}}...{{/each}} becomes
// {{range .xs}}...{{end}}, and built-in helper arguments gain their dot
// prefixes. Tags already in Go template syntax pass through unchanged.
func convertSyntax(input string) string {
	return segmentRegex.ReplaceAllStringFunc(input, convertSegment)
}

func convertSegment(seg string) string {
	body := strings.TrimSpace(seg[2 : len(seg)-2])
	switch {
	case body == "":
		return seg
	case body == "/if", body == "/each":
		return "{{end}}"
	case strings.HasPrefix(body, "#if "):
		return "{{if " + varRef(strings.TrimSpace(body[len("#if "):])) + "}}"
	case strings.HasPrefix(body, "#each "):
		return "{{range " + varRef(strings.TrimSpace(body[len("#each "):])) + "}}"
	}

	args := splitArgs(body)
	switch {
	case len(args) == 1 && isIdent(args[0]) && !goKeywords[args[0]]:
		return "{{" + varRef(args[0]) + "}}"
	case len(args) > 1 && isHelper(args[0]):
		converted := make([]string, len(args))
		converted[0] = args[0]
		for i, arg := range args[1:] {
			converted[i+1] = varRef(arg)
		}
		return "{{" + strings.Join(converted, " ") + "}}"
	}
	return seg
}

// varRef prefixes a bare identifier with the data dot. Literals,
// booleans, and terms that already carry a dot stay as they are.
func varRef(s string) string {
	if isIdent(s) && s != "true" && s != "false" {
		return "." + s
	}
	return s
}

func isHelper(name string) bool {
	_, ok := helperSet[name]
	return ok
}

// splitArgs splits a tag body on whitespace, keeping quoted strings
// whole.
func splitArgs(body string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	for _, r := range body {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}

// isIdent reports whether s is a bare variable name: letters, digits,
// and underscores, not starting with a digit.
func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}

// listVariables returns the bare variable names a template references,
// in order of first appearance.
func listVariables(input string) []string {
	seen := make(map[string]bool)
	var names []string
	note := func(s string) {
		if isIdent(s) && !goKeywords[s] && s != "true" && s != "false" && !seen[s] {
			seen[s] = true
			names = append(names, s)
		}
	}

	for _, seg := range segmentRegex.FindAllString(input, -1) {
		body := strings.TrimSpace(seg[2 : len(seg)-2])
		body = strings.TrimPrefix(body, "#if ")
		body = strings.TrimPrefix(body, "#each ")
		args := splitArgs(body)
		switch {
		case len(args) == 1:
			note(args[0])
		case len(args) > 1 && isHelper(args[0]):
			for _, arg := range args[1:] {
				note(arg)
			}
		}
	}
	return names
}
