// Package template renders prompt templates with variable substitution.
//
// Templates accept a simplified handlebars-like syntax alongside plain
// Go template syntax; the handlebars form is rewritten to Go template
// syntax before parsing, and parsed templates are cached per engine.
//
// # Syntax
//
// Simple variables use double braces:
//
//	Hello, {{name}}!
//
// Conditionals use #if and /if:
//
//	{{#if urgent}}URGENT: {{/if}}{{title}}
//
// Iteration uses #each and /each:
//
//	{{#each items}}{{.}} {{/each}}
//
// Built-in helpers take their arguments inline:
//
//	{{truncate description 100}}
//	{{join parts ", "}}
//
// # Built-in Helpers
//
//   - truncate(s string, max int) string - Cut to max bytes with ellipsis
//   - json(v any) string - Render as indented JSON
//   - upper(s string) string - Uppercase
//   - lower(s string) string - Lowercase
//   - trim(s string) string - Strip surrounding whitespace
//   - join(parts []string, sep string) string - Join with separator
//   - default(v, fallback any) any - Fallback for nil or empty string
//   - indent(s string, n int) string - Prefix each line with n spaces
//
// # Example
//
//	engine := template.NewEngine()
//	out, err := engine.Render("Answer the question using the results below.\n\n"+
//		"Question: {{question}}\n\n{{tool_results}}",
//		map[string]any{"question": q, "tool_results": results})
//
// # Variable Extraction
//
// Parse validates a template and lists the variables it references:
//
//	vars, err := engine.Parse("{{greeting}}, {{name}}!")
//	// vars: ["greeting", "name"]
//
// Pair it with ValidateVariables to reject incomplete data before
// rendering.
//
// # Custom Helpers
//
// Register extra helpers with AddFunc. Custom helpers are called with
// Go template syntax, dot prefix included:
//
//	engine.AddFunc("double", func(s string) string { return s + s })
//	out, _ := engine.Render("{{double .name}}", map[string]any{"name": "ha"})
//	// out: "haha"
package template
