package template

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Engine renders prompt templates. Handlebars-style tags are rewritten
// to Go template syntax before parsing, and parsed templates are cached,
// so a prompt rendered on every request parses once.
type Engine struct {
	mu    sync.RWMutex
	funcs template.FuncMap
	cache map[string]*template.Template
}

// NewEngine creates an engine with the built-in helper functions.
func NewEngine() *Engine {
	return &Engine{
		funcs: builtins(),
		cache: make(map[string]*template.Template),
	}
}

// Render executes the template against the given variables.
func (e *Engine) Render(tmpl string, vars map[string]any) (string, error) {
	parsed, err := e.parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := parsed.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, err)
	}
	return buf.String(), nil
}

// Parse validates the template and returns the variable names it
// references, in order of first appearance.
func (e *Engine) Parse(tmpl string) ([]string, error) {
	if _, err := e.parse(tmpl); err != nil {
		return nil, err
	}
	return listVariables(tmpl), nil
}

// AddFunc registers a helper under the given name. Templates call custom
// helpers with Go template syntax: {{double .name}}.
func (e *Engine) AddFunc(name string, fn any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = fn
	// Cached templates were parsed against the old function set.
	e.cache = make(map[string]*template.Template)
}

func (e *Engine) parse(tmpl string) (*template.Template, error) {
	if tmpl == "" {
		return nil, ErrEmpty
	}

	e.mu.RLock()
	parsed, ok := e.cache[tmpl]
	e.mu.RUnlock()
	if ok {
		return parsed, nil
	}

	parsed, err := template.New("prompt").Funcs(e.funcs).Parse(convertSyntax(tmpl))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	e.mu.Lock()
	e.cache[tmpl] = parsed
	e.mu.Unlock()
	return parsed, nil
}

// ValidateVariables checks that every required variable is present.
// The returned error wraps ErrVariable and names the first one missing.
func ValidateVariables(required []string, vars map[string]any) error {
	for _, name := range required {
		if _, ok := vars[name]; !ok {
			return fmt.Errorf("%w: %s", ErrVariable, name)
		}
	}
	return nil
}
