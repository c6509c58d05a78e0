package template

import "errors"

// Sentinel errors. Render and Parse wrap these so callers can
// distinguish failure stages with errors.Is.
var (
	// ErrEmpty reports an empty template string.
	ErrEmpty = errors.New("template is empty")

	// ErrParse reports a template that fails to parse.
	ErrParse = errors.New("template parse error")

	// ErrExecute reports a template that parses but fails to execute.
	ErrExecute = errors.New("template execution error")

	// ErrVariable reports a required variable missing from the data.
	ErrVariable = errors.New("required variable missing")
)
