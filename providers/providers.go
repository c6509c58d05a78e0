// Package providers registers all known LLM backends.
// Import this package to make all backends available via provider.New():
//
//	import _ "github.com/randalmurphal/ollamakit/providers"
package providers

import (
	_ "github.com/randalmurphal/ollamakit/ollama"
)
