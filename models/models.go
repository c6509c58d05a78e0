package models

import "strings"

// Family identifies a model family served by Ollama.
type Family string

// Known model families.
const (
	FamilyLlama      Family = "llama"
	FamilyMistral    Family = "mistral"
	FamilyMixtral    Family = "mixtral"
	FamilyQwen       Family = "qwen"
	FamilyGemma      Family = "gemma"
	FamilyPhi        Family = "phi"
	FamilyDeepseekR1 Family = "deepseek-r1"
	FamilyLlava      Family = "llava"
	FamilyNomicEmbed Family = "nomic-embed"
	FamilyMxbaiEmbed Family = "mxbai-embed"
	FamilyUnknown    Family = "unknown"
)

// Info describes what a model supports. ContextLength is the window the
// current generation of the family ships with; older releases may be
// smaller.
type Info struct {
	Family        Family
	ContextLength int
	Tools         bool
	Vision        bool
	Reasoning     bool
	Embedding     bool
}

var families = map[Family]Info{
	FamilyLlama:      {Family: FamilyLlama, ContextLength: 131072, Tools: true},
	FamilyMistral:    {Family: FamilyMistral, ContextLength: 32768, Tools: true},
	FamilyMixtral:    {Family: FamilyMixtral, ContextLength: 32768, Tools: true},
	FamilyQwen:       {Family: FamilyQwen, ContextLength: 32768, Tools: true},
	FamilyGemma:      {Family: FamilyGemma, ContextLength: 8192},
	FamilyPhi:        {Family: FamilyPhi, ContextLength: 4096},
	FamilyDeepseekR1: {Family: FamilyDeepseekR1, ContextLength: 131072, Reasoning: true},
	FamilyLlava:      {Family: FamilyLlava, ContextLength: 4096, Vision: true},
	FamilyNomicEmbed: {Family: FamilyNomicEmbed, ContextLength: 8192, Embedding: true},
	FamilyMxbaiEmbed: {Family: FamilyMxbaiEmbed, ContextLength: 512, Embedding: true},
}

// defaultInfo is assumed for models outside the table: a plain chat model
// with tool support and a moderate window.
var defaultInfo = Info{Family: FamilyUnknown, ContextLength: 8192, Tools: true}

// familyPatterns pairs a name fragment with its family. Order matters:
// more specific patterns come first.
var familyPatterns = []struct {
	match  string
	family Family
}{
	{"deepseek-r1", FamilyDeepseekR1},
	{"nomic-embed", FamilyNomicEmbed},
	{"mxbai-embed", FamilyMxbaiEmbed},
	{"llava", FamilyLlava},
	{"mixtral", FamilyMixtral},
	{"mistral", FamilyMistral},
	{"llama", FamilyLlama},
	{"qwen", FamilyQwen},
	{"gemma", FamilyGemma},
	{"phi", FamilyPhi},
}

// Normalize reduces a model name to its bare form: registry prefixes and
// tags are stripped and the result is lowercased.
// "library/Llama3.1:70b-instruct" becomes "llama3.1".
func Normalize(name string) string {
	base := strings.TrimSpace(name)
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base, _, _ = strings.Cut(base, ":")
	return strings.ToLower(base)
}

// FamilyOf maps a model name to its family.
func FamilyOf(name string) Family {
	base := Normalize(name)
	for _, p := range familyPatterns {
		if strings.Contains(base, p.match) {
			return p.family
		}
	}
	return FamilyUnknown
}

// Lookup returns capability info for a model name. Unknown models get
// defaultInfo. Variant markers in the name refine the family entry:
// "-vision" builds enable image input but drop tool support, and any
// "embed" model is embedding-only.
func Lookup(name string) Info {
	base := Normalize(name)
	info, ok := families[FamilyOf(base)]
	if !ok {
		info = defaultInfo
	}
	if strings.Contains(base, "vision") {
		info.Vision = true
		info.Tools = false
	}
	if strings.Contains(base, "embed") {
		info.Embedding = true
		info.Tools = false
	}
	return info
}
