package extract

import (
	"regexp"
	"strings"
	"sync"
)

// Tag represents a detected XML-style tag in model output.
type Tag struct {
	// Name is the tag name without angle brackets (e.g., "think").
	Name string

	// Value is the content between the opening and closing tags.
	Value string

	// Raw is the full matched text including tags.
	Raw string
}

// TagMatcher finds XML-style tags in model output. It compiles a regex
// pattern for each registered name and caches them for efficient
// repeated matching.
//
// Reasoning models served without a chat template that separates their
// scratch work emit it inline:
//
//	<think>The user wants the capital of France, which is Paris.</think>
//	Paris.
type TagMatcher struct {
	names    []string
	patterns map[string]*regexp.Regexp
	mu       sync.RWMutex
}

// NewTagMatcher creates a matcher for the given tag names. Names are
// provided without angle brackets.
func NewTagMatcher(names ...string) *TagMatcher {
	m := &TagMatcher{
		names:    make([]string, 0, len(names)),
		patterns: make(map[string]*regexp.Regexp, len(names)),
	}

	for _, name := range names {
		m.addName(name)
	}

	return m
}

// addName compiles and caches a regex pattern for the tag name.
func (m *TagMatcher) addName(name string) {
	// Pattern: <name>content</name> with (?s) so content spans lines
	pattern := regexp.MustCompile(`(?s)<` + regexp.QuoteMeta(name) + `>(.*?)</` + regexp.QuoteMeta(name) + `>`)

	m.mu.Lock()
	m.names = append(m.names, name)
	m.patterns[name] = pattern
	m.mu.Unlock()
}

// AddName adds a new tag name to match. Safe for concurrent use.
func (m *TagMatcher) AddName(name string) {
	m.mu.RLock()
	_, exists := m.patterns[name]
	m.mu.RUnlock()

	if !exists {
		m.addName(name)
	}
}

// Names returns the tag names this matcher looks for.
func (m *TagMatcher) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, len(m.names))
	copy(result, m.names)
	return result
}

// FindAll returns all tags found in content for all registered names.
func (m *TagMatcher) FindAll(content string) []Tag {
	var tags []Tag

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.names {
		matches := m.patterns[name].FindAllStringSubmatch(content, -1)
		for _, match := range matches {
			if len(match) >= 2 {
				tags = append(tags, Tag{
					Name:  name,
					Value: strings.TrimSpace(match[1]),
					Raw:   match[0],
				})
			}
		}
	}

	return tags
}

// FindFirst returns the first tag found for the given name.
// Returns false if no tag is found.
func (m *TagMatcher) FindFirst(content, name string) (Tag, bool) {
	m.mu.RLock()
	pattern, ok := m.patterns[name]
	m.mu.RUnlock()

	if !ok {
		return Tag{}, false
	}

	match := pattern.FindStringSubmatch(content)
	if len(match) < 2 {
		return Tag{}, false
	}

	return Tag{
		Name:  name,
		Value: strings.TrimSpace(match[1]),
		Raw:   match[0],
	}, true
}

// Contains checks if a tag with the given name exists in content.
func (m *TagMatcher) Contains(content, name string) bool {
	m.mu.RLock()
	pattern, ok := m.patterns[name]
	m.mu.RUnlock()

	if !ok {
		return false
	}

	return pattern.MatchString(content)
}

// GetValue extracts the value of the first tag with the given name.
// Returns empty string if the tag is not found.
func (m *TagMatcher) GetValue(content, name string) string {
	tag, found := m.FindFirst(content, name)
	if !found {
		return ""
	}
	return tag.Value
}

// StripAll removes every registered tag, with its content, from the text.
func (m *TagMatcher) StripAll(content string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, name := range m.names {
		content = m.patterns[name].ReplaceAllString(content, "")
	}

	return content
}

// ThinkTags matches the inline reasoning tags local builds emit.
var ThinkTags = NewTagMatcher("think", "thinking", "reasoning")

// thinkOpenRegex catches a reasoning block whose closing tag never
// arrived, usually a stream cut off mid-thought.
var thinkOpenRegex = regexp.MustCompile(`<(?:think|thinking|reasoning)>`)

// ExtractThinking splits inline reasoning out of model output, returning
// the joined reasoning and the remaining answer text. An unclosed
// reasoning tag counts as reasoning through the end of the text.
func ExtractThinking(content string) (reasoning, answer string) {
	var thoughts []string
	for _, tag := range ThinkTags.FindAll(content) {
		if tag.Value != "" {
			thoughts = append(thoughts, tag.Value)
		}
	}
	rest := ThinkTags.StripAll(content)

	if loc := thinkOpenRegex.FindStringIndex(rest); loc != nil {
		if tail := strings.TrimSpace(rest[loc[1]:]); tail != "" {
			thoughts = append(thoughts, tail)
		}
		rest = rest[:loc[0]]
	}

	return strings.Join(thoughts, "\n\n"), strings.TrimSpace(rest)
}

// StripThinking returns model output with inline reasoning removed.
func StripThinking(content string) string {
	_, answer := ExtractThinking(content)
	return answer
}

// HasThinking reports whether the output contains an inline reasoning tag.
func HasThinking(content string) bool {
	return thinkOpenRegex.MatchString(content)
}
