package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoJSON indicates no JSON value was found in the text.
var ErrNoJSON = errors.New("no JSON value found")

// CodeBlock represents a fenced code block from model output.
type CodeBlock struct {
	Language string // Language tag after the opening fence, may be empty
	Content  string // Code inside the fences
	Raw      string // Full block including the fences
}

// Extractor pulls code blocks, JSON, YAML, sections, and lists out of
// model output. The zero value is not usable; create one with New.
type Extractor struct {
	codeBlockRegex *regexp.Regexp
	sectionRegex   *regexp.Regexp
	bulletRegex    *regexp.Regexp
	numberedRegex  *regexp.Regexp
}

// New creates an extractor with compiled patterns.
func New() *Extractor {
	return &Extractor{
		codeBlockRegex: regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```"),
		sectionRegex:   regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`),
		bulletRegex:    regexp.MustCompile(`(?m)^\s*[-*+]\s+(.+)$`),
		numberedRegex:  regexp.MustCompile(`(?m)^\s*\d+[.)]\s+(.+)$`),
	}
}

// AllCode returns every fenced code block in order of appearance.
func (e *Extractor) AllCode(text string) []CodeBlock {
	matches := e.codeBlockRegex.FindAllStringSubmatch(text, -1)
	blocks := make([]CodeBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, CodeBlock{
			Language: m[1],
			Content:  m[2],
			Raw:      m[0],
		})
	}
	return blocks
}

// Code returns the content of the first code block with the given
// language. An empty language matches the first block regardless of its
// tag. Returns "" when no block matches.
func (e *Extractor) Code(text, language string) string {
	for _, block := range e.AllCode(text) {
		if language == "" || strings.EqualFold(block.Language, language) {
			return block.Content
		}
	}
	return ""
}

// JSON returns the first JSON object in the text, or nil if none parses.
// Fenced blocks are checked first, then the prose is scanned for a
// balanced object, since small models often skip the fences they were
// asked for.
func (e *Extractor) JSON(text string) map[string]any {
	for _, raw := range e.jsonCandidates(text) {
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err == nil {
			return data
		}
	}
	return nil
}

// AllJSON returns every distinct JSON object found in the text.
func (e *Extractor) AllJSON(text string) []map[string]any {
	var results []map[string]any
	for _, raw := range e.jsonCandidates(text) {
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		duplicate := false
		for _, seen := range results {
			if jsonEqual(seen, data) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			results = append(results, data)
		}
	}
	return results
}

// JSONArray returns the elements of the first JSON array of objects
// found in the text, or nil if none parses.
func (e *Extractor) JSONArray(text string) []map[string]any {
	for _, block := range e.AllCode(text) {
		if block.Language != "" && !strings.EqualFold(block.Language, "json") {
			continue
		}
		var arr []map[string]any
		if err := json.Unmarshal([]byte(block.Content), &arr); err == nil {
			return arr
		}
	}
	if c, ok := scanFirst(text, '['); ok {
		var arr []map[string]any
		if err := json.Unmarshal([]byte(c), &arr); err == nil {
			return arr
		}
	}
	return nil
}

// JSONRaw returns the first JSON value, object or array, as raw bytes.
// Use it to decode into a concrete type:
//
//	raw, ok := e.JSONRaw(output)
//	if ok {
//	    err := json.Unmarshal(raw, &result)
//	}
func (e *Extractor) JSONRaw(text string) (json.RawMessage, bool) {
	for _, block := range e.AllCode(text) {
		if block.Language != "" && !strings.EqualFold(block.Language, "json") {
			continue
		}
		if candidate, ok := firstJSONValue(block.Content); ok {
			return json.RawMessage(candidate), true
		}
	}
	if candidate, ok := firstJSONValue(text); ok {
		return json.RawMessage(candidate), true
	}
	return nil, false
}

// jsonCandidates collects raw JSON object candidates: fenced json blocks,
// unlabeled blocks, then a balanced scan of the full text.
func (e *Extractor) jsonCandidates(text string) []json.RawMessage {
	var candidates []json.RawMessage
	for _, block := range e.AllCode(text) {
		if block.Language != "" && !strings.EqualFold(block.Language, "json") {
			continue
		}
		if c, ok := firstJSONValue(block.Content); ok && c[0] == '{' {
			candidates = append(candidates, json.RawMessage(c))
		}
	}
	for _, c := range allObjects(text) {
		candidates = append(candidates, json.RawMessage(c))
	}
	return candidates
}

// YAML returns the first fenced yaml block decoded into a map, or nil.
func (e *Extractor) YAML(text string) map[string]any {
	for _, block := range e.AllCode(text) {
		if !strings.EqualFold(block.Language, "yaml") && !strings.EqualFold(block.Language, "yml") {
			continue
		}
		var data map[string]any
		if err := yaml.Unmarshal([]byte(block.Content), &data); err == nil {
			return data
		}
	}
	return nil
}

// Section returns the body of the markdown section with the given title.
// The body runs until the next heading of any level. Returns "" when the
// section is not found.
func (e *Extractor) Section(text, title string) string {
	sections := e.Sections(text)

	// Try exact match first
	if content, ok := sections[title]; ok {
		return content
	}

	// Try case-insensitive match
	for heading, content := range sections {
		if strings.EqualFold(heading, title) {
			return content
		}
	}

	return ""
}

// Sections returns every markdown section keyed by heading text.
func (e *Extractor) Sections(text string) map[string]string {
	matches := e.sectionRegex.FindAllStringSubmatchIndex(text, -1)
	sections := make(map[string]string, len(matches))
	for i, m := range matches {
		heading := strings.TrimSpace(text[m[4]:m[5]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections[heading] = strings.TrimSpace(text[start:end])
	}
	return sections
}

// List returns all bulleted list items in the text. Bullets may be -, *,
// or + markers.
func (e *Extractor) List(text string) []string {
	matches := e.bulletRegex.FindAllStringSubmatch(text, -1)

	items := make([]string, 0, len(matches))
	for _, match := range matches {
		items = append(items, strings.TrimSpace(match[1]))
	}

	return items
}

// NumberedList returns all numbered list items in the text.
func (e *Extractor) NumberedList(text string) []string {
	matches := e.numberedRegex.FindAllStringSubmatch(text, -1)

	items := make([]string, 0, len(matches))
	for _, match := range matches {
		items = append(items, strings.TrimSpace(match[1]))
	}

	return items
}

// HasCode reports whether the text contains a code block, optionally
// restricted to a language.
func (e *Extractor) HasCode(text, language string) bool {
	if language == "" {
		return e.codeBlockRegex.MatchString(text)
	}
	return e.Code(text, language) != ""
}

// HasJSON reports whether the text contains a parseable JSON object.
func (e *Extractor) HasJSON(text string) bool {
	return e.JSON(text) != nil
}

// WithoutCode returns the text with all fenced code blocks removed.
func (e *Extractor) WithoutCode(text string) string {
	return strings.TrimSpace(e.codeBlockRegex.ReplaceAllString(text, ""))
}

// allObjects returns every balanced JSON object in the text in order of
// appearance. After a valid object, scanning resumes past its end, so
// nested objects are not reported separately.
func allObjects(text string) []string {
	var objects []string
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end, ok := scanBalanced(text, i)
		if !ok {
			continue
		}
		candidate := text[i:end]
		if json.Valid([]byte(candidate)) {
			objects = append(objects, candidate)
			i = end - 1
		}
	}
	return objects
}

// firstJSONValue returns the first balanced JSON value, object or array.
func firstJSONValue(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		if end, ok := scanBalanced(text, i); ok {
			candidate := text[i:end]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}

func scanFirst(text string, open byte) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		if end, ok := scanBalanced(text, i); ok {
			candidate := text[i:end]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
	}
	return "", false
}

// scanBalanced finds the end offset of the bracketed value opening at
// start, skipping brackets inside string literals. Models interleave
// JSON with prose and line breaks, so this replaces a line-bound regex.
func scanBalanced(text string, start int) (int, bool) {
	open := text[start]
	var closing byte = '}'
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// jsonEqual compares two JSON maps for equality.
func jsonEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}

	aJSON, errA := json.Marshal(a)
	bJSON, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(aJSON, bJSON)
}

// JSON extracts the first JSON object using a default extractor.
func JSON(text string) map[string]any {
	return New().JSON(text)
}

// Code extracts the first code block with the given language using a
// default extractor.
func Code(text, language string) string {
	return New().Code(text, language)
}

// Unmarshal finds the first JSON value in the text and decodes it into v.
// Returns ErrNoJSON when the text contains no JSON value.
func Unmarshal(text string, v any) error {
	raw, ok := New().JSONRaw(text)
	if !ok {
		return ErrNoJSON
	}
	return json.Unmarshal(raw, v)
}
