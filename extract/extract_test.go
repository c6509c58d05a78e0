package extract

import (
	"errors"
	"reflect"
	"testing"
)

// =============================================================================
// Extractor Creation Tests
// =============================================================================

func TestNew(t *testing.T) {
	e := New()

	if e == nil {
		t.Fatal("New() returned nil")
	}
	if e.codeBlockRegex == nil {
		t.Error("codeBlockRegex not initialized")
	}
	if e.sectionRegex == nil {
		t.Error("sectionRegex not initialized")
	}
	if e.bulletRegex == nil {
		t.Error("bulletRegex not initialized")
	}
	if e.numberedRegex == nil {
		t.Error("numberedRegex not initialized")
	}
}

// =============================================================================
// Code Block Extraction Tests
// =============================================================================

func TestCode_SingleBlock(t *testing.T) {
	output := `Here is some Go code:

` + "```go\n" + `func main() {
    fmt.Println("Hello, World!")
}
` + "```" + `

That's all!`

	e := New()
	code := e.Code(output, "go")

	expected := `func main() {
    fmt.Println("Hello, World!")
}
`
	if code != expected {
		t.Errorf("Code() = %q, want %q", code, expected)
	}
}

func TestCode_MultipleLanguages(t *testing.T) {
	output := "```python\nprint('hello')\n```\n\n```go\nfmt.Println(\"hello\")\n```"

	e := New()

	pyCode := e.Code(output, "python")
	if pyCode != "print('hello')\n" {
		t.Errorf("Python code = %q", pyCode)
	}

	goCode := e.Code(output, "go")
	if goCode != "fmt.Println(\"hello\")\n" {
		t.Errorf("Go code = %q", goCode)
	}
}

func TestCode_NoLanguage(t *testing.T) {
	output := "```\nsome code\n```"

	e := New()
	code := e.Code(output, "")

	if code != "some code\n" {
		t.Errorf("Code() = %q, want 'some code\\n'", code)
	}
}

func TestCode_CaseInsensitiveLanguage(t *testing.T) {
	output := "```JSON\n{\"a\": 1}\n```"

	e := New()
	code := e.Code(output, "json")

	if code != "{\"a\": 1}\n" {
		t.Errorf("Code() = %q, want the JSON block", code)
	}
}

func TestCode_NotFound(t *testing.T) {
	output := "No code blocks here"

	e := New()
	code := e.Code(output, "go")

	if code != "" {
		t.Errorf("Code() = %q, want empty string", code)
	}
}

func TestCode_LanguageMismatch(t *testing.T) {
	output := "```python\nprint('hello')\n```"

	e := New()
	code := e.Code(output, "go")

	if code != "" {
		t.Errorf("Code() = %q, want empty string for language mismatch", code)
	}
}

func TestAllCode(t *testing.T) {
	output := "```go\nfunc a() {}\n```\n\n```python\ndef b(): pass\n```"

	e := New()
	blocks := e.AllCode(output)

	if len(blocks) != 2 {
		t.Fatalf("AllCode() returned %d blocks, want 2", len(blocks))
	}

	if blocks[0].Language != "go" {
		t.Errorf("First block language = %q, want 'go'", blocks[0].Language)
	}
	if blocks[1].Language != "python" {
		t.Errorf("Second block language = %q, want 'python'", blocks[1].Language)
	}
}

func TestAllCode_WithRaw(t *testing.T) {
	output := "```js\nconsole.log('test');\n```"

	e := New()
	blocks := e.AllCode(output)

	if len(blocks) != 1 {
		t.Fatalf("AllCode() returned %d blocks, want 1", len(blocks))
	}

	if blocks[0].Raw != "```js\nconsole.log('test');\n```" {
		t.Errorf("Raw = %q", blocks[0].Raw)
	}
}

func TestWithoutCode(t *testing.T) {
	output := "Before\n```go\nfunc a() {}\n```\nAfter"

	e := New()
	text := e.WithoutCode(output)

	if text != "Before\n\nAfter" {
		t.Errorf("WithoutCode() = %q", text)
	}
}

func TestHasCode(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		output   string
		language string
		want     bool
	}{
		{
			name:     "any block present",
			output:   "```\nx\n```",
			language: "",
			want:     true,
		},
		{
			name:     "matching language",
			output:   "```go\nfunc a() {}\n```",
			language: "go",
			want:     true,
		},
		{
			name:     "wrong language",
			output:   "```python\npass\n```",
			language: "go",
			want:     false,
		},
		{
			name:     "no blocks",
			output:   "plain prose",
			language: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.HasCode(tt.output, tt.language); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// JSON Extraction Tests
// =============================================================================

func TestJSON_FromCodeBlock(t *testing.T) {
	output := "```json\n{\"key\": \"value\", \"num\": 42}\n```"

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["key"] != "value" {
		t.Errorf("data[key] = %v, want 'value'", data["key"])
	}
	if data["num"] != float64(42) {
		t.Errorf("data[num] = %v, want 42", data["num"])
	}
}

func TestJSON_FromUnlabeledCodeBlock(t *testing.T) {
	output := "```\n{\"unlabeled\": true}\n```"

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["unlabeled"] != true {
		t.Errorf("data[unlabeled] = %v, want true", data["unlabeled"])
	}
}

func TestJSON_Inline(t *testing.T) {
	output := "Here is the result:\n{\"inline\": true}\n\nThat's it."

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["inline"] != true {
		t.Errorf("data[inline] = %v, want true", data["inline"])
	}
}

func TestJSON_MultilineUnfenced(t *testing.T) {
	// Small models often pretty-print the JSON they were asked for
	// without wrapping it in fences.
	output := `Sure! Here is the requested data:

{
  "city": "Paris",
  "population": 2102650,
  "landmarks": ["Eiffel Tower", "Louvre"]
}

Let me know if you need anything else.`

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["city"] != "Paris" {
		t.Errorf("data[city] = %v, want 'Paris'", data["city"])
	}
	landmarks, ok := data["landmarks"].([]any)
	if !ok || len(landmarks) != 2 {
		t.Errorf("data[landmarks] = %v, want 2 landmarks", data["landmarks"])
	}
}

func TestJSON_BraceInString(t *testing.T) {
	output := `{"template": "use {} for placeholders", "closer": "}"}`

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["closer"] != "}" {
		t.Errorf("data[closer] = %v, want '}'", data["closer"])
	}
}

func TestJSON_EscapedQuoteInString(t *testing.T) {
	output := `{"quote": "she said \"hi\"", "n": 1}`

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["quote"] != `she said "hi"` {
		t.Errorf("data[quote] = %v", data["quote"])
	}
}

func TestJSON_PrefersFencedBlock(t *testing.T) {
	output := "Ignore {\"noise\": 1} in prose.\n\n```json\n{\"answer\": 2}\n```"

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["answer"] != float64(2) {
		t.Errorf("JSON() = %v, want the fenced block to win", data)
	}
}

func TestJSON_NotFound(t *testing.T) {
	output := "No JSON here, just plain text."

	e := New()
	if data := e.JSON(output); data != nil {
		t.Errorf("JSON() = %v, want nil", data)
	}
}

func TestJSON_InvalidThenValid(t *testing.T) {
	output := "Broken: {not json} but later {\"ok\": true}"

	e := New()
	data := e.JSON(output)

	if data == nil {
		t.Fatal("JSON() returned nil")
	}
	if data["ok"] != true {
		t.Errorf("data[ok] = %v, want true", data["ok"])
	}
}

func TestAllJSON_Deduplicates(t *testing.T) {
	// The fenced object also appears in the raw text scan; it should
	// only be returned once.
	output := "```json\n{\"a\": 1}\n```\n\n{\"b\": 2}"

	e := New()
	results := e.AllJSON(output)

	if len(results) != 2 {
		t.Fatalf("AllJSON() returned %d objects, want 2", len(results))
	}
}

func TestJSONArray_FromCodeBlock(t *testing.T) {
	output := "```json\n[{\"id\": 1}, {\"id\": 2}]\n```"

	e := New()
	arr := e.JSONArray(output)

	if len(arr) != 2 {
		t.Fatalf("JSONArray() returned %d elements, want 2", len(arr))
	}
	if arr[0]["id"] != float64(1) {
		t.Errorf("arr[0][id] = %v, want 1", arr[0]["id"])
	}
}

func TestJSONArray_Inline(t *testing.T) {
	output := "The tasks are:\n[\n  {\"task\": \"one\"},\n  {\"task\": \"two\"}\n]"

	e := New()
	arr := e.JSONArray(output)

	if len(arr) != 2 {
		t.Fatalf("JSONArray() returned %d elements, want 2", len(arr))
	}
	if arr[1]["task"] != "two" {
		t.Errorf("arr[1][task] = %v, want 'two'", arr[1]["task"])
	}
}

func TestJSONRaw_Object(t *testing.T) {
	output := "Result: {\"x\": 1}"

	e := New()
	raw, ok := e.JSONRaw(output)

	if !ok {
		t.Fatal("JSONRaw() found nothing")
	}
	if string(raw) != `{"x": 1}` {
		t.Errorf("JSONRaw() = %q", string(raw))
	}
}

func TestJSONRaw_Array(t *testing.T) {
	output := "Values: [1, 2, 3] done."

	e := New()
	raw, ok := e.JSONRaw(output)

	if !ok {
		t.Fatal("JSONRaw() found nothing")
	}
	if string(raw) != "[1, 2, 3]" {
		t.Errorf("JSONRaw() = %q", string(raw))
	}
}

func TestHasJSON(t *testing.T) {
	e := New()

	if !e.HasJSON(`{"a": 1}`) {
		t.Error("HasJSON() = false for valid JSON")
	}
	if e.HasJSON("nothing structured") {
		t.Error("HasJSON() = true for plain text")
	}
}

func TestUnmarshal(t *testing.T) {
	output := "Here it is:\n\n```json\n{\"name\": \"llama3.1:8b\", \"ready\": true}\n```"

	var result struct {
		Name  string `json:"name"`
		Ready bool   `json:"ready"`
	}
	if err := Unmarshal(output, &result); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if result.Name != "llama3.1:8b" {
		t.Errorf("Name = %q, want 'llama3.1:8b'", result.Name)
	}
	if !result.Ready {
		t.Error("Ready = false, want true")
	}
}

func TestUnmarshal_NoJSON(t *testing.T) {
	var result map[string]any
	err := Unmarshal("plain prose only", &result)

	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("Unmarshal() error = %v, want ErrNoJSON", err)
	}
}

// =============================================================================
// YAML Extraction Tests
// =============================================================================

func TestYAML_FromBlock(t *testing.T) {
	output := "```yaml\nname: test\ncount: 3\n```"

	e := New()
	data := e.YAML(output)

	if data == nil {
		t.Fatal("YAML() returned nil")
	}
	if data["name"] != "test" {
		t.Errorf("data[name] = %v, want 'test'", data["name"])
	}
	if data["count"] != 3 {
		t.Errorf("data[count] = %v, want 3", data["count"])
	}
}

func TestYAML_YmlTag(t *testing.T) {
	output := "```yml\nkey: value\n```"

	e := New()
	data := e.YAML(output)

	if data == nil {
		t.Fatal("YAML() returned nil")
	}
	if data["key"] != "value" {
		t.Errorf("data[key] = %v, want 'value'", data["key"])
	}
}

func TestYAML_NotFound(t *testing.T) {
	output := "```json\n{\"a\": 1}\n```"

	e := New()
	if data := e.YAML(output); data != nil {
		t.Errorf("YAML() = %v, want nil", data)
	}
}

// =============================================================================
// Section Extraction Tests
// =============================================================================

func TestSection_Found(t *testing.T) {
	output := `# Summary

The change is small.

## Details

Two files were touched.`

	e := New()

	summary := e.Section(output, "Summary")
	if summary != "The change is small." {
		t.Errorf("Section(Summary) = %q", summary)
	}

	details := e.Section(output, "Details")
	if details != "Two files were touched." {
		t.Errorf("Section(Details) = %q", details)
	}
}

func TestSection_CaseInsensitive(t *testing.T) {
	output := "## Next Steps\n\nShip it."

	e := New()
	if got := e.Section(output, "next steps"); got != "Ship it." {
		t.Errorf("Section() = %q, want 'Ship it.'", got)
	}
}

func TestSection_NotFound(t *testing.T) {
	output := "# Only Section\n\ncontent"

	e := New()
	if got := e.Section(output, "Missing"); got != "" {
		t.Errorf("Section() = %q, want empty string", got)
	}
}

func TestSections_Multiple(t *testing.T) {
	output := `# First

one

## Second

two

# Third

three`

	e := New()
	sections := e.Sections(output)

	want := map[string]string{
		"First":  "one",
		"Second": "two",
		"Third":  "three",
	}
	if !reflect.DeepEqual(sections, want) {
		t.Errorf("Sections() = %v, want %v", sections, want)
	}
}

// =============================================================================
// List Extraction Tests
// =============================================================================

func TestList(t *testing.T) {
	output := `Steps:
- pull the model
* start the server
+ send a request`

	e := New()
	items := e.List(output)

	want := []string{"pull the model", "start the server", "send a request"}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("List() = %v, want %v", items, want)
	}
}

func TestList_Empty(t *testing.T) {
	e := New()
	if items := e.List("no lists here"); len(items) != 0 {
		t.Errorf("List() = %v, want empty", items)
	}
}

func TestNumberedList(t *testing.T) {
	output := `Plan:
1. first
2) second
3. third`

	e := New()
	items := e.NumberedList(output)

	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("NumberedList() = %v, want %v", items, want)
	}
}

// =============================================================================
// Convenience Function Tests
// =============================================================================

func TestConvenienceJSON(t *testing.T) {
	data := JSON(`{"a": 1}`)
	if data == nil || data["a"] != float64(1) {
		t.Errorf("JSON() = %v", data)
	}
}

func TestConvenienceCode(t *testing.T) {
	code := Code("```go\nfunc main() {}\n```", "go")
	if code != "func main() {}\n" {
		t.Errorf("Code() = %q", code)
	}
}

// Benchmark
func BenchmarkJSON_MultilineUnfenced(b *testing.B) {
	output := "prose before\n{\n  \"key\": \"value\",\n  \"nested\": {\"x\": 1}\n}\nprose after"
	e := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.JSON(output)
	}
}
