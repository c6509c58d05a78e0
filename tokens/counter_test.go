package tokens

import (
	"strings"
	"testing"
)

var _ Counter = (*EstimatingCounter)(nil)

func TestNewEstimatingCounter(t *testing.T) {
	c := NewEstimatingCounter()
	if c.CharsPerToken != DefaultCharsPerToken {
		t.Errorf("CharsPerToken = %v, want %v", c.CharsPerToken, DefaultCharsPerToken)
	}
}

func TestNewEstimatingCounterWithRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"custom ratio", 3.0, 3.0},
		{"zero falls back", 0, DefaultCharsPerToken},
		{"negative falls back", -1, DefaultCharsPerToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEstimatingCounterWithRatio(tt.ratio)
			if c.CharsPerToken != tt.want {
				t.Errorf("CharsPerToken = %v, want %v", c.CharsPerToken, tt.want)
			}
		})
	}
}

func TestEstimatingCounter_Count(t *testing.T) {
	c := NewEstimatingCounter()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"below half a token", "a", 0},
		{"one token", "test", 1},
		{"rounds to nearest", "Hello World", 3},
		{"counts runes not bytes", "héllö wörld", 3},
		{"long text", strings.Repeat("word", 100), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestEstimatingCounter_Count_CustomRatio(t *testing.T) {
	c := NewEstimatingCounterWithRatio(3.0)

	// 11 chars at 3 chars/token is 3.67, rounded to 4.
	if got := c.Count("Hello World"); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
}

func TestEstimatingCounter_FitsInLimit(t *testing.T) {
	c := NewEstimatingCounter()

	tests := []struct {
		name  string
		text  string
		limit int
		want  bool
	}{
		{"empty fits zero", "", 0, true},
		{"fits exactly", "test", 1, true},
		{"fits with room", "test", 10, true},
		{"overflows", "test test test test test", 3, false},
		{"zero limit", "hello", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.FitsInLimit(tt.text, tt.limit); got != tt.want {
				t.Errorf("FitsInLimit(%q, %d) = %v, want %v", tt.text, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if got, want := EstimateTokens("Hello World"), 3; got != want {
		t.Errorf("EstimateTokens() = %d, want %d", got, want)
	}
}

func TestGetModelLimit(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  int
	}{
		{"llama with tag", "llama3.1:8b", 131072},
		{"mistral", "mistral:7b", 32768},
		{"qwen", "qwen2.5:14b", 32768},
		{"embedding model", "mxbai-embed-large", 512},
		{"unknown model gets default", "brand-new-model", 8192},
		{"empty model gets default", "", 8192},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetModelLimit(tt.model); got != tt.want {
				t.Errorf("GetModelLimit(%q) = %d, want %d", tt.model, got, tt.want)
			}
		})
	}
}

func BenchmarkEstimatingCounter_Count(b *testing.B) {
	c := NewEstimatingCounter()
	text := strings.Repeat("Hello World ", 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Count(text)
	}
}
