package models

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"llama3.1", "llama3.1"},
		{"llama3.1:70b", "llama3.1"},
		{"library/llama3.1:70b-instruct", "llama3.1"},
		{"Mistral:LATEST", "mistral"},
		{"registry.example.com/team/qwen2.5:32b", "qwen2.5"},
		{"  phi3  ", "phi3"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.name); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		name     string
		expected Family
	}{
		{"llama3.2:3b", FamilyLlama},
		{"tinyllama", FamilyLlama},
		{"mistral-nemo", FamilyMistral},
		{"mixtral:8x7b", FamilyMixtral},
		{"qwen2.5-coder:7b", FamilyQwen},
		{"gemma2:27b", FamilyGemma},
		{"phi3:mini", FamilyPhi},
		{"deepseek-r1:14b", FamilyDeepseekR1},
		{"llava:13b", FamilyLlava},
		{"nomic-embed-text", FamilyNomicEmbed},
		{"mxbai-embed-large", FamilyMxbaiEmbed},
		{"starcoder2", FamilyUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FamilyOf(tt.name); got != tt.expected {
				t.Errorf("FamilyOf(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Run("tool capable families", func(t *testing.T) {
		for _, name := range []string{"llama3.1:8b", "mistral", "mixtral:8x7b", "qwen2.5:14b"} {
			info := Lookup(name)
			if !info.Tools {
				t.Errorf("Lookup(%q).Tools = false, want true", name)
			}
			if info.Vision || info.Embedding {
				t.Errorf("Lookup(%q) reports vision/embedding for a plain chat model", name)
			}
		}
	})

	t.Run("reasoning family", func(t *testing.T) {
		info := Lookup("deepseek-r1:32b")
		if !info.Reasoning {
			t.Error("Lookup(deepseek-r1).Reasoning = false, want true")
		}
		if info.Tools {
			t.Error("Lookup(deepseek-r1).Tools = true, want false")
		}
	})

	t.Run("vision variant drops tools", func(t *testing.T) {
		info := Lookup("llama3.2-vision:11b")
		if !info.Vision {
			t.Error("Lookup(llama3.2-vision).Vision = false, want true")
		}
		if info.Tools {
			t.Error("Lookup(llama3.2-vision).Tools = true, want false")
		}
		if info.Family != FamilyLlama {
			t.Errorf("Family = %q, want %q", info.Family, FamilyLlama)
		}
	})

	t.Run("llava is vision", func(t *testing.T) {
		if info := Lookup("llava"); !info.Vision {
			t.Error("Lookup(llava).Vision = false, want true")
		}
	})

	t.Run("embedding models", func(t *testing.T) {
		for _, name := range []string{"nomic-embed-text", "mxbai-embed-large", "snowflake-arctic-embed"} {
			info := Lookup(name)
			if !info.Embedding {
				t.Errorf("Lookup(%q).Embedding = false, want true", name)
			}
			if info.Tools {
				t.Errorf("Lookup(%q).Tools = true, want false", name)
			}
		}
	})

	t.Run("unknown model gets defaults", func(t *testing.T) {
		info := Lookup("brand-new-model:7b")
		if info.Family != FamilyUnknown {
			t.Errorf("Family = %q, want %q", info.Family, FamilyUnknown)
		}
		if !info.Tools {
			t.Error("unknown models should default to tool support")
		}
		if info.ContextLength != 8192 {
			t.Errorf("ContextLength = %d, want 8192", info.ContextLength)
		}
	})

	t.Run("context lengths", func(t *testing.T) {
		if got := Lookup("llama3.1:70b").ContextLength; got != 131072 {
			t.Errorf("llama context = %d, want 131072", got)
		}
		if got := Lookup("mxbai-embed-large").ContextLength; got != 512 {
			t.Errorf("mxbai-embed context = %d, want 512", got)
		}
	})
}

func TestParamSize(t *testing.T) {
	tests := []struct {
		name     string
		expected float64
	}{
		{"llama3.1:70b", 70},
		{"llama3.2:1b", 1},
		{"qwen2.5:0.5b", 0.5},
		{"mixtral:8x7b", 56},
		{"llama3.2:3b-instruct-q4_K_M", 3},
		{"phi3:14B", 14},
		{"llama3.1:latest", 0},
		{"llama3.1", 0},
		{"mistral:instruct", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParamSize(tt.name); got != tt.expected {
				t.Errorf("ParamSize(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		name     string
		expected Tier
	}{
		{"llama3.3:70b", TierHeavy},
		{"qwen2.5:32b", TierHeavy},
		{"gemma2:27b", TierHeavy},
		{"llama3.1:8b", TierDefault},
		{"mistral:7b", TierDefault},
		{"llama3.2:3b", TierFast},
		{"qwen2.5:0.5b", TierFast},
		{"llama3.1", TierDefault},
		{"llama3.1:latest", TierDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TierFor(tt.name); got != tt.expected {
				t.Errorf("TierFor(%q) = %s, want %s", tt.name, got, tt.expected)
			}
		})
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier     Tier
		expected string
	}{
		{TierFast, "fast"},
		{TierDefault, "default"},
		{TierHeavy, "heavy"},
		{Tier(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.tier.String(); got != tt.expected {
				t.Errorf("Tier(%d).String() = %s, want %s", tt.tier, got, tt.expected)
			}
		})
	}
}

func TestSelectorForTier(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := NewSelector()

		if got := s.ForTier(TierHeavy); got != "llama3.3:70b" {
			t.Errorf("ForTier(TierHeavy) = %s, want llama3.3:70b", got)
		}
		if got := s.ForTier(TierDefault); got != "llama3.1:8b" {
			t.Errorf("ForTier(TierDefault) = %s, want llama3.1:8b", got)
		}
		if got := s.ForTier(TierFast); got != "llama3.2:3b" {
			t.Errorf("ForTier(TierFast) = %s, want llama3.2:3b", got)
		}
	})

	t.Run("custom tier models", func(t *testing.T) {
		s := NewSelector(
			WithHeavyModel("qwen2.5:72b"),
			WithDefaultModel("mistral:7b"),
			WithFastModel("llama3.2:1b"),
		)

		if got := s.ForTier(TierHeavy); got != "qwen2.5:72b" {
			t.Errorf("ForTier(TierHeavy) = %s, want qwen2.5:72b", got)
		}
		if got := s.ForTier(TierFast); got != "llama3.2:1b" {
			t.Errorf("ForTier(TierFast) = %s, want llama3.2:1b", got)
		}
	})

	t.Run("override wins over every tier", func(t *testing.T) {
		s := NewSelector(WithOverride("gemma2:9b"))

		for _, tier := range []Tier{TierFast, TierDefault, TierHeavy} {
			if got := s.ForTier(tier); got != "gemma2:9b" {
				t.Errorf("ForTier(%s) = %s, want gemma2:9b", tier, got)
			}
		}
	})

	t.Run("with global", func(t *testing.T) {
		s := NewSelector()
		o := s.WithGlobal("phi3:mini")

		if got := o.ForTier(TierHeavy); got != "phi3:mini" {
			t.Errorf("overridden ForTier(TierHeavy) = %s, want phi3:mini", got)
		}
		// The original selector is untouched.
		if got := s.ForTier(TierHeavy); got != "llama3.3:70b" {
			t.Errorf("original ForTier(TierHeavy) = %s, want llama3.3:70b", got)
		}
	})
}

func TestSelectorContext(t *testing.T) {
	s := NewSelector(WithDefaultModel("qwen2.5:7b"))
	ctx := NewContext(context.Background(), s)

	got := FromContext(ctx)
	if got.ForTier(TierDefault) != "qwen2.5:7b" {
		t.Errorf("FromContext returned wrong selector: %s", got.ForTier(TierDefault))
	}

	// Missing selector falls back to defaults.
	fallback := FromContext(context.Background())
	if fallback.ForTier(TierDefault) != "llama3.1:8b" {
		t.Error("FromContext without a selector should return defaults")
	}
}

func TestTracker(t *testing.T) {
	t.Run("record and retrieve", func(t *testing.T) {
		tracker := NewTracker()

		tracker.Record("llama3.1:8b", 1000, 500, time.Second)
		tracker.Record("llama3.1:8b", 500, 250, time.Second)
		tracker.Record("qwen2.5:7b", 2000, 1000, 0)

		u := tracker.Usage("llama3.1:8b")
		if u.InputTokens != 1500 || u.OutputTokens != 750 || u.Requests != 2 {
			t.Errorf("llama usage = %+v, want {Input:1500, Output:750, Requests:2}", u)
		}
		if u.EvalTime != 2*time.Second {
			t.Errorf("EvalTime = %s, want 2s", u.EvalTime)
		}
	})

	t.Run("rate", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Record("llama3.2:3b", 100, 300, 2*time.Second)

		u := tracker.Usage("llama3.2:3b")
		if got := u.Rate(); got != 150 {
			t.Errorf("Rate() = %v, want 150", got)
		}

		var empty Usage
		if empty.Rate() != 0 {
			t.Error("Rate() without eval time should be 0")
		}
	})

	t.Run("summary is a copy", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Record("mistral", 100, 50, 0)

		summary := tracker.Summary()
		summary["mistral"] = Usage{InputTokens: 999}
		if tracker.Usage("mistral").InputTokens == 999 {
			t.Error("Summary returned reference instead of copy")
		}
	})

	t.Run("total usage", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Record("llama3.1:8b", 100, 50, 0)
		tracker.Record("qwen2.5:7b", 200, 100, 0)

		total := tracker.TotalUsage()
		if total.InputTokens != 300 || total.OutputTokens != 150 || total.Requests != 2 {
			t.Errorf("TotalUsage() = %+v, want {Input:300, Output:150, Requests:2}", total)
		}
	})

	t.Run("reset", func(t *testing.T) {
		tracker := NewTracker()
		tracker.Record("llama3.1:8b", 1000, 500, 0)
		tracker.Reset()

		if usage := tracker.Usage("llama3.1:8b"); usage.InputTokens != 0 {
			t.Error("Reset did not clear usage")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		tracker := NewTracker()
		var wg sync.WaitGroup

		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tracker.Record("llama3.1:8b", 100, 50, time.Millisecond)
			}()
		}

		wg.Wait()

		usage := tracker.Usage("llama3.1:8b")
		if usage.Requests != 100 {
			t.Errorf("Concurrent requests = %d, want 100", usage.Requests)
		}
	})
}

func TestFallbackChain(t *testing.T) {
	chain := FallbackChain{
		Models:      []string{"llama3.3:70b", "llama3.1:8b", "llama3.2:3b"},
		MaxAttempts: 5,
	}

	t.Run("walks down the chain", func(t *testing.T) {
		next, ok := chain.Next("llama3.3:70b", 1)
		if !ok || next != "llama3.1:8b" {
			t.Errorf("Next = (%s, %v), want (llama3.1:8b, true)", next, ok)
		}

		next, ok = chain.Next("llama3.1:8b", 2)
		if !ok || next != "llama3.2:3b" {
			t.Errorf("Next = (%s, %v), want (llama3.2:3b, true)", next, ok)
		}
	})

	t.Run("smallest model retries in place", func(t *testing.T) {
		next, ok := chain.Next("llama3.2:3b", 3)
		if !ok || next != "llama3.2:3b" {
			t.Errorf("Next = (%s, %v), want (llama3.2:3b, true)", next, ok)
		}
	})

	t.Run("unknown model starts at the top", func(t *testing.T) {
		next, ok := chain.Next("custom-model", 1)
		if !ok || next != "llama3.3:70b" {
			t.Errorf("Next = (%s, %v), want (llama3.3:70b, true)", next, ok)
		}
	})

	t.Run("max attempts stops the walk", func(t *testing.T) {
		if _, ok := chain.Next("llama3.1:8b", 5); ok {
			t.Error("Next should report false once attempts are spent")
		}
	})

	t.Run("empty chain retries same model", func(t *testing.T) {
		next, ok := NoFallback.Next("mistral", 1)
		if !ok || next != "mistral" {
			t.Errorf("Next = (%s, %v), want (mistral, true)", next, ok)
		}
	})

	t.Run("can fall back", func(t *testing.T) {
		if !chain.CanFallBack("llama3.3:70b") {
			t.Error("CanFallBack(top) = false, want true")
		}
		if chain.CanFallBack("llama3.2:3b") {
			t.Error("CanFallBack(bottom) = true, want false")
		}
		if chain.CanFallBack("custom-model") {
			t.Error("CanFallBack(unknown) = true, want false")
		}
	})

	t.Run("smallest model", func(t *testing.T) {
		if got := chain.SmallestModel(); got != "llama3.2:3b" {
			t.Errorf("SmallestModel() = %s, want llama3.2:3b", got)
		}
		if got := NoFallback.SmallestModel(); got != "" {
			t.Errorf("SmallestModel() on empty chain = %s, want \"\"", got)
		}
	})
}

func TestFallbackState(t *testing.T) {
	t.Run("records failures and moves down", func(t *testing.T) {
		chain := FallbackChain{
			Models:      []string{"llama3.1:8b", "llama3.2:3b"},
			MaxAttempts: 3,
		}
		state := NewFallbackState(&chain, "llama3.1:8b")

		failure := errors.New("model requires more system memory")
		if !state.RecordFailure(failure) {
			t.Fatal("first failure should leave attempts remaining")
		}
		if state.CurrentModel != "llama3.2:3b" {
			t.Errorf("CurrentModel = %s, want llama3.2:3b", state.CurrentModel)
		}
		if state.LastError != failure {
			t.Error("LastError not recorded")
		}
	})

	t.Run("exhaustion", func(t *testing.T) {
		chain := FallbackChain{Models: []string{"llama3.2:3b"}, MaxAttempts: 2}
		state := NewFallbackState(&chain, "llama3.2:3b")

		state.RecordFailure(nil)
		state.RecordFailure(nil)

		if !state.Exhausted() {
			t.Error("Expected state to be exhausted after max attempts")
		}
	})

	t.Run("nil chain uses default", func(t *testing.T) {
		state := NewFallbackState(nil, "llama3.1:8b")
		if state.Chain != &DefaultFallback {
			t.Error("Expected nil chain to use DefaultFallback")
		}
	})
}
