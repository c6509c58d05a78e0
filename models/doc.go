// Package models describes the model families a local Ollama install
// typically serves and helps pick between them.
//
// # Capability Lookup
//
//	info := models.Lookup("llama3.2-vision:11b")
//	info.Vision        // true
//	info.ContextLength // 131072
//
// # Tier Selection
//
// Local models bucket by parameter size rather than by product name:
//
//	selector := models.NewSelector(
//	    models.WithHeavyModel("llama3.3:70b"),
//	    models.WithFastModel("llama3.2:1b"),
//	)
//	m := selector.ForTier(models.TierFor("qwen2.5:32b"))
//
// # Usage Tracking
//
//	tracker := models.NewTracker()
//	tracker.Record("llama3.1:8b", 1000, 500, 2*time.Second)
//	rate := tracker.Usage("llama3.1:8b").Rate()
//
// # Fallback Chains
//
// Fallback chains retry a failed request on progressively smaller models,
// for when the preferred model is not installed or does not fit in memory:
//
//	state := models.NewFallbackState(&models.DefaultFallback, "llama3.3:70b")
//	for !state.Exhausted() {
//	    resp, err := tryRequest(state.CurrentModel)
//	    if err == nil {
//	        return resp, nil
//	    }
//	    state.RecordFailure(err)
//	}
package models
