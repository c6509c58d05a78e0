// Package rerank orders documents by embedding similarity to a query.
//
// Retrieval over local documents usually starts with a cheap candidate
// search and ends with a rerank pass against an embedding model. This
// package runs that pass on any Embedder, one batch per call:
//
//	client, _ := ollama.NewClient(ollama.WithModel("nomic-embed-text"))
//	rr := rerank.New(client)
//
//	results, err := rr.Rerank(ctx, "how do I reset my password?", docs, 3)
//	for _, r := range results {
//	    fmt.Printf("%.3f  %s\n", r.Score, r.Text)
//	}
//
// Scores are cosine similarities, so they are comparable across calls
// made with the same embedding model.
package rerank
