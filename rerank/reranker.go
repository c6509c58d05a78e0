package rerank

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Embedder produces embedding vectors for a batch of texts. An
// ollama.Client configured with an embedding model satisfies this.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float64, error)
}

// Result is one scored document.
type Result struct {
	// Index is the document's position in the input slice.
	Index int

	// Score is the cosine similarity to the query, in [-1, 1].
	Score float64

	// Text is the document text.
	Text string
}

// Reranker orders documents by embedding similarity to a query.
type Reranker struct {
	embedder Embedder
}

// New creates a reranker backed by the given embedder.
func New(e Embedder) *Reranker {
	return &Reranker{embedder: e}
}

// Rerank scores every document against the query and returns the best
// topK in descending score order. A topK of 0 or less, or one larger
// than the document count, returns all documents. The query and the
// documents go to the embedder as a single batch.
func (r *Reranker) Rerank(ctx context.Context, query string, docs []string, topK int) ([]Result, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	inputs := make([]string, 0, len(docs)+1)
	inputs = append(inputs, query)
	inputs = append(inputs, docs...)

	vecs, err := r.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed for rerank: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(vecs), len(inputs))
	}

	queryVec := vecs[0]
	results := make([]Result, len(docs))
	for i, doc := range docs {
		results[i] = Result{
			Index: i,
			Score: Cosine(queryVec, vecs[i+1]),
			Text:  doc,
		}
	}

	// Stable so equal scores keep their input order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Best returns only the highest scoring document. It reports false when
// there are no documents.
func (r *Reranker) Best(ctx context.Context, query string, docs []string) (Result, bool, error) {
	results, err := r.Rerank(ctx, query, docs, 1)
	if err != nil || len(results) == 0 {
		return Result{}, false, err
	}
	return results[0], true, nil
}

// Cosine returns the cosine similarity of two vectors. Vectors of
// different lengths or zero magnitude score 0 rather than erroring, so
// one degenerate embedding cannot fail a whole batch.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
