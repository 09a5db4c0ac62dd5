// Package vectorindex provides an in-process nearest-neighbor index over the
// catalog embeddings. Builds are copy-on-write: readers keep scoring against
// the previous snapshot until a fully built replacement is swapped in.
package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/domain"
	"github.com/assessdex/assessdex/internal/metrics"
)

// Index embeds catalog items and answers top-K similarity queries.
type Index struct {
	embedder  domain.Embedder
	batchSize int
	logger    *zap.Logger

	buildMu sync.Mutex // at most one build at a time
	snap    atomic.Pointer[snapshot]
}

// snapshot is an immutable built index. vectors are unit-normalized and
// parallel to items.
type snapshot struct {
	items      []domain.Item
	vectors    [][]float32
	generation uint64
}

// New creates an index. batchSize bounds one embedding provider call during builds.
func New(embedder domain.Embedder, batchSize int, logger *zap.Logger) *Index {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Index{embedder: embedder, batchSize: batchSize, logger: logger}
}

// Build embeds every item's augmented text and atomically replaces the
// active snapshot. On any failure the previous snapshot stays in service and
// the returned error wraps domain.ErrBuildFailed.
func (x *Index) Build(ctx context.Context, items []domain.Item) error {
	x.buildMu.Lock()
	defer x.buildMu.Unlock()

	if len(items) == 0 {
		metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: no items to index", domain.ErrBuildFailed)
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = augmentedText(it)
	}

	vectors := make([][]float32, 0, len(items))
	dim := 0
	for start := 0; start < len(texts); start += x.batchSize {
		end := start + x.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		res, err := x.embedBatch(ctx, texts[start:end])
		if err != nil {
			metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("%w: embed items [%d:%d): %w", domain.ErrBuildFailed, start, end, err)
		}
		if len(res.Embeddings) != end-start {
			metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrBuildFailed, len(res.Embeddings), end-start)
		}

		for i, vec := range res.Embeddings {
			if dim == 0 {
				dim = len(vec)
			}
			if len(vec) == 0 || len(vec) != dim {
				metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("%w: inconsistent vector dimension for item %d: %d != %d",
					domain.ErrBuildFailed, start+i, len(vec), dim)
			}
			vectors = append(vectors, normalized(vec))
		}
	}

	prev := x.snap.Load()
	var gen uint64 = 1
	if prev != nil {
		gen = prev.generation + 1
	}

	x.snap.Store(&snapshot{
		items:      items,
		vectors:    vectors,
		generation: gen,
	})

	metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
	metrics.IndexItems.Set(float64(len(items)))
	x.logger.Info("vector index built",
		zap.Int("items", len(items)),
		zap.Int("dimensions", dim),
		zap.Uint64("generation", gen),
	)
	return nil
}

// Query embeds the query text and returns the topK most similar items in
// descending similarity order. Similarity is 1 minus the normalized cosine
// distance, so it lands in [0,1].
func (x *Index) Query(ctx context.Context, text string, topK int) ([]domain.Candidate, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be >= 1, got %d", domain.ErrInvalidRequest, topK)
	}

	snap := x.snap.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotReady
	}

	res, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := normalized(res.Embedding)

	candidates := make([]domain.Candidate, len(snap.items))
	for i, vec := range snap.vectors {
		candidates[i] = domain.Candidate{
			Item:       snap.items[i],
			Similarity: similarity(query, vec),
		}
	}

	// Stable keeps catalog order among equal similarities.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	if topK < len(candidates) {
		candidates = candidates[:topK]
	}
	return candidates, nil
}

// Ready reports whether at least one build has completed.
func (x *Index) Ready() bool {
	return x.snap.Load() != nil
}

// Generation returns the active snapshot counter; 0 means never built.
// The result cache tags entries with it to invalidate on rebuild.
func (x *Index) Generation() uint64 {
	if snap := x.snap.Load(); snap != nil {
		return snap.generation
	}
	return 0
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	if snap := x.snap.Load(); snap != nil {
		return len(snap.items)
	}
	return 0
}

func (x *Index) embedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := x.embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, x.embedder, texts)
}

// augmentedText biases similarity toward test-type relevance by appending
// the type tags to the indexed text.
func augmentedText(it domain.Item) string {
	var b strings.Builder
	b.WriteString(it.Name)
	b.WriteString(". ")
	b.WriteString(it.Description)
	b.WriteString(" Type: ")
	b.WriteString(strings.Join(it.TestTypes, ", "))
	b.WriteString(".")
	return b.String()
}

// normalized returns a unit-length copy of v. A zero vector is returned as-is
// and scores 0.5 (neutral) against every query.
func normalized(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) * inv)
	}
	return out
}

// similarity maps the cosine of two unit vectors from [-1,1] to [0,1].
func similarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	s := (1 + dot) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
