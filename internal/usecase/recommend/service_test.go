package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/domain"
	"github.com/assessdex/assessdex/internal/repository/rescache"
	"github.com/assessdex/assessdex/internal/usecase/extract"
)

// --- Mocks ---

type fakeRetriever struct {
	candidates []domain.Candidate
	gen        uint64
	err        error
	queries    int
	lastTopK   int
}

func (f *fakeRetriever) Query(_ context.Context, _ string, topK int) ([]domain.Candidate, error) {
	f.queries++
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	out := f.candidates
	if topK < len(out) {
		out = out[:topK]
	}
	return out, nil
}

func (f *fakeRetriever) Generation() uint64 { return f.gen }

type fakeExtractor struct {
	cs domain.ConstraintSet
}

func (f fakeExtractor) Extract(string) domain.ConstraintSet { return f.cs }

func item(url string, ordinal, duration int, types ...string) domain.Item {
	return domain.Item{
		URL:             url,
		Name:            url,
		DurationMinutes: duration,
		TestTypes:       types,
		Ordinal:         ordinal,
	}
}

func newService(t *testing.T, r Retriever, e Extractor, cacheCap int) *Service {
	t.Helper()
	var cache ResultCache
	if cacheCap > 0 {
		c, err := rescache.New(cacheCap)
		if err != nil {
			t.Fatalf("cache: %v", err)
		}
		cache = c
	}
	return New(r, e, cache, DefaultParams(), zap.NewNop())
}

func urls(recs []domain.Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Item.URL
	}
	return out
}

// --- Tests ---

func TestRecommend_InvalidRequest(t *testing.T) {
	svc := newService(t, &fakeRetriever{gen: 1}, fakeExtractor{}, 0)

	for _, n := range []int{0, -5} {
		if _, err := svc.Recommend(context.Background(), "query", n); !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("max_results=%d: expected ErrInvalidRequest, got %v", n, err)
		}
	}
	if _, err := svc.Recommend(context.Background(), "   ", 5); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Error("empty query must be ErrInvalidRequest")
	}
}

func TestRecommend_IndexNotReady(t *testing.T) {
	svc := newService(t, &fakeRetriever{err: domain.ErrIndexNotReady}, fakeExtractor{}, 0)
	if _, err := svc.Recommend(context.Background(), "query", 5); !errors.Is(err, domain.ErrIndexNotReady) {
		t.Errorf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestRecommend_PureSimilarityOrdering(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/b", 1, 30, "General"), Similarity: 0.8},
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
		{Item: item("u/c", 2, 30, "General"), Similarity: 0.7},
	}}
	svc := newService(t, r, fakeExtractor{}, 0)

	recs, err := svc.Recommend(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/a", "u/b", "u/c"}) {
		t.Errorf("order = %v, want descending similarity", got)
	}
	// Without soft constraints the constraint term is the neutral constant.
	for _, rec := range recs {
		if rec.ConstraintScore != softBase {
			t.Errorf("constraint score = %v, want neutral %v", rec.ConstraintScore, softBase)
		}
	}
}

func TestRecommend_OverfetchSizing(t *testing.T) {
	r := &fakeRetriever{gen: 1}
	svc := newService(t, r, fakeExtractor{}, 0)

	if _, err := svc.Recommend(context.Background(), "q", 3); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.lastTopK != 20 {
		t.Errorf("topK = %d, want floor 20 for max_results=3", r.lastTopK)
	}

	if _, err := svc.Recommend(context.Background(), "q", 10); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.lastTopK != 50 {
		t.Errorf("topK = %d, want 10*5", r.lastTopK)
	}
}

func TestRecommend_DurationHardFilter(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/long", 0, 60, "General"), Similarity: 0.99},
		{Item: item("u/short", 1, 11, "General"), Similarity: 0.5},
		{Item: item("u/unknown", 2, 0, "General"), Similarity: 0.4},
	}}
	svc := newService(t, r, fakeExtractor{cs: domain.ConstraintSet{MaxDurationMinutes: 15}}, 0)

	recs, err := svc.Recommend(context.Background(), "under 15 minutes", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	got := urls(recs)
	// The 60-minute item is dropped despite top similarity; unknown passes.
	if !reflect.DeepEqual(got, []string{"u/short", "u/unknown"}) {
		t.Errorf("results = %v, want [u/short u/unknown]", got)
	}
	for _, rec := range recs {
		if rec.Item.DurationKnown() && rec.Item.DurationMinutes > 15 {
			t.Errorf("item %s violates duration bound", rec.Item.URL)
		}
	}
}

func TestRecommend_TypeHardFilter(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/tech", 0, 30, "Technical"), Similarity: 0.9},
		{Item: item("u/pers", 1, 30, "Personality/Behavioral"), Similarity: 0.8},
		{Item: item("u/both", 2, 30, "Cognitive", "Technical"), Similarity: 0.7},
	}}
	svc := newService(t, r, fakeExtractor{cs: domain.ConstraintSet{RequiredTypes: []string{"Technical", "Cognitive"}}}, 0)

	recs, err := svc.Recommend(context.Background(), "technical or cognitive", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/tech", "u/both"}) {
		t.Errorf("results = %v, want [u/tech u/both]", got)
	}
}

func TestRecommend_ZeroSurvivorsIsEmptyNotError(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/pers", 0, 30, "Personality/Behavioral"), Similarity: 0.9},
	}}
	svc := newService(t, r, fakeExtractor{cs: domain.ConstraintSet{RequiredTypes: []string{"Cognitive"}}}, 0)

	recs, err := svc.Recommend(context.Background(), "cognitive test for analyst role within 45 mins", 10)
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected empty result, got %v", urls(recs))
	}
}

func TestRecommend_DeduplicatesByURL(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.85},
		{Item: item("u/b", 1, 30, "General"), Similarity: 0.8},
	}}
	svc := newService(t, r, fakeExtractor{}, 0)

	recs, err := svc.Recommend(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/a", "u/b"}) {
		t.Errorf("results = %v, want deduplicated [u/a u/b]", got)
	}
}

func TestRecommend_TruncatesToMaxResults(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
		{Item: item("u/b", 1, 30, "General"), Similarity: 0.8},
		{Item: item("u/c", 2, 30, "General"), Similarity: 0.7},
	}}
	svc := newService(t, r, fakeExtractor{}, 0)

	recs, err := svc.Recommend(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 results, got %d", len(recs))
	}

	// max_results beyond the catalog returns everything, no error, no dupes.
	recs, err = svc.Recommend(context.Background(), "q", 100)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("expected full catalog (3), got %d", len(recs))
	}
}

func TestRecommend_SoftConstraintsAdjustOrder(t *testing.T) {
	remoteItem := item("u/remote", 0, 30, "General")
	remoteItem.Remote = domain.TriYes
	onsiteItem := item("u/onsite", 1, 30, "General")
	onsiteItem.Remote = domain.TriNo

	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: onsiteItem, Similarity: 0.80},
		{Item: remoteItem, Similarity: 0.78},
	}}
	svc := newService(t, r, fakeExtractor{cs: domain.ConstraintSet{RemoteRequired: true}}, 0)

	recs, err := svc.Recommend(context.Background(), "remote", 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// Remote bonus (0.2 * 0.3 weight = 0.06) outweighs the 0.014 similarity
	// edge, but the on-site item is never excluded: soft signals re-rank only.
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/remote", "u/onsite"}) {
		t.Errorf("results = %v, want remote first", got)
	}
	if len(recs) != 2 {
		t.Errorf("soft constraint must not filter, got %d results", len(recs))
	}
}

func TestRecommend_TieBreaks(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/later", 5, 30, "General"), Similarity: 0.8},
		{Item: item("u/earlier", 2, 30, "General"), Similarity: 0.8},
	}}
	svc := newService(t, r, fakeExtractor{}, 0)

	recs, err := svc.Recommend(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// Equal final score and similarity: catalog order decides.
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/earlier", "u/later"}) {
		t.Errorf("results = %v, want catalog-order tie-break", got)
	}
}

func TestRecommend_CacheIdempotence(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
	}}
	svc := newService(t, r, fakeExtractor{}, 8)

	first, err := svc.Recommend(context.Background(), "Java Developer", 5)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	// Same query modulo case and whitespace: served from cache.
	second, err := svc.Recommend(context.Background(), "  java   developer ", 5)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}

	if r.queries != 1 {
		t.Errorf("expected 1 retrieval, got %d", r.queries)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("cached result differs from computed result")
	}

	// Different max_results is a different key.
	if _, err := svc.Recommend(context.Background(), "java developer", 3); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.queries != 2 {
		t.Errorf("expected recompute for different max_results, got %d retrievals", r.queries)
	}
}

func TestRecommend_RebuildInvalidatesCache(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
	}}
	svc := newService(t, r, fakeExtractor{}, 8)

	if _, err := svc.Recommend(context.Background(), "q", 5); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.queries != 1 {
		t.Fatalf("expected 1 retrieval, got %d", r.queries)
	}

	// Index rebuilt: generation bumps, cached entry must not be served.
	r.gen = 2
	r.candidates = []domain.Candidate{
		{Item: item("u/b", 0, 30, "General"), Similarity: 0.9},
	}

	recs, err := svc.Recommend(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.queries != 2 {
		t.Errorf("expected recompute after rebuild, got %d retrievals", r.queries)
	}
	if got := urls(recs); !reflect.DeepEqual(got, []string{"u/b"}) {
		t.Errorf("results = %v, want post-rebuild catalog", got)
	}
}

func TestRecommend_EvictedKeyRecomputes(t *testing.T) {
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
	}}
	svc := newService(t, r, fakeExtractor{}, 2)

	for _, q := range []string{"one", "two", "three"} {
		if _, err := svc.Recommend(context.Background(), q, 5); err != nil {
			t.Fatalf("recommend %q: %v", q, err)
		}
	}
	if r.queries != 3 {
		t.Fatalf("expected 3 retrievals, got %d", r.queries)
	}

	// "one" was evicted (capacity 2) and must be recomputed.
	if _, err := svc.Recommend(context.Background(), "one", 5); err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if r.queries != 4 {
		t.Errorf("expected recompute of evicted key, got %d retrievals", r.queries)
	}
}

// atomicRetriever is safe for concurrent use: the candidate slice is
// immutable and the generation is an atomic counter.
type atomicRetriever struct {
	candidates []domain.Candidate
	gen        atomic.Uint64
}

func (a *atomicRetriever) Query(_ context.Context, _ string, topK int) ([]domain.Candidate, error) {
	out := a.candidates
	if topK < len(out) {
		out = out[:topK]
	}
	return out, nil
}

func (a *atomicRetriever) Generation() uint64 { return a.gen.Load() }

// The shared result cache must hold under concurrent recommend calls while
// rebuilds bump the generation underneath them. Run with -race.
func TestRecommend_ConcurrentRequests(t *testing.T) {
	r := &atomicRetriever{candidates: []domain.Candidate{
		{Item: item("u/a", 0, 30, "General"), Similarity: 0.9},
		{Item: item("u/b", 1, 30, "General"), Similarity: 0.8},
	}}
	r.gen.Store(1)
	svc := newService(t, r, fakeExtractor{}, 8)

	queries := []string{"one", "two", "three", "four"}

	stop := make(chan struct{})
	var rebuilds sync.WaitGroup
	rebuilds.Add(1)
	go func() {
		defer rebuilds.Done()
		for {
			select {
			case <-stop:
				return
			default:
				r.gen.Add(1)
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q := queries[(g+i)%len(queries)]
				recs, err := svc.Recommend(context.Background(), q, 2)
				if err != nil {
					t.Errorf("recommend %q: %v", q, err)
					return
				}
				if len(recs) != 2 {
					t.Errorf("recommend %q: %d results, want 2", q, len(recs))
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(stop)
	rebuilds.Wait()
}

func TestRecommend_EndToEndPythonUnder15(t *testing.T) {
	pythonItem := domain.Item{
		URL:             "u/python",
		Name:            "Python (New)",
		Description:     "Multi-choice test that measures Python programming knowledge",
		DurationMinutes: 11,
		TestTypes:       []string{"Knowledge & Skills"},
		Remote:          domain.TriYes,
		Ordinal:         0,
	}
	r := &fakeRetriever{gen: 1, candidates: []domain.Candidate{
		{Item: pythonItem, Similarity: 0.92},
		{Item: item("u/java", 1, 30, "Knowledge & Skills"), Similarity: 0.6},
	}}
	svc := New(r, extract.New(nil, nil), nil, DefaultParams(), zap.NewNop())

	recs, err := svc.Recommend(context.Background(), "Python developer assessment under 15 minutes", 5)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if len(recs) == 0 || recs[0].Item.URL != "u/python" {
		t.Fatalf("expected python item on top, got %v", urls(recs))
	}
	// 30-minute item violates the extracted 15-minute bound.
	for _, rec := range recs {
		if rec.Item.URL == "u/java" {
			t.Error("java item must be filtered by duration bound")
		}
	}
}
