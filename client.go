// Package assessdex provides an embedded Go client for the assessment
// recommendation engine: load a catalog, plug in an embedding provider, and
// query for ranked assessments without running the HTTP service.
//
//	client, _ := assessdex.New(ctx,
//	    assessdex.WithCatalogPath("data/catalog.json"),
//	    assessdex.WithEmbedder(myEmbedder),
//	)
//	defer client.Close()
//	recs, _ := client.Recommend(ctx, "Python developer under 15 minutes", 5)
package assessdex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/domain"
	"github.com/assessdex/assessdex/internal/repository/catalog"
	"github.com/assessdex/assessdex/internal/repository/rescache"
	"github.com/assessdex/assessdex/internal/repository/vectorindex"
	extractuc "github.com/assessdex/assessdex/internal/usecase/extract"
	healthuc "github.com/assessdex/assessdex/internal/usecase/health"
	recommenduc "github.com/assessdex/assessdex/internal/usecase/recommend"
)

// Client is the assessdex SDK entry point.
type Client struct {
	items     []domain.Item
	index     *vectorindex.Index
	engine    *recommenduc.Service
	healthSvc *healthuc.Service
	logger    *zap.Logger
}

// New creates a Client: loads the catalog, builds the vector index, and wires
// the ranking engine. The provided context bounds the initial index build.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		batchSize:     32,
		cacheCapacity: 256,
		params:        recommenduc.DefaultParams(),
		logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.embedder == nil {
		return nil, errors.New("assessdex: embedder required (use WithEmbedder)")
	}
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		if err := domain.VerifyModel(ctx, hc); err != nil {
			return nil, fmt.Errorf("assessdex: %w", err)
		}
	}

	items := cfg.items
	if items == nil {
		if cfg.catalogPath == "" {
			return nil, errors.New("assessdex: catalog required (use WithCatalogPath or WithAssessments)")
		}
		store, err := catalog.Load(cfg.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("assessdex: load catalog: %w", err)
		}
		items = store.Items()
	}

	index := vectorindex.New(cfg.embedder, cfg.batchSize, cfg.logger)
	if err := index.Build(ctx, items); err != nil {
		return nil, fmt.Errorf("assessdex: build index: %w", err)
	}

	cache, err := rescache.New(cfg.cacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("assessdex: create result cache: %w", err)
	}

	extractor := extractuc.New(cfg.typeSynonyms, cfg.skillTerms)
	engine := recommenduc.New(index, extractor, cache, cfg.params, cfg.logger)

	var checker healthuc.EmbeddingChecker
	if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
		checker = hc
	}

	return &Client{
		items:     items,
		index:     index,
		engine:    engine,
		healthSvc: healthuc.New(index, checker, nil),
		logger:    cfg.logger,
	}, nil
}

// Close releases resources. Present for symmetry with the service lifecycle;
// the embedded client holds no connections of its own.
func (c *Client) Close() {}

// Recommend returns up to maxResults assessments ranked for the query.
func (c *Client) Recommend(ctx context.Context, query string, maxResults int) ([]Recommendation, error) {
	recs, err := c.engine.Recommend(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{
			Assessment: assessmentFromItem(r.Item),
			Similarity: r.Similarity,
			Score:      r.FinalScore,
		}
	}
	return out, nil
}

// Rebuild re-embeds the catalog and atomically swaps the index snapshot.
// Cached results from the previous snapshot are never served afterwards.
func (c *Client) Rebuild(ctx context.Context) error {
	if err := c.index.Build(ctx, c.items); err != nil {
		return fmt.Errorf("assessdex: rebuild index: %w", err)
	}
	return nil
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status     string // "ok", "degraded", "error"
	IndexReady bool
	Items      int
	Checks     map[string]string // component -> "ok"/"error"
}

// Health checks the health of all components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:     string(report.Status),
		IndexReady: report.IndexReady,
		Items:      report.Items,
		Checks:     checks,
	}
}
