// Package embcache decorates an embedder with caching. The first tier is an
// in-process LRU; an optional key-value store (Redis) sits behind it so
// computed embeddings survive restarts. Store failures degrade to a miss,
// never to an error.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/db"
	"github.com/assessdex/assessdex/internal/domain"
)

const cacheKeyPrefix = "assessdex:emb_cache:"

// store is the consumer interface for the second cache tier.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches embeddings by content hash.
type CachedEmbedder struct {
	inner      domain.Embedder
	local      *lru.Cache[string, []float32]
	store      store // nil = single-tier
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. capacity bounds the in-process tier;
// s may be nil. cacheTotal is a counter vec with labels ("tier", "result").
func New(
	inner domain.Embedder,
	capacity int,
	s store,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	if capacity <= 0 {
		capacity = 4096
	}
	local, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("create embedding lru: %w", err)
	}
	return &CachedEmbedder{
		inner:      inner,
		local:      local,
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// WithTTL expires entries written to the second tier after ttl; zero keeps
// them forever. Returns c for chaining.
func (c *CachedEmbedder) WithTTL(ttl time.Duration) *CachedEmbedder {
	c.ttl = ttl
	return c
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	if vec, ok := c.lookup(ctx, key); ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.put(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed serves what it can from the cache and forwards only the misses
// to the inner embedder, preserving input order in the result.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if vec, ok := c.lookup(ctx, cacheKey(text)); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	var prompt, total int
	if len(missTexts) > 0 {
		res, err := c.embedMisses(ctx, missTexts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed misses: %w", err)
		}
		if len(res.Embeddings) != len(missTexts) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"inner embedder returned %d vectors for %d texts", len(res.Embeddings), len(missTexts))
		}
		for j, vec := range res.Embeddings {
			out[missIdx[j]] = vec
			c.put(ctx, cacheKey(missTexts[j]), vec)
		}
		prompt = res.PromptTokens
		total = res.TotalTokens
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   out,
		PromptTokens: prompt,
		TotalTokens:  total,
	}, nil
}

// WarmUp primes the cache with a list of common terms.
func (c *CachedEmbedder) WarmUp(ctx context.Context, terms []string) error {
	if len(terms) == 0 {
		return nil
	}
	if _, err := c.BatchEmbed(ctx, terms); err != nil {
		return fmt.Errorf("warm up embeddings: %w", err)
	}
	return nil
}

// HealthCheck delegates to the inner embedder when it supports probing.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (c *CachedEmbedder) embedMisses(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := c.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, c.inner, texts)
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if vec, ok := c.local.Get(key); ok {
		c.incCache("local", "hit")
		return vec, true
	}
	c.incCache("local", "miss")

	if c.store == nil {
		return nil, false
	}

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		c.incCache("redis", "miss")
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		c.incCache("redis", "miss")
		return nil, false
	}

	c.incCache("redis", "hit")
	c.local.Add(key, vec) // promote
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	c.local.Add(key, vec)
	if c.store == nil {
		return
	}
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, vectorToBytes(vec), c.ttl)
	} else {
		err = c.store.Set(ctx, key, vectorToBytes(vec))
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) incCache(tier, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(tier, result).Inc()
	}
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
