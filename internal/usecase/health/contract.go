package health

import "context"

// IndexProbe reports the state of the active vector index.
type IndexProbe interface {
	Ready() bool
	Generation() uint64
	Len() int
}

// StorePinger checks cache store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
