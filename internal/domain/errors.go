package domain

import "errors"

var (
	// ErrModelUnavailable signals that the embedding model could not be loaded or reached.
	// Fatal at startup: no item can be indexed and no query can be served without it.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrIndexNotReady signals a query before the first successful index build.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrBuildFailed signals an aborted index build. The previous index stays in service.
	ErrBuildFailed = errors.New("index build failed")
	// ErrInvalidRequest signals a malformed caller request (bad max_results, empty query).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals a per-request embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
