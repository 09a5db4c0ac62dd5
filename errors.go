package assessdex

import "github.com/assessdex/assessdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrIndexNotReady          = domain.ErrIndexNotReady
	ErrBuildFailed            = domain.ErrBuildFailed
	ErrModelUnavailable       = domain.ErrModelUnavailable
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
