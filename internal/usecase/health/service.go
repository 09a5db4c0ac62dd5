package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; recommendations are still served.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer recommendation requests.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status     Status
	IndexReady bool
	Generation uint64
	Items      int
	Checks     map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index     IndexProbe
	embedding EmbeddingChecker
	store     StorePinger
}

// New creates a Service. embedding and store can be nil.
func New(index IndexProbe, embedding EmbeddingChecker, store StorePinger) *Service {
	return &Service{index: index, embedding: embedding, store: store}
}

// Check runs health checks against all components. The index is the one
// hard dependency: without a built snapshot the service is Unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	ready := s.index.Ready()
	if ready {
		checks["index"] = CheckOK
	} else {
		checks["index"] = CheckError
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = CheckError
		} else {
			checks["store"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if !ready {
		status = Unhealthy
	}

	return Report{
		Status:     status,
		IndexReady: ready,
		Generation: s.index.Generation(),
		Items:      s.index.Len(),
		Checks:     checks,
	}
}
