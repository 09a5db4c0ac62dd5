package httpapi

import (
	"github.com/assessdex/assessdex/internal/domain"
	healthuc "github.com/assessdex/assessdex/internal/usecase/health"
)

// defaultMaxResults applies when the request omits max_results.
const defaultMaxResults = 10

// recommendRequest is the POST /recommend body.
type recommendRequest struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"max_results"`
}

// recommendedAssessment is one catalog entry in the legacy response shape.
// Field names and order are part of the public contract.
type recommendedAssessment struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	RemoteSupport   string   `json:"remote_support"`
	AdaptiveSupport string   `json:"adaptive_support"`
	TestType        []string `json:"test_type"`
}

// recommendResponse is the POST /recommend envelope.
type recommendResponse struct {
	RecommendedAssessments []recommendedAssessment `json:"recommended_assessments"`
}

func toRecommendResponse(recs []domain.Recommendation) recommendResponse {
	items := make([]recommendedAssessment, len(recs))
	for i, rec := range recs {
		types := rec.Item.TestTypes
		if types == nil {
			types = []string{}
		}
		items[i] = recommendedAssessment{
			URL:             rec.Item.URL,
			Name:            rec.Item.Name,
			Description:     rec.Item.Description,
			Duration:        rec.Item.DurationMinutes,
			RemoteSupport:   rec.Item.Remote.Label(),
			AdaptiveSupport: rec.Item.Adaptive.Label(),
			TestType:        types,
		}
	}
	return recommendResponse{RecommendedAssessments: items}
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status     string            `json:"status"`
	IndexReady bool              `json:"index_ready"`
	Generation uint64            `json:"generation"`
	Items      int               `json:"items"`
	Checks     map[string]string `json:"checks"`
}

func toHealthResponse(r healthuc.Report) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthResponse{
		Status:     string(r.Status),
		IndexReady: r.IndexReady,
		Generation: r.Generation,
		Items:      r.Items,
		Checks:     checks,
	}
}

// errorResponse is the shared error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
