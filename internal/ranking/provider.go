package ranking

import (
	"context"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

// Request is the input to a ranking. Profile is set on the profile-based path and
// is embedded verbatim in model prompts; Criteria is always set.
type Request struct {
	Criteria domain.Criteria
	Profile  *domain.Profile
	Listings []domain.Listing
}

type Provider interface {
	Rank(ctx context.Context, req Request) ([]domain.Recommendation, error)
}

type Outcome struct {
	Recommendations []domain.Recommendation
	// Degraded is true when Secondary produced the result.
	Degraded bool
	Cause    error
}

// Fallback tries Primary under Timeout and falls back to Secondary on any error.
type Fallback struct {
	Primary   Provider
	Secondary Provider
	Timeout   time.Duration
}

func (f Fallback) Rank(ctx context.Context, req Request) Outcome {
	primaryCtx := ctx
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		primaryCtx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	recs, err := f.Primary.Rank(primaryCtx, req)
	if err == nil {
		return Outcome{Recommendations: recs}
	}

	fallback, fbErr := f.Secondary.Rank(ctx, req)
	if fbErr != nil {
		fallback = nil
	}
	if fallback == nil {
		fallback = []domain.Recommendation{}
	}
	return Outcome{Recommendations: fallback, Degraded: true, Cause: err}
}
