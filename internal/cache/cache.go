// Package cache holds short-lived profile-based recommendation results.
package cache

import (
	"context"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

// Entry is a cached recommendation list and the time it was fetched.
type Entry struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	FetchedAt       time.Time               `json:"fetched_at"`
}

// Fresh reports whether the entry is still inside its TTL at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}

// Store is keyed by user id. Get returns found=false on a miss.
type Store interface {
	Get(ctx context.Context, userID int64) (Entry, bool, error)
	Set(ctx context.Context, userID int64, entry Entry) error
}
