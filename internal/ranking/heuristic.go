package ranking

import (
	"context"
	"sort"
	"strings"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

const (
	skillWeight     = 3
	educationWeight = 2
	interestWeight  = 2
)

// HeuristicProvider ranks with the deterministic scoring function. It never fails.
type HeuristicProvider struct{}

func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

func (p *HeuristicProvider) Rank(_ context.Context, req Request) ([]domain.Recommendation, error) {
	return Rank(req.Criteria, req.Listings), nil
}

// Rank scores every listing, drops non-positive scores and returns the top entries
// in descending score order. Ties keep the input order.
func Rank(criteria domain.Criteria, listings []domain.Listing) []domain.Recommendation {
	skills := make(map[string]struct{}, len(criteria.Skills))
	for _, s := range criteria.Skills {
		skills[s] = struct{}{}
	}

	scored := make([]domain.Recommendation, 0, len(listings))
	for _, listing := range listings {
		score := scoreListing(criteria, skills, listing)
		if score <= 0 {
			continue
		}
		rec := domain.FromListing(listing)
		rec.Score = score
		scored = append(scored, rec)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > domain.MaxRecommendations {
		scored = scored[:domain.MaxRecommendations]
	}
	return scored
}

// Score returns the heuristic score of a single listing.
func Score(criteria domain.Criteria, listing domain.Listing) int {
	skills := make(map[string]struct{}, len(criteria.Skills))
	for _, s := range criteria.Skills {
		skills[s] = struct{}{}
	}
	return scoreListing(criteria, skills, listing)
}

func scoreListing(criteria domain.Criteria, skills map[string]struct{}, listing domain.Listing) int {
	score := 0
	for _, skill := range listing.Skills {
		if _, ok := skills[skill]; ok {
			score += skillWeight
		}
	}
	// Empty education or interests never match.
	if criteria.Education != "" && strings.Contains(listing.Title, criteria.Education) {
		score += educationWeight
	}
	if criteria.Interests != "" && strings.Contains(listing.Sector, criteria.Interests) {
		score += interestWeight
	}
	return score
}
