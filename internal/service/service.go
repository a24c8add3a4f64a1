package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/cache"
	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/actuallystonmai/internship-recommender/internal/ranking"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCacheTTL  = 10 * time.Minute
	defaultAITimeout = 20 * time.Second
	batchConcurrency = 10
)

type ListingStore interface {
	GetAllListings(ctx context.Context) ([]domain.Listing, error)
	CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id int64, l domain.Listing) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id int64) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	GetUserIDsPaginated(ctx context.Context, page, limit int) ([]int64, error)
	CountUsers(ctx context.Context) (int, error)
}

type Options struct {
	CacheTTL  time.Duration
	AITimeout time.Duration
	Now       func() time.Time
}

type Service struct {
	listings ListingStore
	profiles ProfileStore
	cache    cache.Store
	ranker   ranking.Fallback
	cacheTTL time.Duration
	now      func() time.Time
	log      *zap.Logger
}

// NewService wires the orchestrator. ai is tried first on every uncached request and the
// heuristic ranker takes over when it fails.
func NewService(listings ListingStore, profiles ProfileStore, store cache.Store, ai ranking.Provider, opts Options, log *zap.Logger) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = defaultAITimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		listings: listings,
		profiles: profiles,
		cache:    store,
		ranker: ranking.Fallback{
			Primary:   ai,
			Secondary: ranking.NewHeuristicProvider(),
			Timeout:   opts.AITimeout,
		},
		cacheTTL: opts.CacheTTL,
		now:      opts.Now,
		log:      log.Named("service"),
	}
}

// GetImplicitRecommendations ranks listings against the user's stored profile.
// Only successful model rankings are cached.
func (s *Service) GetImplicitRecommendations(ctx context.Context, userID int64) (*domain.RecommendationResult, error) {
	log := s.log.With(zap.Int64("user_id", userID))

	// Check Cache
	entry, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		log.Warn("cache get failed", zap.Error(err))
	}
	if found && entry.Fresh(s.now(), s.cacheTTL) {
		return &domain.RecommendationResult{
			Recommendations: entry.Recommendations,
			Source:          domain.SourceCache,
		}, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	listings, err := s.listings.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	out := s.ranker.Rank(ctx, ranking.Request{
		Criteria: profile.Criteria(),
		Profile:  profile,
		Listings: listings,
	})
	if out.Degraded {
		s.logFallback(log, out.Cause)
		return &domain.RecommendationResult{
			Recommendations: out.Recommendations,
			Source:          domain.SourceHeuristic,
		}, nil
	}

	// Store recommendations in cache
	if err := s.cache.Set(ctx, userID, cache.Entry{Recommendations: out.Recommendations, FetchedAt: s.now()}); err != nil {
		log.Warn("cache set failed", zap.Error(err))
	}

	return &domain.RecommendationResult{
		Recommendations: out.Recommendations,
		Source:          domain.SourceAI,
	}, nil
}

// GetRefinedRecommendations ranks listings against ad-hoc criteria. The cache is never read or written.
func (s *Service) GetRefinedRecommendations(ctx context.Context, criteria domain.Criteria) (*domain.RecommendationResult, error) {
	criteria = normalizeCriteria(criteria)
	if criteria.IsEmpty() {
		return nil, &domain.ValidationError{Message: "at least one of education, skills or interests is required"}
	}

	listings, err := s.listings.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	out := s.ranker.Rank(ctx, ranking.Request{Criteria: criteria, Listings: listings})
	if out.Degraded {
		s.logFallback(s.log.With(zap.String("path", "refine")), out.Cause)
		return &domain.RecommendationResult{Recommendations: out.Recommendations, Source: domain.SourceHeuristic}, nil
	}
	return &domain.RecommendationResult{Recommendations: out.Recommendations, Source: domain.SourceAI}, nil
}

func (s *Service) logFallback(log *zap.Logger, cause error) {
	var svcErr *ranking.ServiceError
	switch {
	case errors.As(cause, &svcErr):
		log.Warn("ranking service unavailable, using heuristic ranking",
			zap.String("reason", string(svcErr.Reason)), zap.Error(cause))
	case ranking.IsMalformedResponse(cause):
		log.Warn("ranking service returned no usable recommendations, using heuristic ranking",
			zap.Error(cause))
	default:
		log.Error("ranking failed, using heuristic ranking", zap.Error(cause))
	}
}

func normalizeCriteria(c domain.Criteria) domain.Criteria {
	skills := make([]string, 0, len(c.Skills))
	for _, skill := range c.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return domain.Criteria{
		Education: strings.TrimSpace(c.Education),
		Skills:    skills,
		Interests: strings.TrimSpace(c.Interests),
	}
}

// PreviewHeuristicBatch computes heuristic matches for a page of users. It never calls
// the ranking service and never touches the cache.
func (s *Service) PreviewHeuristicBatch(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	// Fetch paginated user IDs
	userIDs, err := s.profiles.GetUserIDsPaginated(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	// Fetch total user
	totalUsers, err := s.profiles.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count user: %w", err)
	}

	listings, err := s.listings.GetAllListings(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	// Process users concurrently with bounded worker pool
	results := make([]domain.BatchUserResult, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			results[i] = s.previewUser(gctx, userID, listings)
			return nil
		})
	}
	_ = g.Wait()

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: s.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Ranks a single user, capturing errors.
func (s *Service) previewUser(ctx context.Context, userID int64, listings []domain.Listing) domain.BatchUserResult {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.log.Warn("batch preview failed", zap.Int64("user_id", userID), zap.Error(err))
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		Recommendations: ranking.Rank(profile.Criteria(), listings),
		Status:          domain.StatusSuccess,
	}
}

// Handle batch error
func categorizeError(err error) (string, string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return "user_not_found", "user not found"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "request_timeout", "request timed out"
	}
	return "internal_error", "an unexpected error occurred"
}
