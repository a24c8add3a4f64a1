package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/cache"
	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/actuallystonmai/internship-recommender/internal/llm"
	"github.com/actuallystonmai/internship-recommender/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeListings struct {
	mu       sync.Mutex
	listings []domain.Listing
	err      error
	calls    int
}

func (f *fakeListings) GetAllListings(context.Context) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.listings, f.err
}

func (f *fakeListings) CreateListing(_ context.Context, l domain.Listing) (*domain.Listing, error) {
	l.ID = int64(len(f.listings) + 1)
	f.listings = append(f.listings, l)
	return &l, f.err
}

func (f *fakeListings) UpdateListing(_ context.Context, id int64, l domain.Listing) (*domain.Listing, error) {
	for i := range f.listings {
		if f.listings[i].ID == id {
			l.ID = id
			f.listings[i] = l
			return &l, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (f *fakeListings) DeleteListing(_ context.Context, id int64) error {
	for i := range f.listings {
		if f.listings[i].ID == id {
			f.listings = append(f.listings[:i], f.listings[i+1:]...)
			return nil
		}
	}
	return domain.ErrListingNotFound
}

type fakeProfiles struct {
	profiles map[int64]*domain.Profile
	err      error
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID int64) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return p, nil
}

func (f *fakeProfiles) GetUserIDsPaginated(_ context.Context, page, limit int) ([]int64, error) {
	ids := []int64{1, 2, 3, 99}
	start := (page - 1) * limit
	if start >= len(ids) {
		return nil, nil
	}
	return ids[start:min(start+limit, len(ids))], nil
}

func (f *fakeProfiles) CountUsers(context.Context) (int, error) {
	return 4, nil
}

type countingProvider struct {
	calls atomic.Int32
	recs  []domain.Recommendation
	err   error
}

func (p *countingProvider) Rank(context.Context, ranking.Request) ([]domain.Recommendation, error) {
	p.calls.Add(1)
	return p.recs, p.err
}

type recordingStore struct {
	inner cache.Store
	gets  atomic.Int32
	sets  atomic.Int32
	err   error
}

func (r *recordingStore) Get(ctx context.Context, userID int64) (cache.Entry, bool, error) {
	r.gets.Add(1)
	if r.err != nil {
		return cache.Entry{}, false, r.err
	}
	return r.inner.Get(ctx, userID)
}

func (r *recordingStore) Set(ctx context.Context, userID int64, entry cache.Entry) error {
	r.sets.Add(1)
	if r.err != nil {
		return r.err
	}
	return r.inner.Set(ctx, userID, entry)
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

// --- fixtures ---

var testListings = []domain.Listing{
	{ID: 1, Title: "Data Analyst Intern (B.Tech)", Sector: "IT", Skills: []string{"Python", "SQL", "Excel"}, Location: "Remote"},
	{ID: 2, Title: "Marketing Intern", Sector: "Marketing", Skills: []string{"SEO"}, Location: "Pune"},
	{ID: 3, Title: "Backend Intern", Sector: "IT", Skills: []string{"Go", "SQL"}, Location: "Bengaluru"},
}

var aiRecs = []domain.Recommendation{
	{Title: "Backend Intern", Sector: "IT", Skills: []string{"Go", "SQL"}, Location: "Bengaluru", Justification: "Go and SQL match."},
}

type harness struct {
	svc      *Service
	listings *fakeListings
	profiles *fakeProfiles
	store    *recordingStore
	ai       *countingProvider
	clock    *clock
}

func newHarness(t *testing.T, ai *countingProvider) *harness {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	h := &harness{
		listings: &fakeListings{listings: append([]domain.Listing(nil), testListings...)},
		profiles: &fakeProfiles{profiles: map[int64]*domain.Profile{
			1: {Education: "B.Tech", Skills: domain.SkillList{"Python", "SQL"}, Interests: "IT"},
			2: {Education: "MBA", Skills: domain.SkillList{"SEO"}, Interests: "Marketing"},
		}},
		store: &recordingStore{inner: cache.NewMemoryStore(10 * time.Minute).WithClock(c.Now)},
		ai:    ai,
		clock: c,
	}
	h.svc = NewService(h.listings, h.profiles, h.store, ai, Options{
		CacheTTL:  10 * time.Minute,
		AITimeout: time.Second,
		Now:       c.Now,
	}, zap.NewNop())
	return h
}

// --- implicit ---

func TestImplicit_AISuccessIsCachedAndReused(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	ctx := context.Background()

	first, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, first.Source)
	assert.Equal(t, aiRecs, first.Recommendations)

	h.clock.now = h.clock.now.Add(9 * time.Minute)
	second, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCache, second.Source)
	assert.Equal(t, first.Recommendations, second.Recommendations)

	assert.Equal(t, int32(1), h.ai.calls.Load(), "second call inside the TTL must not reach the model")
	assert.Equal(t, 1, h.listings.calls, "cache hit must not reload listings")
}

func TestImplicit_AfterTTLReinvokesAI(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	ctx := context.Background()

	_, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)

	h.clock.now = h.clock.now.Add(10 * time.Minute)
	res, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, int32(2), h.ai.calls.Load())
	assert.Equal(t, int32(2), h.store.sets.Load())
}

func TestImplicit_ServiceUnavailableFallsBackWithoutCaching(t *testing.T) {
	h := newHarness(t, &countingProvider{err: &ranking.ServiceError{Reason: ranking.ReasonQuota, Err: errors.New("429")}})
	ctx := context.Background()

	res, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)

	profile := h.profiles.profiles[1]
	assert.Equal(t, domain.SourceHeuristic, res.Source)
	assert.Equal(t, ranking.Rank(profile.Criteria(), testListings), res.Recommendations)
	assert.Equal(t, int32(0), h.store.sets.Load(), "fallback results must not be cached")

	// The next call retries the model rather than serving the fallback.
	_, err = h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), h.ai.calls.Load())
}

func TestImplicit_ResponseWithoutArrayFallsBack(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := &recordingStore{inner: cache.NewMemoryStore(10 * time.Minute).WithClock(c.Now)}
	profiles := &fakeProfiles{profiles: map[int64]*domain.Profile{
		1: {Education: "B.Tech", Skills: domain.SkillList{"Python", "SQL"}, Interests: "IT"},
	}}
	ai := ranking.NewAIProvider(generatorFunc(func(context.Context, string) (string, error) {
		return "Sorry, I cannot help with that.", nil
	}))
	svc := NewService(&fakeListings{listings: testListings}, profiles, store, ai, Options{Now: c.Now}, zap.NewNop())

	res, err := svc.GetImplicitRecommendations(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceHeuristic, res.Source)
	assert.Equal(t, ranking.Rank(profiles.profiles[1].Criteria(), testListings), res.Recommendations)
	assert.Equal(t, int32(0), store.sets.Load())

	require.NotEmpty(t, res.Recommendations)
	assert.Equal(t, "Data Analyst Intern (B.Tech)", res.Recommendations[0].Title)
	assert.Equal(t, 10, res.Recommendations[0].Score)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var _ llm.Generator = generatorFunc(nil)

func TestImplicit_UnconfiguredGeneratorFallsBack(t *testing.T) {
	h := newHarness(t, &countingProvider{})
	h.svc = NewService(h.listings, h.profiles, h.store, ranking.NewAIProvider(llm.Unconfigured{}), Options{Now: h.clock.Now}, zap.NewNop())

	res, err := h.svc.GetImplicitRecommendations(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceHeuristic, res.Source)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Marketing Intern", res.Recommendations[0].Title)
}

func TestImplicit_CacheIsPerUser(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	ctx := context.Background()

	_, err := h.svc.GetImplicitRecommendations(ctx, 1)
	require.NoError(t, err)
	_, err = h.svc.GetImplicitRecommendations(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, int32(2), h.ai.calls.Load())
}

func TestImplicit_UnknownUser(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})

	_, err := h.svc.GetImplicitRecommendations(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, int32(0), h.ai.calls.Load())
}

func TestImplicit_StoreFailuresPropagate(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	h.listings.err = errors.New("connection reset")

	_, err := h.svc.GetImplicitRecommendations(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch listings")

	h.profiles.err = errors.New("pool closed")
	_, err = h.svc.GetImplicitRecommendations(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch profile")
}

func TestImplicit_CacheErrorsAreIgnored(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	h.store.err = errors.New("redis down")

	res, err := h.svc.GetImplicitRecommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceAI, res.Source)
	assert.Equal(t, aiRecs, res.Recommendations)
}

// --- refine ---

func TestRefine_NeverTouchesImplicitCache(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})
	ctx := context.Background()

	_, err := h.svc.GetRefinedRecommendations(ctx, domain.Criteria{Skills: []string{"Go"}})
	require.NoError(t, err)
	_, err = h.svc.GetRefinedRecommendations(ctx, domain.Criteria{Interests: "Marketing"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), h.ai.calls.Load())
	assert.Equal(t, int32(0), h.store.gets.Load())
	assert.Equal(t, int32(0), h.store.sets.Load())
}

func TestRefine_FallsBackToCriteriaHeuristic(t *testing.T) {
	h := newHarness(t, &countingProvider{err: &ranking.ServiceError{Reason: ranking.ReasonUnavailable, Err: errors.New("dial")}})
	criteria := domain.Criteria{Education: " B.Tech ", Skills: []string{"Python", " SQL", ""}, Interests: "IT"}

	res, err := h.svc.GetRefinedRecommendations(context.Background(), criteria)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceHeuristic, res.Source)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Data Analyst Intern (B.Tech)", res.Recommendations[0].Title)
	assert.Equal(t, 10, res.Recommendations[0].Score)
	assert.Equal(t, "Backend Intern", res.Recommendations[1].Title)
	assert.Equal(t, 5, res.Recommendations[1].Score)
}

func TestRefine_RequiresCriteria(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})

	_, err := h.svc.GetRefinedRecommendations(context.Background(), domain.Criteria{Education: "  ", Skills: []string{" "}})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, int32(0), h.ai.calls.Load())
}

type slowProvider struct{}

func (slowProvider) Rank(ctx context.Context, _ ranking.Request) ([]domain.Recommendation, error) {
	<-ctx.Done()
	return nil, &ranking.ServiceError{Reason: ranking.ReasonTimeout, Err: ctx.Err()}
}

func TestRefine_DeadlineTriggersFallback(t *testing.T) {
	svc := NewService(&fakeListings{listings: testListings}, &fakeProfiles{}, cache.NewMemoryStore(time.Minute), slowProvider{},
		Options{AITimeout: 20 * time.Millisecond}, zap.NewNop())

	start := time.Now()
	res, err := svc.GetRefinedRecommendations(context.Background(), domain.Criteria{Skills: []string{"SEO"}})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, domain.SourceHeuristic, res.Source)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Marketing Intern", res.Recommendations[0].Title)
}

// --- batch preview ---

func TestPreviewHeuristicBatch(t *testing.T) {
	h := newHarness(t, &countingProvider{recs: aiRecs})

	resp, err := h.svc.PreviewHeuristicBatch(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalUsers)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, 2, resp.Summary.SuccessCount)
	assert.Equal(t, 2, resp.Summary.FailedCount)

	assert.Equal(t, int64(1), resp.Results[0].UserID)
	assert.Equal(t, domain.StatusSuccess, resp.Results[0].Status)
	assert.NotEmpty(t, resp.Results[0].Recommendations)

	assert.Equal(t, int64(99), resp.Results[3].UserID)
	assert.Equal(t, domain.StatusFailed, resp.Results[3].Status)
	assert.Equal(t, "user_not_found", resp.Results[3].Error)

	assert.Equal(t, int32(0), h.ai.calls.Load())
	assert.Equal(t, int32(0), h.store.sets.Load())
}

func TestCategorizeError(t *testing.T) {
	code, _ := categorizeError(domain.ErrUserNotFound)
	assert.Equal(t, "user_not_found", code)

	code, _ = categorizeError(context.DeadlineExceeded)
	assert.Equal(t, "request_timeout", code)

	code, _ = categorizeError(errors.New("boom"))
	assert.Equal(t, "internal_error", code)
}
