package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/auth"
	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/actuallystonmai/internship-recommender/internal/handler"
	"github.com/actuallystonmai/internship-recommender/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubRecs struct{}

func (stubRecs) GetImplicitRecommendations(context.Context, int64) (*domain.RecommendationResult, error) {
	return &domain.RecommendationResult{Source: domain.SourceAI}, nil
}

func (stubRecs) GetRefinedRecommendations(context.Context, domain.Criteria) (*domain.RecommendationResult, error) {
	return &domain.RecommendationResult{Source: domain.SourceAI}, nil
}

func (stubRecs) PreviewHeuristicBatch(context.Context, int, int) (*domain.BatchResponse, error) {
	return &domain.BatchResponse{}, nil
}

func (stubRecs) ListListings(context.Context) ([]domain.Listing, error) { return nil, nil }

func (stubRecs) CreateListing(_ context.Context, l domain.Listing) (*domain.Listing, error) {
	return &l, nil
}

func (stubRecs) UpdateListing(_ context.Context, _ int64, l domain.Listing) (*domain.Listing, error) {
	return &l, nil
}

func (stubRecs) DeleteListing(context.Context, int64) error { return nil }

type stubAccounts struct{}

func (stubAccounts) Register(context.Context, string, string, domain.Profile) (*service.AuthResult, error) {
	return &service.AuthResult{Token: "t"}, nil
}

func (stubAccounts) Login(context.Context, string, string) (*service.AuthResult, error) {
	return &service.AuthResult{Token: "t"}, nil
}

func (stubAccounts) GetProfile(context.Context, int64) (*domain.Profile, error) {
	return &domain.Profile{}, nil
}

func (stubAccounts) UpdateProfile(_ context.Context, _ int64, p domain.Profile) (*domain.Profile, error) {
	return &p, nil
}

type adminSet map[int64]bool

func (a adminSet) IsAdmin(_ context.Context, userID int64) (bool, error) {
	return a[userID], nil
}

func setupRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("router-secret", time.Hour)
	h := handler.NewHandler(stubRecs{}, stubAccounts{}, zap.NewNop())
	return Setup(h, Options{
		Tokens:         tokens,
		Admins:         adminSet{1: true},
		RequestTimeout: 5 * time.Second,
		Logger:         zap.NewNop(),
	}), tokens
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t)

	rec := serve(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUserRoutesRequireToken(t *testing.T) {
	r, tokens := setupRouter(t)

	for _, path := range []string{"/listings", "/recommendations/implicit", "/users/profile"} {
		rec := serve(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	token, err := tokens.GenerateToken(2)
	require.NoError(t, err)

	rec := serve(r, http.MethodGet, "/recommendations/implicit", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ai", rec.Header().Get(handler.SourceHeader))
}

func TestAdminRoutes(t *testing.T) {
	r, tokens := setupRouter(t)

	userToken, err := tokens.GenerateToken(2)
	require.NoError(t, err)
	adminToken, err := tokens.GenerateToken(1)
	require.NoError(t, err)

	rec := serve(r, http.MethodGet, "/admin/recommendations/preview", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, http.MethodGet, "/admin/recommendations/preview", userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(r, http.MethodGet, "/admin/recommendations/preview", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodDelete, "/admin/listings/4", adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mw := requestLogger(zap.New(core))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(handler.SourceHeader, "heuristic")
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recommendations/implicit?x=1", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/recommendations/implicit", fields["path"])
	assert.Equal(t, "x=1", fields["query"])
	assert.Equal(t, "heuristic", fields["source"])
}
