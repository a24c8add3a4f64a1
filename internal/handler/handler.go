package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/actuallystonmai/internship-recommender/internal/auth"
	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/actuallystonmai/internship-recommender/internal/service"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SourceHeader tells the client where a recommendation list came from.
const SourceHeader = "X-Recommendation-Source"

type RecommendationService interface {
	GetImplicitRecommendations(ctx context.Context, userID int64) (*domain.RecommendationResult, error)
	GetRefinedRecommendations(ctx context.Context, criteria domain.Criteria) (*domain.RecommendationResult, error)
	PreviewHeuristicBatch(ctx context.Context, page, limit int) (*domain.BatchResponse, error)
	ListListings(ctx context.Context) ([]domain.Listing, error)
	CreateListing(ctx context.Context, l domain.Listing) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id int64, l domain.Listing) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id int64) error
}

type AccountService interface {
	Register(ctx context.Context, username, password string, profile domain.Profile) (*service.AuthResult, error)
	Login(ctx context.Context, username, password string) (*service.AuthResult, error)
	GetProfile(ctx context.Context, userID int64) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID int64, profile domain.Profile) (*domain.Profile, error)
}

type Handler struct {
	recs     RecommendationService
	accounts AccountService
	validate *validator.Validate
	log      *zap.Logger
}

func NewHandler(recs RecommendationService, accounts AccountService, log *zap.Logger) *Handler {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json field names in validation errors.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		recs:     recs,
		accounts: accounts,
		validate: v,
		log:      log.Named("handler"),
	}
}

// decodeAndValidate reads a JSON body into dst and runs struct validation on it.
func (h *Handler) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &domain.ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
		}
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without_all":
		return "at least one of education, skills or interests is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must contain at least one entry"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
	}
	return id, ok
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServiceError maps domain errors onto status codes. Unknown errors are logged and hidden.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		msg := vErr.Message
		if vErr.Field != "" {
			msg = vErr.Field + " " + vErr.Message
		}
		writeError(w, http.StatusBadRequest, "validation_error", msg)
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user_not_found", "User does not exist")
	case errors.Is(err, domain.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "listing_not_found", "Internship not found")
	case errors.Is(err, domain.ErrUserExists):
		writeError(w, http.StatusConflict, "user_exists", "User already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
