package handler

import (
	"net/http"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

type refineRequest struct {
	Education string           `json:"education" validate:"required_without_all=Skills Interests"`
	Skills    domain.SkillList `json:"skills"`
	Interests string           `json:"interests"`
}

// GET /recommendations/implicit
func (h *Handler) GetImplicitRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	result, err := h.recs.GetImplicitRecommendations(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeRecommendations(w, result)
}

// POST /recommendations/refine
func (h *Handler) RefineRecommendations(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.recs.GetRefinedRecommendations(r.Context(), domain.Criteria{
		Education: req.Education,
		Skills:    []string(req.Skills),
		Interests: req.Interests,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeRecommendations(w, result)
}

func writeRecommendations(w http.ResponseWriter, result *domain.RecommendationResult) {
	recs := result.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	w.Header().Set(SourceHeader, string(result.Source))
	writeJSON(w, http.StatusOK, recs)
}
