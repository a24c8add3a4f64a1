package handler

import (
	"net/http"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

// GET /users/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PUT /users/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var profile domain.Profile
	if err := h.decodeAndValidate(r, &profile); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), userID, profile)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileUpdateResponse{
		Msg:     "Profile updated successfully",
		Profile: updated,
	})
}
