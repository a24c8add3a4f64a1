package handler

import (
	"net/http"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
)

// registerRequest carries credentials alongside the initial profile fields.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	domain.Profile
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), req.Username, req.Password, req.Profile)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
