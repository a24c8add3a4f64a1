package handler

import (
	"net/http"
	"strconv"

	"github.com/actuallystonmai/internship-recommender/internal/domain"
	"github.com/go-chi/chi/v5"
)

type listingRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Sector   string   `json:"sector" validate:"required,max=100"`
	Skills   []string `json:"skills" validate:"gt=0,dive,required"`
	Location string   `json:"location" validate:"required,max=100"`
}

func (req listingRequest) toListing() domain.Listing {
	return domain.Listing{
		Title:    req.Title,
		Sector:   req.Sector,
		Skills:   req.Skills,
		Location: req.Location,
	}
}

// GET /listings
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.recs.ListListings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// POST /admin/listings
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	created, err := h.recs.CreateListing(r.Context(), req.toListing())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// PUT /admin/listings/{id}
func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	var req listingRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	updated, err := h.recs.UpdateListing(r.Context(), id, req.toListing())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DELETE /admin/listings/{id}
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(w, r)
	if !ok {
		return
	}

	if err := h.recs.DeleteListing(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Msg: "Internship removed"})
}

func listingID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid listing id parameter")
		return 0, false
	}
	return id, true
}
