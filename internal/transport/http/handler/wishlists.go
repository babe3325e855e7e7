package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aarsha-api/internal/application/wishlist"
	"github.com/aarsha-api/internal/domain"
	"github.com/aarsha-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// WishlistHandler handles the authenticated user's saved-book endpoints.
type WishlistHandler struct {
	svc wishlist.Service
}

func NewWishlistHandler(svc wishlist.Service) *WishlistHandler { return &WishlistHandler{svc: svc} }

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.svc.List(r.Context(), claims.Email)
	if err != nil {
		httpError(w, err)
		return
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.AddWishlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item, err := h.svc.Add(r.Context(), claims.Email, req.BookID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Remove(r.Context(), claims.Email, chi.URLParam(r, "bookId")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Book removed from wishlist"})
}
