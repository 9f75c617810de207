package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/GophStore/internal/models"
	"go.uber.org/zap"
)

// StoreService defines the store operations required by the StoreHandler.
type StoreService interface {
	List(ctx context.Context) ([]models.Store, error)
	Authenticate(ctx context.Context, storeID, password string) (*models.Store, string, error)
}

// StoreHandler serves the store directory and store login.
type StoreHandler struct {
	StoreService StoreService
	Log          *zap.Logger
}

// List handles GET /api/stores.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.StoreService.List(r.Context())
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

// AuthRequest is the JSON payload of a store login.
type AuthRequest struct {
	StoreID  string `json:"storeId"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful store login.
type AuthResponse struct {
	Success bool          `json:"success"`
	Store   *models.Store `json:"store"`
	Token   string        `json:"token"`
}

// Auth handles POST /api/stores/auth.
func (h *StoreHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Log, r, err)
		return
	}

	store, token, err := h.StoreService.Authenticate(r.Context(), req.StoreID, req.Password)
	if err != nil {
		writeError(w, h.Log, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Store: store, Token: token})
}
