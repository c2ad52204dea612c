// internal/auth/handlers.go

package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct {
	service Service
}

// NewHandler creates a new auth handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers all auth routes with the router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	auth := router.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", h.Signup).Methods("POST")
	auth.HandleFunc("/login", h.Signin).Methods("POST")
}

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			utils.ErrorResponse(w, "Email already registered", http.StatusConflict)
		case errors.Is(err, ErrUsernameAlreadyExists), errors.Is(err, ErrUserExists):
			utils.ErrorResponse(w, "Username already taken", http.StatusConflict)
		default:
			log.Printf("auth: signup failed: %v", err)
			utils.ErrorResponse(w, "Failed to create account", http.StatusInternalServerError)
		}
		return
	}

	utils.SuccessResponse(w, resp, http.StatusCreated)
}

// Signin handles user login
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.Signin(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.ErrorResponse(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		log.Printf("auth: signin failed: %v", err)
		utils.ErrorResponse(w, "Login failed", http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}
