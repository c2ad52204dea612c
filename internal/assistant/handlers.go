// internal/assistant/handlers.go

package assistant

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
)

type ChatRequest struct {
	Message string `json:"message" validate:"max=2000"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, err := h.service.Reply(r.Context(), req.Message)
	if errors.Is(err, ErrEmptyMessage) {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Sorry, I encountered an error. Please try again.")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reply)
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/assistant").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.HandleFunc("/chat", handler.Chat).Methods("POST")
}
