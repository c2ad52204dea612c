// internal/roommate/handlers.go

package roommate

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// callerID reads the authenticated user placed in the context by auth.Middleware.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return id.UserID, true
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAction), errors.Is(err, ErrCannotSwipeSelf):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrProfileRequired):
		utils.RespondWithError(w, http.StatusPreconditionRequired, err.Error())
	case errors.Is(err, ErrProfileExists):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		log.Printf("roommate: %s: %v", fallback, err)
		utils.RespondWithError(w, http.StatusServiceUnavailable, fallback)
	default:
		log.Printf("roommate: %s: %v", fallback, err)
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) SetupProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	profile, err := h.service.SetupProfile(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to create profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(w, err, "Failed to update profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

func (h *Handler) NextCandidate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	candidate, err := h.service.NextCandidate(r.Context(), userID)
	if errors.Is(err, ErrNoCandidates) {
		utils.RespondWithJSON(w, http.StatusOK, NextCandidateResponse{NoMoreMatches: true})
		return
	}
	if err != nil {
		respondServiceError(w, err, "Failed to find a candidate")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, NextCandidateResponse{Candidate: candidate})
}

func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	ranked, err := h.service.RankedCandidates(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to rank candidates")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ranked)
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	other := mux.Vars(r)["userId"]
	scored, err := h.service.Compatibility(r.Context(), userID, other)
	if err != nil {
		respondServiceError(w, err, "Failed to calculate compatibility")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, scored)
}

func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req SwipeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	action, err := ParseSwipeAction(req.Action)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.RecordSwipe(r.Context(), userID, req.TargetUserID, action)
	if err != nil {
		if result != nil && result.Recorded {
			// The swipe stands; retrying the same swipe re-runs the match check.
			log.Printf("roommate: swipe %s -> %s stored, match check failed: %v", userID, req.TargetUserID, err)
			utils.RespondWithJSON(w, http.StatusAccepted, result)
			return
		}
		respondServiceError(w, err, "Failed to record swipe")
		return
	}

	status := http.StatusCreated
	if !result.Recorded {
		status = http.StatusOK
	}
	utils.RespondWithJSON(w, status, result)
}

func (h *Handler) GetSwipes(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	swipes, err := h.service.GetSwipes(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get swipes")
		return
	}
	if swipes == nil {
		swipes = []*Swipe{}
	}
	utils.RespondWithJSON(w, http.StatusOK, swipes)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	matches, err := h.service.GetMatches(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get matches")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, matches)
}
