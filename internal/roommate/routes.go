// internal/roommate/routes.go

package roommate

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/roomie-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, hub *Hub, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Profile
	api.HandleFunc("/profile", handler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", handler.SetupProfile).Methods("POST")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")

	// Candidates
	api.HandleFunc("/candidates/next", handler.NextCandidate).Methods("GET")
	api.HandleFunc("/candidates", handler.ListCandidates).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")

	// Swipes & matches
	api.HandleFunc("/swipes", handler.Swipe).Methods("POST")
	api.HandleFunc("/swipes", handler.GetSwipes).Methods("GET")
	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")

	if hub != nil {
		router.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(hub.ServeWS))).Methods("GET")
	}
}
