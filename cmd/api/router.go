// cmd/api/router.go

package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/imadgeboyega/roomie-backend/internal/assistant"
	"github.com/imadgeboyega/roomie-backend/internal/auth"
	"github.com/imadgeboyega/roomie-backend/internal/common/utils"
	"github.com/imadgeboyega/roomie-backend/internal/config"
	"github.com/imadgeboyega/roomie-backend/internal/roommate"
)

type application struct {
	auth      auth.Service
	roommates roommate.Service
	assistant *assistant.Service
	hub       *roommate.Hub
}

func newRouter(cfg *config.Config, app *application) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(loggingMiddleware)
	router.Use(middleware.Recoverer)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.NewHandler(app.auth).RegisterRoutes(router)

	authMiddleware := auth.NewMiddleware(app.auth)
	roommate.RegisterRoutes(router, roommate.NewHandler(app.roommates), app.hub, authMiddleware)
	assistant.RegisterRoutes(router, assistant.NewHandler(app.assistant), authMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler(router)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())

		log.Printf("→ [%s] %s %s from %s", reqID, r.Method, r.RequestURI, r.RemoteAddr)

		// The wrapper keeps http.Hijacker so websocket upgrades still work.
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("← [%s] %s %s [%d] %v", reqID, r.Method, r.RequestURI, status, time.Since(start))
	})
}
