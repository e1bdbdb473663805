package routes

import (
	"net/http"

	"github.com/gatherly/venuescout/backend/internal/api/handlers"
	"github.com/gatherly/venuescout/backend/internal/api/middleware"
	"github.com/gatherly/venuescout/backend/internal/infrastructure/observability"
)

// Router holds all route handlers

type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.PlaceSearchHandler
	likeHandler   *handlers.PlaceLikeHandler
	photoHandler  *handlers.PlacePhotoHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.PlaceSearchHandler,
	likeHandler *handlers.PlaceLikeHandler,
	photoHandler *handlers.PlacePhotoHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		searchHandler: searchHandler,
		likeHandler:   likeHandler,
		photoHandler:  photoHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {

	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Place endpoints
	r.mux.HandleFunc("POST /v1/places/search", r.searchHandler.SearchPlaces)
	r.mux.HandleFunc("POST /v1/places/like", r.likeHandler.ToggleLike)
	r.mux.HandleFunc("GET /v1/places/photos/{photoRef...}", r.photoHandler.GetPhoto)

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Compression, ETag and cache headers
	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(handler)

	return handler
}
