package handler

import (
	"net/http"

	"pdf-extract-server/internal/domain"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const metricsPath = "/metrics"

// NewRouter creates a new HTTP router with all routes configured. A nil
// metrics handler leaves /metrics unmounted.
func NewRouter(
	extractionHandler *ExtractionHandler,
	httpMetrics *HTTPMetrics,
	metricsHandler http.Handler,
	allowedOrigins []string,
	logger domain.Logger,
) http.Handler {
	router := mux.NewRouter()
	if httpMetrics != nil {
		router.Use(httpMetrics.Middleware)
	}

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-extract-server"}`))
	}).Methods(http.MethodGet)

	if metricsHandler != nil {
		router.Handle(metricsPath, metricsHandler).Methods(http.MethodGet)
	}

	router.HandleFunc("/upload", extractionHandler.Upload).Methods(http.MethodPost)

	router.HandleFunc("/extractions", extractionHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/extractions/{id}", extractionHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/extractions/{id}", extractionHandler.Delete).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Extraction-ID",
			"X-Page-Count",
			RequestIDHeader,
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	var h http.Handler = c.Handler(router)
	h = RecoverMiddleware(logger)(h)
	h = LoggingMiddleware(logger)(h)
	h = RequestIDMiddleware(h)
	return h
}
