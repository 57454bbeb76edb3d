package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"rental-booking-engine/internal/domain"
	"rental-booking-engine/internal/logger"
	"rental-booking-engine/internal/service"
)

// NewRouter registers the health, metrics and public calendar routes.
func NewRouter(bookingSvc service.BookingService, metricsPath string, metricsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if metricsHandler != nil {
		router.Handle(metricsPath, metricsHandler).Methods(http.MethodGet)
	}

	calendar := NewCalendarHandler(bookingSvc)
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/items/{itemID}/availability", calendar.HandleAvailability).Methods(http.MethodGet)
	v1.HandleFunc("/items/{itemID}/blocks", calendar.HandleBlocks).Methods(http.MethodGet)

	return router
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func invalidRange(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidRange, msg)
}
