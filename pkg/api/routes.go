package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")

	// Report catalog
	router.HandleFunc("/reports", h.HandleListReports).Methods("GET")
	router.HandleFunc("/reports", h.HandleRunReports).Methods("POST")
	router.HandleFunc("/reports/{name}", h.HandleRunReport).Methods("POST")

	// Browse the collection with equality filters and pages
	router.HandleFunc("/books", h.HandleFindBooks).Methods("GET")
}
