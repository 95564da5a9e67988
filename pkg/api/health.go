package api

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                 `json:"status"`
	Message    string                 `json:"message"`
	Collection string                 `json:"collection"`
	Stats      map[string]interface{} `json:"stats,omitempty"`
}

// HandleHealth handles GET requests to the health check endpoint
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:     "healthy",
		Message:    "bookreport is running",
		Collection: h.collection,
	}
	if sp, ok := h.store.(statsProvider); ok {
		response.Stats = sp.GetMemoryStats()
	}
	WriteJSON(w, http.StatusOK, response)
}
