package handler

import (
	"net/http"

	"github.com/mcoot/crimeguessr/internal/api/response"
	"github.com/mcoot/crimeguessr/internal/services/location"
)

// MaxDatasetSize bounds uploaded CSV datasets
const MaxDatasetSize = 64 << 20

// LocationHandler manages the location pool
type LocationHandler struct {
	locations *location.Service
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations *location.Service) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Stats handles GET /api/v1/locations/stats
func (h *LocationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.locations.Count(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LocationStats{Count: count, Available: count > 0})
}

// Import handles POST /api/v1/locations with a CSV body
func (h *LocationHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxDatasetSize)

	stats, err := h.locations.Import(r.Context(), body)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ImportResult{Loaded: stats.Loaded, Skipped: stats.Skipped})
}
