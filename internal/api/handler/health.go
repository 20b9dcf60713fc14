package handler

import (
	"net/http"

	"github.com/mcoot/crimeguessr/internal/api/response"
	"github.com/mcoot/crimeguessr/internal/services/location"
	"github.com/mcoot/crimeguessr/internal/services/room"
)

// HealthHandler reports server health
type HealthHandler struct {
	locations *location.Service
	registry  *room.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(locations *location.Service, registry *room.Registry) *HealthHandler {
	return &HealthHandler{locations: locations, registry: registry}
}

// Get handles GET /api/v1/health. The server stays healthy without a dataset;
// it just cannot host new rooms.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	count, err := h.locations.Count(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Health{
		Status:              "ok",
		DataSourceAvailable: count > 0,
		LocationCount:       count,
		ActiveRooms:         h.registry.Count(),
	})
}
