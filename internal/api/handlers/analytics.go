package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/api/middleware"
	"github.com/linkdeck/linkdeck/internal/clicks"
	"github.com/linkdeck/linkdeck/internal/database/models"
)

type AnalyticsHandler struct {
	access *access.Service
	clicks *clicks.Service
}

func NewAnalyticsHandler(accessService *access.Service, clickService *clicks.Service) *AnalyticsHandler {
	return &AnalyticsHandler{access: accessService, clicks: clickService}
}

type AnalyticsResponse struct {
	Totals      clicks.Totals          `json:"totals"`
	TopProfiles []clicks.ProfileClicks `json:"top_profiles"`
	Recent      []models.Click         `json:"recent"`
}

// Get handles GET /api/v1/tenants/{slug}/analytics. Any member may view.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	slug := chi.URLParam(r, "slug")

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, slug, access.RoleViewer)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	totals, err := h.clicks.Totals(r.Context(), grant.Tenant.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load analytics"})
		return
	}

	topProfiles, err := h.clicks.TopProfiles(r.Context(), grant.Tenant.ID, 10)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load analytics"})
		return
	}

	recent, err := h.clicks.Recent(r.Context(), grant.Tenant.ID, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load analytics"})
		return
	}

	writeJSON(w, http.StatusOK, AnalyticsResponse{
		Totals:      *totals,
		TopProfiles: topProfiles,
		Recent:      recent,
	})
}
