package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/api/middleware"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

// SectionHandler gates every mutation at EDITOR through the access resolver,
// resolving the owning profile first.
type SectionHandler struct {
	db     *gorm.DB
	access *access.Service
}

func NewSectionHandler(db *gorm.DB, accessService *access.Service) *SectionHandler {
	return &SectionHandler{db: db, access: accessService}
}

type CreateSectionRequest struct {
	ProfileID string `json:"profile_id"`
	Title     string `json:"title,omitempty"`
	Order     int    `json:"order,omitempty"`
}

// Create handles POST /api/v1/sections
func (h *SectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	grant, err := h.access.RequireProfileAccess(r.Context(), ident, profileID, access.RoleEditor)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	section := models.Section{
		ProfileID: grant.Profile.ID,
		Title:     req.Title,
		Order:     req.Order,
	}
	if err := h.db.WithContext(r.Context()).Create(&section).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create section"})
		return
	}

	writeJSON(w, http.StatusCreated, section)
}

type UpdateSectionRequest struct {
	Title *string `json:"title,omitempty"`
	Order *int    `json:"order,omitempty"`
}

// Update handles PATCH /api/v1/sections/{id}
func (h *SectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	section, ok := h.requireSection(w, r, ident)
	if !ok {
		return
	}

	var req UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Order != nil {
		updates["display_order"] = *req.Order
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).
			Model(&models.Section{}).
			Where("id = ?", section.ID).
			Updates(updates).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update section"})
			return
		}
	}

	var updated models.Section
	if err := h.db.WithContext(r.Context()).First(&updated, "id = ?", section.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load section"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/sections/{id}; the section's blocks go with
// it.
func (h *SectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	section, ok := h.requireSection(w, r, ident)
	if !ok {
		return
	}

	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", section.ID).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Section{}, "id = ?", section.ID).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete section"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Section deleted"})
}

// requireSection loads the section from the URL and runs the EDITOR gate via
// its profile. It writes the error response itself when access fails.
func (h *SectionHandler) requireSection(w http.ResponseWriter, r *http.Request, ident access.Identity) (*models.Section, bool) {
	sectionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid section ID"})
		return nil, false
	}

	var section models.Section
	if err := h.db.WithContext(r.Context()).First(&section, "id = ?", sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Section not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load section"})
		return nil, false
	}

	if _, err := h.access.RequireProfileAccess(r.Context(), ident, section.ProfileID, access.RoleEditor); err != nil {
		writeAccessError(w, err)
		return nil, false
	}

	return &section, true
}
