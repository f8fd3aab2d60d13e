package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/access"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/api/middleware"
	"github.com/linkdeck/linkdeck/internal/api/validation"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db     *gorm.DB
	access *access.Service
}

func NewProfileHandler(db *gorm.DB, accessService *access.Service) *ProfileHandler {
	return &ProfileHandler{db: db, access: accessService}
}

type CreateProfileRequest struct {
	TenantSlug  string `json:"tenant_slug"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name,omitempty"`
}

func (r CreateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.TenantSlug == "" {
		errors["tenant_slug"] = "Tenant slug is required"
	}
	if r.Handle == "" {
		errors["handle"] = "Handle is required"
	} else if !validation.IsValidHandle(r.Handle) {
		errors["handle"] = "Handle must be 2-63 lowercase letters, digits, - or _"
	}
	return errors
}

// Create handles POST /api/v1/profiles. Any member at EDITOR or above may
// create profiles in their workspace.
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	grant, err := h.access.RequireTenantMembership(r.Context(), ident, req.TenantSlug, access.RoleEditor)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var count int64
	if err := h.db.WithContext(r.Context()).
		Model(&models.Profile{}).
		Where("handle = ?", req.Handle).
		Count(&count).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to check handle"})
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Handle already taken"})
		return
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Handle
	}

	profile := models.Profile{
		TenantID:    grant.Tenant.ID,
		Handle:      req.Handle,
		DisplayName: displayName,
	}
	if err := h.db.WithContext(r.Context()).Create(&profile).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create profile"})
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// Get handles GET /api/v1/profiles/{id} with sections and blocks in display
// order.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	grant, err := h.access.RequireProfileAccess(r.Context(), ident, profileID, access.RoleViewer)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var profile models.Profile
	if err := h.db.WithContext(r.Context()).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Preload("Sections.Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		First(&profile, "id = ?", grant.Profile.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfileRequest carries the editable subset of profile fields.
// Pointers distinguish "absent" from "set to zero value".
type UpdateProfileRequest struct {
	Handle      *string `json:"handle,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Tagline1    *string `json:"tagline1,omitempty"`
	Tagline2    *string `json:"tagline2,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	ThemeJSON   *string `json:"theme_json,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// Update handles PATCH /api/v1/profiles/{id}. Requires EDITOR.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	grant, err := h.access.RequireProfileAccess(r.Context(), ident, profileID, access.RoleEditor)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Handle != nil {
		if !validation.IsValidHandle(*req.Handle) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid handle"})
			return
		}
		var count int64
		if err := h.db.WithContext(r.Context()).
			Model(&models.Profile{}).
			Where("handle = ? AND id <> ?", *req.Handle, grant.Profile.ID).
			Count(&count).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to check handle"})
			return
		}
		if count > 0 {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Handle already taken"})
			return
		}
		updates["handle"] = *req.Handle
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Tagline1 != nil {
		updates["tagline1"] = *req.Tagline1
	}
	if req.Tagline2 != nil {
		updates["tagline2"] = *req.Tagline2
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if req.ThemeJSON != nil {
		updates["theme_json"] = *req.ThemeJSON
	}
	if req.Published != nil {
		updates["published"] = *req.Published
	}

	if len(updates) == 0 {
		writeJSON(w, http.StatusOK, grant.Profile)
		return
	}

	if err := h.db.WithContext(r.Context()).
		Model(&models.Profile{}).
		Where("id = ?", grant.Profile.ID).
		Updates(updates).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
		return
	}

	var profile models.Profile
	if err := h.db.WithContext(r.Context()).First(&profile, "id = ?", grant.Profile.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load profile"})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Delete handles DELETE /api/v1/profiles/{id}. Requires ADMIN; removes the
// profile's sections and blocks in the same transaction. Click rows are kept
// for tenant analytics.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	profileID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid profile ID"})
		return
	}

	grant, err := h.access.RequireProfileAccess(r.Context(), ident, profileID, access.RoleAdmin)
	if err != nil {
		writeAccessError(w, err)
		return
	}

	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id IN (?)",
			tx.Model(&models.Section{}).Select("id").Where("profile_id = ?", grant.Profile.ID),
		).Delete(&models.Block{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", grant.Profile.ID).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Profile{}, "id = ?", grant.Profile.ID).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete profile"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Profile deleted"})
}
