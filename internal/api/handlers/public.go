package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

// PublicHandler serves unauthenticated profile reads.
type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

// Profile handles GET /p/{handle}. Only published profiles are visible;
// unpublished ones look identical to missing ones.
func (h *PublicHandler) Profile(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	var profile models.Profile
	err := h.db.WithContext(r.Context()).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		Preload("Sections.Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, created_at ASC")
		}).
		First(&profile, "handle = ? AND published = ?", handle, true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
