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

type BlockHandler struct {
	db     *gorm.DB
	access *access.Service
}

func NewBlockHandler(db *gorm.DB, accessService *access.Service) *BlockHandler {
	return &BlockHandler{db: db, access: accessService}
}

func validBlockType(t string) bool {
	switch models.BlockType(t) {
	case models.BlockTypeLink, models.BlockTypeSocial, models.BlockTypeEmbed,
		models.BlockTypeList, models.BlockTypeText:
		return true
	default:
		return false
	}
}

type CreateBlockRequest struct {
	SectionID string `json:"section_id"`
	Type      string `json:"type"`
	Order     int    `json:"order,omitempty"`
}

// Create handles POST /api/v1/blocks
func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var req CreateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	sectionID, err := uuid.Parse(req.SectionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid section ID"})
		return
	}
	if !validBlockType(req.Type) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid block type"})
		return
	}

	var section models.Section
	if err := h.db.WithContext(r.Context()).First(&section, "id = ?", sectionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Section not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load section"})
		return
	}

	if _, err := h.access.RequireProfileAccess(r.Context(), ident, section.ProfileID, access.RoleEditor); err != nil {
		writeAccessError(w, err)
		return
	}

	block := models.Block{
		SectionID: section.ID,
		Type:      models.BlockType(req.Type),
		Order:     req.Order,
		Content:   "",
	}
	if err := h.db.WithContext(r.Context()).Create(&block).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create block"})
		return
	}

	writeJSON(w, http.StatusCreated, block)
}

type UpdateBlockRequest struct {
	Type    *string `json:"type,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
	URL     *string `json:"url,omitempty"`
	Order   *int    `json:"order,omitempty"`
}

// Update handles PATCH /api/v1/blocks/{id}
func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	block, ok := h.requireBlock(w, r, ident)
	if !ok {
		return
	}

	var req UpdateBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})
	if req.Type != nil {
		if !validBlockType(*req.Type) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid block type"})
			return
		}
		updates["type"] = *req.Type
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Order != nil {
		updates["display_order"] = *req.Order
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(r.Context()).
			Model(&models.Block{}).
			Where("id = ?", block.ID).
			Updates(updates).Error; err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update block"})
			return
		}
	}

	var updated models.Block
	if err := h.db.WithContext(r.Context()).First(&updated, "id = ?", block.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load block"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/blocks/{id}
func (h *BlockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	block, ok := h.requireBlock(w, r, ident)
	if !ok {
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(&models.Block{}, "id = ?", block.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete block"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Block deleted"})
}

// requireBlock loads the block from the URL and runs the EDITOR gate through
// section and profile.
func (h *BlockHandler) requireBlock(w http.ResponseWriter, r *http.Request, ident access.Identity) (*models.Block, bool) {
	blockID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid block ID"})
		return nil, false
	}

	var block models.Block
	if err := h.db.WithContext(r.Context()).First(&block, "id = ?", blockID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Block not found"})
			return nil, false
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load block"})
		return nil, false
	}

	var section models.Section
	if err := h.db.WithContext(r.Context()).First(&section, "id = ?", block.SectionID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load section"})
		return nil, false
	}

	if _, err := h.access.RequireProfileAccess(r.Context(), ident, section.ProfileID, access.RoleEditor); err != nil {
		writeAccessError(w, err)
		return nil, false
	}

	return &block, true
}
