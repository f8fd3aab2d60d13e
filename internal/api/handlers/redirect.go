package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/linkdeck/linkdeck/internal/api/dto"
	"github.com/linkdeck/linkdeck/internal/clicks"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

// RedirectHandler serves the public click-attribution endpoint
// GET /go/{handle}/{blockId}: resolve the destination, record the click,
// redirect the browser.
type RedirectHandler struct {
	db     *gorm.DB
	clicks *clicks.Service
	logger *slog.Logger
}

func NewRedirectHandler(db *gorm.DB, clickService *clicks.Service, logger *slog.Logger) *RedirectHandler {
	return &RedirectHandler{db: db, clicks: clickService, logger: logger}
}

func (h *RedirectHandler) Go(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	blockID, err := uuid.Parse(chi.URLParam(r, "blockId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Block not found"})
		return
	}

	var profile models.Profile
	if err := h.db.WithContext(r.Context()).
		Select("id", "tenant_id").
		First(&profile, "handle = ?", handle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	// Block lookup is constrained to the resolved profile so a block ID from
	// another profile cannot be replayed under this handle.
	var block models.Block
	if err := h.db.WithContext(r.Context()).
		Joins("JOIN sections ON sections.id = blocks.section_id").
		Where("blocks.id = ? AND sections.profile_id = ? AND sections.deleted_at IS NULL", blockID, profile.ID).
		First(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Block not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
		return
	}

	// Destination must be validated before any click is written: a click
	// with no usable destination is never recorded.
	destination := block.Destination()
	if destination == "" {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No URL found"})
		return
	}

	click := models.Click{
		TenantID:  profile.TenantID,
		ProfileID: profile.ID,
		BlockID:   &block.ID,
		URL:       destination,
		Referrer:  requestReferrer(r),
		IPAddress: requestIP(r),
		UserAgent: requestUserAgent(r),
	}

	// Best effort: the link must stay available even when analytics is not.
	if err := h.clicks.Record(r.Context(), click); err != nil {
		h.logger.Error("failed to record click",
			"error", err,
			"profile_id", profile.ID,
			"block_id", block.ID,
		)
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// requestIP prefers proxy headers and falls back to the "unknown" sentinel;
// missing metadata never fails the redirect.
func requestIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return "unknown"
}

func requestUserAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "unknown"
}

func requestReferrer(r *http.Request) *string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		ref = r.Header.Get("Referrer")
	}
	if ref == "" {
		return nil
	}
	return &ref
}
