package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeClickRecord, h.HandleClickRecord)
}

func (h *Handler) HandleClickRecord(ctx context.Context, t *asynq.Task) error {
	var payload ClickRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	click := models.Click{
		TenantID:  payload.TenantID,
		ProfileID: payload.ProfileID,
		BlockID:   payload.BlockID,
		URL:       payload.URL,
		Referrer:  payload.Referrer,
		IPAddress: payload.IPAddress,
		UserAgent: payload.UserAgent,
	}

	if err := h.db.WithContext(ctx).Create(&click).Error; err != nil {
		return fmt.Errorf("persisting click: %w", err)
	}

	h.logger.Debug("recorded click",
		"tenant_id", payload.TenantID,
		"profile_id", payload.ProfileID,
		"url", payload.URL,
	)

	return nil
}
