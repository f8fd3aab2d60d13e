package clicks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/linkdeck/linkdeck/internal/database/models"
	"github.com/linkdeck/linkdeck/internal/tasks"
	"gorm.io/gorm"
)

// Service records click events and answers tenant-scoped analytics queries.
// Clicks are append-only and commutative, so concurrent records never
// conflict.
type Service struct {
	db     *gorm.DB
	queue  *asynq.Client
	logger *slog.Logger
}

// NewService creates a click service. The asynq client is optional; without
// one every record is a direct insert.
func NewService(db *gorm.DB, queue *asynq.Client, logger *slog.Logger) *Service {
	return &Service{db: db, queue: queue, logger: logger}
}

// Record persists a click. When a queue is configured the write is handed to
// the worker; an enqueue failure falls back to a direct insert so the event
// is not lost just because Redis is down.
func (s *Service) Record(ctx context.Context, click models.Click) error {
	if s.queue != nil {
		task, err := tasks.NewClickRecordTask(tasks.ClickRecordPayload{
			TenantID:  click.TenantID,
			ProfileID: click.ProfileID,
			BlockID:   click.BlockID,
			URL:       click.URL,
			Referrer:  click.Referrer,
			IPAddress: click.IPAddress,
			UserAgent: click.UserAgent,
		})
		if err == nil {
			if _, err := s.queue.EnqueueContext(ctx, task); err == nil {
				return nil
			}
			s.logger.Warn("click enqueue failed, inserting directly", "block_id", click.BlockID)
		}
	}

	return s.Insert(ctx, click)
}

// Insert writes the click row durably.
func (s *Service) Insert(ctx context.Context, click models.Click) error {
	if err := s.db.WithContext(ctx).Create(&click).Error; err != nil {
		return fmt.Errorf("inserting click: %w", err)
	}
	return nil
}

// Totals holds tenant-wide click counts.
type Totals struct {
	AllTime int64 `json:"all_time"`
	Last7d  int64 `json:"last_7_days"`
	Last30d int64 `json:"last_30_days"`
}

func (s *Service) Totals(ctx context.Context, tenantID uuid.UUID) (*Totals, error) {
	now := time.Now()
	var t Totals

	base := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Click{}).Where("tenant_id = ?", tenantID)
	}

	if err := base().Count(&t.AllTime).Error; err != nil {
		return nil, fmt.Errorf("counting clicks: %w", err)
	}
	if err := base().Where("created_at >= ?", now.AddDate(0, 0, -7)).Count(&t.Last7d).Error; err != nil {
		return nil, fmt.Errorf("counting clicks: %w", err)
	}
	if err := base().Where("created_at >= ?", now.AddDate(0, 0, -30)).Count(&t.Last30d).Error; err != nil {
		return nil, fmt.Errorf("counting clicks: %w", err)
	}

	return &t, nil
}

// ProfileClicks is a per-profile click total.
type ProfileClicks struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	Handle      string    `json:"handle"`
	DisplayName string    `json:"display_name"`
	Clicks      int64     `json:"clicks"`
}

// TopProfiles returns the tenant's most-clicked profiles, busiest first.
func (s *Service) TopProfiles(ctx context.Context, tenantID uuid.UUID, limit int) ([]ProfileClicks, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []ProfileClicks
	err := s.db.WithContext(ctx).
		Model(&models.Click{}).
		Select("clicks.profile_id, profiles.handle, profiles.display_name, COUNT(clicks.id) AS clicks").
		Joins("JOIN profiles ON profiles.id = clicks.profile_id").
		Where("clicks.tenant_id = ?", tenantID).
		Group("clicks.profile_id, profiles.handle, profiles.display_name").
		Order("clicks DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ranking profiles: %w", err)
	}

	return rows, nil
}

// Recent returns the tenant's latest clicks, newest first.
func (s *Service) Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]models.Click, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.Click
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing clicks: %w", err)
	}

	return rows, nil
}
