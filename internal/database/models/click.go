package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Click is an append-only attribution event. Rows are never updated or
// deleted, so it deliberately does not embed Base.
type Click struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TenantID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ProfileID uuid.UUID  `gorm:"type:uuid;index;not null" json:"profile_id"`
	BlockID   *uuid.UUID `gorm:"type:uuid;index" json:"block_id,omitempty"`
	URL       string     `json:"url"` // resolved destination snapshot
	Referrer  *string    `json:"referrer,omitempty"`
	IPAddress string     `json:"ip_address"`
	UserAgent string     `json:"user_agent"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Click) TableName() string {
	return "clicks"
}

func (c *Click) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
